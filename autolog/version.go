package autolog

import (
	"strings"

	"golang.org/x/mod/semver"
)

// MinSupportedVersion is the oldest estimator-library version the
// autologging integration is validated against.
const MinSupportedVersion = "0.20.3"

// IsSupportedVersion reports whether v satisfies MinSupportedVersion.
// Versions are compared as semantic versions; a leading "v" is accepted
// but not required. Empty or unparsable versions are unsupported.
func IsSupportedVersion(v string) bool {
	c := canonicalVersion(v)
	if c == "" {
		return false
	}
	return semver.Compare(c, canonicalVersion(MinSupportedVersion)) >= 0
}

func canonicalVersion(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
