// Package maputil provides helpers for preparing string maps for batched
// logging: splitting a map into fixed-size chunks and truncating over-long
// keys and values to entity limits.
//
// Chunking is deterministic: keys are sorted lexicographically before the map
// is split, so the same input always produces the same chunks. Truncation
// reports every shortened key or value through the package warning handler
// (see pkg/errors.SetWarningHandler) and never mutates its input.
package maputil

import (
	"fmt"
	"sort"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// Chunk splits m into consecutive sub-maps of at most size entries each.
// Keys are sorted lexicographically first, so chunk membership is stable
// across calls. The final chunk may hold fewer than size entries. An empty
// map yields no chunks. size must be positive.
//
// Example:
//
//	chunks, _ := maputil.Chunk(map[string]string{"a": "1", "b": "2", "c": "3"}, 2)
//	// chunks[0] = {"a": "1", "b": "2"}, chunks[1] = {"c": "3"}
func Chunk(m map[string]string, size int) ([]map[string]string, error) {
	if size <= 0 {
		return nil, errors.NewValueError("maputil.Chunk", fmt.Sprintf("chunk size must be positive, got %d", size))
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	chunks := make([]map[string]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		chunk := make(map[string]string, end-start)
		for _, k := range keys[start:end] {
			chunk[k] = m[k]
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Truncate returns a copy of m with keys longer than maxKeyLen and values
// longer than maxValLen cut down to the limit. A limit of 0 disables
// truncation on that side; at least one limit must be set. Negative limits
// are rejected.
//
// Every truncation emits one warning citing the original key.
func Truncate(m map[string]string, maxKeyLen, maxValLen int) (map[string]string, error) {
	if maxKeyLen == 0 && maxValLen == 0 {
		return nil, errors.NewValueError("maputil.Truncate", "must specify at least either maxKeyLen or maxValLen")
	}
	if maxKeyLen < 0 {
		return nil, errors.NewValueError("maputil.Truncate", fmt.Sprintf("maxKeyLen must not be negative, got %d", maxKeyLen))
	}
	if maxValLen < 0 {
		return nil, errors.NewValueError("maputil.Truncate", fmt.Sprintf("maxValLen must not be negative, got %d", maxValLen))
	}

	truncated := make(map[string]string, len(m))
	for k, v := range m {
		newKey := k
		if maxKeyLen > 0 && len(k) > maxKeyLen {
			newKey = k[:maxKeyLen]
			errors.Warn(errors.Newf("Truncated the key `%s`", k))
		}
		newVal := v
		if maxValLen > 0 && len(v) > maxValLen {
			newVal = v[:maxValLen]
			errors.Warn(errors.Newf("Truncated the value `%s` (in the key `%s`)", v, k))
		}
		truncated[newKey] = newVal
	}
	return truncated, nil
}
