package estimator

import (
	"fmt"
	"sort"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// Kind は推定器のタスク系列を表す
type Kind string

const (
	// KindClassifier は分類器
	KindClassifier Kind = "classifier"
	// KindRegressor は回帰器
	KindRegressor Kind = "regressor"
	// KindTransformer は変換器
	KindTransformer Kind = "transformer"
	// KindCluster はクラスタリング器
	KindCluster Kind = "cluster"
)

// Entry is one registered estimator: a public name, a zero-config
// constructor, and the task families a constructed instance belongs to.
type Entry struct {
	Name  string
	New   func() any
	Kinds []Kind
}

// Registry holds the estimators known to the library, keyed by name.
// Writes happen at init() time; reads dominate afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds an estimator under the given name. The name must be
// non-empty and exported-style (leading uppercase); the constructor must
// be non-nil and produce a value implementing Fitter. Registering the
// same name twice returns an AlreadyRegisteredError.
func (r *Registry) Register(name string, ctor func() any) error {
	const op = "estimator.Register"

	if name == "" {
		return errors.NewValueError(op, "estimator name must not be empty")
	}
	first, _ := utf8.DecodeRuneInString(name)
	if first == '_' || !unicode.IsUpper(first) {
		return errors.NewValueError(op, fmt.Sprintf("estimator name %q must start with an uppercase letter", name))
	}
	if ctor == nil {
		return errors.NewValueError(op, fmt.Sprintf("constructor for %q must not be nil", name))
	}

	probe := ctor()
	if probe == nil {
		return errors.NewValueError(op, fmt.Sprintf("constructor for %q returned nil", name))
	}
	if _, ok := probe.(Fitter); !ok {
		return errors.NewValueError(op, fmt.Sprintf("%q does not implement Fitter", name))
	}

	entry := Entry{Name: name, New: ctor, Kinds: kindsOf(probe)}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return errors.NewAlreadyRegisteredError(name)
	}
	r.entries[name] = entry
	return nil
}

// MustRegister is Register for init() time; it panics on error.
func (r *Registry) MustRegister(name string, ctor func() any) {
	if err := r.Register(name, ctor); err != nil {
		panic(fmt.Sprintf("estimator: failed to register %s: %v", name, err))
	}
}

// Get retrieves an entry by name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if ok {
		entry.Kinds = append([]Kind(nil), entry.Kinds...)
	}
	return entry, ok
}

// List returns the entries matching any of the given kinds, deduplicated
// and sorted by name. With no kinds it returns every entry. An unknown
// kind is a ValueError.
func (r *Registry) List(kinds ...Kind) ([]Entry, error) {
	for _, k := range kinds {
		switch k {
		case KindClassifier, KindRegressor, KindTransformer, KindCluster:
		default:
			return nil, errors.NewValueError("estimator.List", fmt.Sprintf("unknown estimator kind %q", k))
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		if len(kinds) == 0 || entry.hasAnyKind(kinds) {
			entry.Kinds = append([]Kind(nil), entry.Kinds...)
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return matched, nil
}

func (e Entry) hasAnyKind(kinds []Kind) bool {
	for _, want := range kinds {
		for _, have := range e.Kinds {
			if have == want {
				return true
			}
		}
	}
	return false
}

// kindsOf probes a constructed instance against the mixin interfaces.
// Classifiers and clusterers satisfy RegressorMixin's method set too,
// so the regressor kind applies only when neither of those matched.
func kindsOf(v any) []Kind {
	_, isClassifier := v.(ClassifierMixin)
	_, isCluster := v.(ClusterMixin)

	var kinds []Kind
	if isClassifier {
		kinds = append(kinds, KindClassifier)
	}
	if _, ok := v.(RegressorMixin); ok && !isClassifier && !isCluster {
		kinds = append(kinds, KindRegressor)
	}
	if _, ok := v.(TransformerMixin); ok {
		kinds = append(kinds, KindTransformer)
	}
	if isCluster {
		kinds = append(kinds, KindCluster)
	}
	return kinds
}

// DefaultRegistry is the process-wide registry. The bundled estimators
// register themselves into it during init().
var DefaultRegistry = NewRegistry()

// Register adds an estimator to the default registry.
func Register(name string, ctor func() any) error {
	return DefaultRegistry.Register(name, ctor)
}

// MustRegister adds an estimator to the default registry, panicking on error.
func MustRegister(name string, ctor func() any) {
	DefaultRegistry.MustRegister(name, ctor)
}

// Get retrieves an entry from the default registry.
func Get(name string) (Entry, bool) {
	return DefaultRegistry.Get(name)
}

// List lists entries in the default registry, optionally filtered by kind.
func List(kinds ...Kind) ([]Entry, error) {
	return DefaultRegistry.List(kinds...)
}
