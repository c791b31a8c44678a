// Package registry caches derived constants (pi, e, ln(radix), ...) of
// spec.md §4.7 keyed by (name, radix, precision), mirroring
// ntt/registry's cache-or-build shape. It stores values as `any`
// rather than *apnum.Apfloat so apnum can depend on this package
// without an import cycle; apnum's pi.go (Pi) and transcendental.go
// (E, LnRadix) supply the typed wrappers and the build functions.
package registry

import "sync"

// Key identifies a cached constant.
type Key struct {
	Name      string
	Radix     int
	Precision int64
}

var (
	mu    sync.Mutex
	cache = map[Key]any{}
)

// Get returns the cached value for key, calling build to populate it
// on a miss. Concurrent misses for the same key may both call build;
// the first result stored wins, matching ntt/registry.Get's tolerance
// for redundant work over holding the lock across a long computation.
func Get(key Key, build func() (any, error)) (any, error) {
	mu.Lock()
	if v, ok := cache[key]; ok {
		mu.Unlock()
		return v, nil
	}
	mu.Unlock()

	v, err := build()
	if err != nil {
		return nil, err
	}

	mu.Lock()
	if existing, ok := cache[key]; ok {
		v = existing
	} else {
		cache[key] = v
	}
	mu.Unlock()
	return v, nil
}

// Clear empties the constant cache (spec.md §4.1 "cleanupAtExit").
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	cache = map[Key]any{}
}
