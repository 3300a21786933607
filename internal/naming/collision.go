package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver hands out destination paths for the files of one run
// and resolves duplicates by appending " - dupN" before the extension.
// All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // destination → source that owns it
	counters map[string]int    // requested destination → next dup counter
	taken    func(path string) bool
}

// NewCollisionResolver creates a resolver. taken reports whether a path is
// already occupied outside the run (typically a file on disk); nil means
// only paths claimed through the resolver count.
func NewCollisionResolver(taken func(path string) bool) *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
		taken:    taken,
	}
}

// Resolve returns the destination for source. requested is returned as-is
// when it is free or already owned by source; otherwise the first free
// " - dupN" variant is claimed.
func (cr *CollisionResolver) Resolve(source, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.free(source, requested) {
		cr.owners[requested] = source
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := max(cr.counters[requested], 1)
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		if cr.free(source, candidate) {
			cr.counters[requested] = counter + 1
			cr.owners[candidate] = source
			return candidate
		}
		counter++
	}
}

// free reports whether path may be given to source. A source may always
// keep its own path, which makes re-running over an organized library a
// no-op.
func (cr *CollisionResolver) free(source, path string) bool {
	if owner, ok := cr.owners[path]; ok {
		return owner == source
	}
	if filepath.Clean(path) == filepath.Clean(source) {
		return true
	}
	return cr.taken == nil || !cr.taken(path)
}
