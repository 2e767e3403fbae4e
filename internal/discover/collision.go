package discover

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver tracks output paths claimed by pairs and resolves
// duplicates by inserting a "-dupN" marker before the output suffix.
// All methods are goroutine-safe.
type CollisionResolver struct {
	suffix string

	mu       sync.Mutex
	owners   map[string]string // output path → AA path that owns it
	counters map[string]int    // requested output path → next dup counter
}

// NewCollisionResolver creates a resolver for outputs ending in suffix
// (e.g. ".nt.fa").
func NewCollisionResolver(suffix string) *CollisionResolver {
	return &CollisionResolver{
		suffix:   suffix,
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the output path for input. If requested is unclaimed (or
// already owned by input) it is returned as-is; otherwise the first free
// "<stem>-dupN<suffix>" variant is claimed.
func (cr *CollisionResolver) Resolve(input, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[requested]
	if !exists || owner == input {
		cr.owners[requested] = input
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := cr.suffix
	if ext == "" || !strings.HasSuffix(base, ext) {
		ext = filepath.Ext(base)
	}
	stem := strings.TrimSuffix(base, ext)

	counter := max(cr.counters[requested], 1)
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-dup%d%s", stem, counter, ext))
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == input {
			cr.counters[requested] = counter + 1
			cr.owners[candidate] = input
			return candidate
		}
		counter++
	}
}
