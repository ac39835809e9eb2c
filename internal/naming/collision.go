package naming

import (
	"fmt"
	"strings"
	"sync"
)

// CollisionResolver tracks which input file claimed each output stem during
// a run. A second input with the same stem (song.wav and song.flac) gets a
// " - dupN" stem so it cannot overwrite the first file's outputs. Stems are
// compared case-insensitively since the output directory may live on a
// case-insensitive filesystem. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // lowercased stem → input path that owns it
	counters map[string]int    // lowercased base stem → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the stem input should use for its outputs. If stem is
// unclaimed (or already owned by input) it is returned unchanged.
func (cr *CollisionResolver) Resolve(input, stem string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := strings.ToLower(stem)
	owner, exists := cr.owners[key]
	if !exists || owner == input {
		cr.owners[key] = input
		return stem
	}

	counter := cr.counters[key]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := fmt.Sprintf("%s - dup%d", stem, counter)
		cKey := strings.ToLower(candidate)
		cOwner, cExists := cr.owners[cKey]
		if !cExists || cOwner == input {
			cr.counters[key] = counter + 1
			cr.owners[cKey] = input
			return candidate
		}
		counter++
	}
}
