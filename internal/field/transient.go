package field

import "time"

// Transients is a rolling set of bounded-lifetime entities. It never holds
// more than its cap: adding beyond the cap evicts the oldest entries.
type Transients struct {
	cap   int
	items []Entity
}

// NewTransients creates a set holding at most limit entities.
// A negative limit is treated as zero.
func NewTransients(limit int) *Transients {
	if limit < 0 {
		limit = 0
	}
	return &Transients{
		cap:   limit,
		items: make([]Entity, 0, limit),
	}
}

// Cap returns the maximum number of live entities.
func (t *Transients) Cap() int {
	return t.cap
}

// Len returns the number of live entities.
func (t *Transients) Len() int {
	return len(t.items)
}

// Items returns the live entities in insertion order. The slice is owned by
// the set; callers may update Live fields in place but must not retain it
// across Add or Expire.
func (t *Transients) Items() []Entity {
	return t.items
}

// Add appends entities and evicts the oldest beyond the cap.
// Returns the number evicted.
func (t *Transients) Add(es ...Entity) int {
	t.items = append(t.items, es...)
	over := len(t.items) - t.cap
	if over <= 0 {
		return 0
	}
	n := copy(t.items, t.items[over:])
	clear(t.items[n:])
	t.items = t.items[:n]
	return over
}

// Expire removes entities whose lifetime has elapsed at now.
// Returns the number removed.
func (t *Transients) Expire(now time.Duration) int {
	kept := t.items[:0] // reuse backing array
	for _, e := range t.items {
		if !e.Expired(now) {
			kept = append(kept, e)
		}
	}
	removed := len(t.items) - len(kept)
	clear(t.items[len(kept):])
	t.items = kept
	return removed
}

// Reset drops every entity.
func (t *Transients) Reset() {
	clear(t.items)
	t.items = t.items[:0]
}
