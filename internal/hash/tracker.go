package hash

// Tracker tracks object paths by their hash ID and flags the (practically
// negligible) case where two distinct paths collide, so callers of the
// fast ID-keyed index can fall back to a full string comparison.
type Tracker struct {
	byID         map[uint64]string
	hasCollision bool
}

// NewTracker creates a new path-hash collision tracker.
func NewTracker() *Tracker {
	return &Tracker{byID: make(map[uint64]string)}
}

// Track records path under its hash ID. It returns the ID and whether this
// call introduced a collision (a different path already owns that hash).
func (t *Tracker) Track(path string) (id uint64, collided bool) {
	id = ID(path)

	if existing, ok := t.byID[id]; ok {
		if existing != path {
			t.hasCollision = true
			return id, true
		}

		return id, false
	}

	t.byID[id] = path

	return id, false
}

// HasCollision reports whether any tracked path has collided with another.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}
