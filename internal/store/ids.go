package store

import "github.com/google/uuid"

// NewID returns a fresh random identifier. Tasks and categories share one ID
// space; UUIDv4 collisions are not a practical concern so there is no
// existence check.
func NewID() string {
	return uuid.NewString()
}
