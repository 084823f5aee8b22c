package room

import (
	"errors"
	"fmt"
)

// ErrWallIndexOutOfRange is returned when a caller names a wall that does
// not exist in the store.
var ErrWallIndexOutOfRange = errors.New("wall index out of range")

// Store is the arena that owns a room's walls.
type Store struct {
	walls []Wall
}

// NewStore creates a Store holding copies of walls, in order.
func NewStore(walls []Wall) *Store {
	s := &Store{walls: make([]Wall, len(walls))}
	copy(s.walls, walls)
	return s
}

// Len returns the number of walls.
func (s *Store) Len() int { return len(s.walls) }

// At returns the wall at i. It panics if i is out of range.
func (s *Store) At(i WallIndex) *Wall { return &s.walls[i] }

// Add appends w and returns its index.
func (s *Store) Add(w Wall) WallIndex {
	s.walls = append(s.walls, w)
	return WallIndex(len(s.walls) - 1)
}

// Indices returns every index in insertion order.
func (s *Store) Indices() []WallIndex {
	out := make([]WallIndex, len(s.walls))
	for i := range s.walls {
		out[i] = WallIndex(i)
	}
	return out
}

// Enabled returns the indices of enabled walls in insertion order.
func (s *Store) Enabled() []WallIndex {
	out := make([]WallIndex, 0, len(s.walls))
	for i := range s.walls {
		if s.walls[i].Enabled {
			out = append(out, WallIndex(i))
		}
	}
	return out
}

// Disable marks the walls at the given indices as disabled. Every index is
// checked before any wall is touched; a single out-of-range index aborts
// the whole call.
func (s *Store) Disable(indices []int) error {
	for _, i := range indices {
		if i < 0 || i >= len(s.walls) {
			return fmt.Errorf("disable wall %d of %d: %w", i, len(s.walls), ErrWallIndexOutOfRange)
		}
	}
	for _, i := range indices {
		s.walls[i].Enabled = false
	}
	return nil
}
