// Package room owns the wall model of a room: materials, walls and the
// Store arena that holds them.
//
// A Store is the single owner of its walls. Everything else (BSP nodes,
// parent links, reflectable sets) refers to walls by WallIndex.
package room

import (
	"errors"
	"fmt"

	"github.com/banshee-data/roombsp/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// WallIndex addresses a wall inside a Store.
type WallIndex int32

// NoWall marks an absent wall reference.
const NoWall WallIndex = -1

// NoPlaneGroup is the PlaneGroup of walls not assigned to any group.
const NoPlaneGroup = -1

// ErrDegenerateWall is returned for rings that do not span a plane.
var ErrDegenerateWall = errors.New("degenerate wall")

// Material is an acoustic surface material. Walls share materials by pointer.
type Material struct {
	Name string
	// Absorption coefficients per octave band.
	Absorption []float64
	Scattering float64
}

// Wall is a planar polygonal room surface. Normal points into the room.
type Wall struct {
	ID       int
	Corners  []r3.Vec
	Normal   r3.Vec
	Offset   float64
	Material *Material
	Enabled  bool

	// ParentID and Parent link a split fragment back to the input wall it
	// was cut from. Input walls have ParentID -1 and Parent NoWall.
	ParentID int
	Parent   WallIndex

	PlaneGroup         int
	DirectReflectables []WallIndex
	// Blockers are the walls that may occlude paths towards this wall,
	// nearest first.
	Blockers []WallIndex

	// ForceLoaded walls took Normal and Offset from their parent instead of
	// deriving them from Corners.
	ForceLoaded bool
}

// NewWall builds an enabled input wall, deriving the plane from corners.
func NewWall(id int, corners []r3.Vec, m *Material) (Wall, error) {
	pl, ok := geom.PlaneFromPoints(corners)
	if !ok {
		return Wall{}, fmt.Errorf("%w: wall %d with %d corners", ErrDegenerateWall, id, len(corners))
	}
	return Wall{
		ID:         id,
		Corners:    corners,
		Normal:     pl.Normal,
		Offset:     pl.Offset,
		Material:   m,
		Enabled:    true,
		ParentID:   -1,
		Parent:     NoWall,
		PlaneGroup: NoPlaneGroup,
	}, nil
}

// Plane returns the wall's supporting plane.
func (w *Wall) Plane() geom.Plane {
	return geom.Plane{Normal: w.Normal, Offset: w.Offset}
}

// Centroid returns the mean of the wall's corners.
func (w *Wall) Centroid() r3.Vec {
	return geom.Centroid(w.Corners)
}
