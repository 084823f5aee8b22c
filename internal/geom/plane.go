package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Side is the result of classifying a point against a plane.
type Side int

const (
	Below Side = iota - 1
	On
	Above
)

func (s Side) String() string {
	switch s {
	case Below:
		return "below"
	case On:
		return "on"
	case Above:
		return "above"
	}
	return "unknown"
}

// Plane is the set of points p with Normal·p = Offset.
// Normal points to the "above" half-space.
type Plane struct {
	Normal r3.Vec
	Offset float64
}

// Distance returns the signed distance of v from the plane, scaled by |Normal|.
func (p Plane) Distance(v r3.Vec) float64 {
	return r3.Dot(p.Normal, v) - p.Offset
}

// Polygon is a planar point ring together with its supporting plane.
// Parent is the index of the room wall the polygon (or fragment) came from;
// it survives every split.
type Polygon struct {
	Points []r3.Vec
	Plane  Plane
	Parent int
}

// NewellNormal returns the (unnormalised) polygon normal using Newell's
// method. The result is the zero vector for degenerate rings.
func NewellNormal(pts []r3.Vec) r3.Vec {
	var n r3.Vec
	for i := range pts {
		cur := pts[i]
		next := pts[(i+1)%len(pts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// PlaneFromPoints fits a plane through a point ring. ok is false when the
// ring has fewer than three points or its normal vanishes.
func PlaneFromPoints(pts []r3.Vec) (pl Plane, ok bool) {
	if len(pts) < 3 {
		return Plane{}, false
	}
	n := NewellNormal(pts)
	if r3.Norm(n) < 1e-12 {
		return Plane{}, false
	}
	n = r3.Unit(n)
	// Offset is taken from the centroid so every vertex contributes.
	return Plane{Normal: n, Offset: r3.Dot(n, Centroid(pts))}, true
}

// Centroid returns the arithmetic mean of the points.
func Centroid(pts []r3.Vec) r3.Vec {
	var c r3.Vec
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(pts)), c)
}

// SamePlane reports whether two planes are bit-for-bit identical, including
// the sign of zero components.
func SamePlane(a, b Plane) bool {
	if a.Offset != b.Offset {
		return false
	}
	return sameComponent(a.Normal.X, b.Normal.X) &&
		sameComponent(a.Normal.Y, b.Normal.Y) &&
		sameComponent(a.Normal.Z, b.Normal.Z)
}

func sameComponent(a, b float64) bool {
	return a == b && math.Signbit(a) == math.Signbit(b)
}
