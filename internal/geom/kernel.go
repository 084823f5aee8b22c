package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultEpsilon is the classification tolerance used by NewKernel when
// given a negative value.
const DefaultEpsilon = 1e-6

// Kernel classifies points against planes and splits polygons by planes.
// The zero value classifies exactly (no tolerance).
type Kernel struct {
	Epsilon float64
}

// NewKernel returns a Kernel with the given tolerance. A negative eps selects
// DefaultEpsilon.
func NewKernel(eps float64) Kernel {
	if eps < 0 {
		eps = DefaultEpsilon
	}
	return Kernel{Epsilon: eps}
}

// Classify returns which side of pl the point v lies on.
func (k Kernel) Classify(pl Plane, v r3.Vec) Side {
	d := pl.Distance(v)
	switch {
	case d > k.Epsilon:
		return Above
	case d < -k.Epsilon:
		return Below
	default:
		return On
	}
}

// Split divides poly by pl. A polygon with no vertex strictly on either side
// is returned in on; a polygon touching only one side goes whole into that
// bucket. A straddling polygon is cut into one fragment per connected piece
// on each side, so a non-convex ring may yield several fragments per side.
// Vertices lying on the cut between two other on-cut vertices are dropped,
// as are fragments without area. Fragments keep the polygon's plane and
// parent so no plane data is recomputed from clipped coordinates.
func (k Kernel) Split(poly Polygon, pl Plane) (above, on, below []Polygon) {
	var nAbove, nBelow int
	for _, p := range poly.Points {
		switch k.Classify(pl, p) {
		case Above:
			nAbove++
		case Below:
			nBelow++
		}
	}

	switch {
	case nAbove == 0 && nBelow == 0:
		return nil, []Polygon{poly}, nil
	case nBelow == 0:
		return []Polygon{poly}, nil, nil
	case nAbove == 0:
		return nil, nil, []Polygon{poly}
	}

	r := k.newCutRing(poly, pl)
	for _, pts := range r.fragments(Above) {
		if k.hasArea(pts) {
			above = append(above, Polygon{Points: pts, Plane: poly.Plane, Parent: poly.Parent})
		}
	}
	for _, pts := range r.fragments(Below) {
		if k.hasArea(pts) {
			below = append(below, Polygon{Points: pts, Plane: poly.Plane, Parent: poly.Parent})
		}
	}
	return above, nil, below
}

func (k Kernel) hasArea(pts []r3.Vec) bool {
	return len(pts) >= 3 && r3.Norm(NewellNormal(pts))/2 > k.Epsilon
}
