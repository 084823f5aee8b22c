package bsp

import (
	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/room"
	"gonum.org/v1/gonum/spatial/r3"
)

// provisionalIDStride separates provisional child ids of different parents
// until the ids are harmonised after the build.
const provisionalIDStride = 10000

// ToPolygons converts the enabled walls of s into kernel polygons. Each
// polygon's Parent is the wall's index in s and its plane is the wall's
// stored plane, never a recomputed one. Disabled walls are dropped.
func ToPolygons(s *room.Store) []geom.Polygon {
	enabled := s.Enabled()
	polys := make([]geom.Polygon, 0, len(enabled))
	for _, i := range enabled {
		w := s.At(i)
		pts := make([]r3.Vec, len(w.Corners))
		copy(pts, w.Corners)
		polys = append(polys, geom.Polygon{
			Points: pts,
			Plane:  w.Plane(),
			Parent: int(i),
		})
	}
	return polys
}

// ChildWall converts a polygon (or fragment) back into a wall. Plane and
// material are copied from parent, never derived from the fragment's
// coordinates.
func ChildWall(poly geom.Polygon, parent *room.Wall, id int) room.Wall {
	return room.Wall{
		ID:          id,
		Corners:     poly.Points,
		Normal:      parent.Normal,
		Offset:      parent.Offset,
		Material:    parent.Material,
		Enabled:     true,
		ParentID:    poly.Parent,
		Parent:      room.WallIndex(poly.Parent),
		PlaneGroup:  room.NoPlaneGroup,
		ForceLoaded: true,
	}
}

// appendWalls converts polys to walls, appends them to the output store in
// order and returns their indices.
func (b *Builder) appendWalls(polys []geom.Polygon) []room.WallIndex {
	out := make([]room.WallIndex, 0, len(polys))
	for _, p := range polys {
		id := p.Parent*provisionalIDStride + b.produced[p.Parent]
		b.produced[p.Parent]++
		w := ChildWall(p, b.input.At(room.WallIndex(p.Parent)), id)
		out = append(out, b.out.Add(w))
	}
	return out
}
