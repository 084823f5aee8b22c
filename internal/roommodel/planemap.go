package roommodel

import (
	"sort"

	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/room"
)

// PlaneGroup is the set of post-split walls sharing one supporting plane,
// that is, the fragments of one physical surface.
type PlaneGroup struct {
	ID    int
	Walls []room.WallIndex
	// DirectReflectables is the union of the members' sets, ordered by
	// wall id.
	DirectReflectables []room.WallIndex
}

// PlanePolygonMap lists plane groups in creation order; a group's ID is its
// position.
type PlanePolygonMap struct {
	Groups []PlaneGroup
}

// Group returns the group with the given id, or nil.
func (pm *PlanePolygonMap) Group(id int) *PlaneGroup {
	if id < 0 || id >= len(pm.Groups) {
		return nil
	}
	return &pm.Groups[id]
}

// BuildPlanePolygonMap groups the enabled walls of s by plane and records
// each wall's group in PlaneGroup. Walls are visited in ascending id order
// and compared with the first member of each existing group; planes must
// match exactly, sign of zero included. Disabled walls get
// room.NoPlaneGroup. Calling it again on the same store yields the same map.
func BuildPlanePolygonMap(s *room.Store) *PlanePolygonMap {
	order := s.Indices()
	sort.SliceStable(order, func(a, b int) bool {
		return s.At(order[a]).ID < s.At(order[b]).ID
	})

	pm := &PlanePolygonMap{}
	for _, wi := range order {
		w := s.At(wi)
		w.PlaneGroup = room.NoPlaneGroup
		if !w.Enabled {
			continue
		}

		joined := false
		for gi := range pm.Groups {
			g := &pm.Groups[gi]
			if geom.SamePlane(s.At(g.Walls[0]).Plane(), w.Plane()) {
				g.Walls = append(g.Walls, wi)
				w.PlaneGroup = g.ID
				joined = true
				break
			}
		}
		if !joined {
			id := len(pm.Groups)
			pm.Groups = append(pm.Groups, PlaneGroup{ID: id, Walls: []room.WallIndex{wi}})
			w.PlaneGroup = id
		}
	}
	return pm
}
