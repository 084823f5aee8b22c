package roommodel

import (
	"sort"

	"github.com/banshee-data/roombsp/internal/bsp"
	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/room"
	"gonum.org/v1/gonum/spatial/r3"
)

// ComputeDirectReflectables sets each enabled wall's DirectReflectables by
// walking the tree. Wall k is directly reflectable for wall w when k is
// enabled, not in w's plane group, has a corner strictly in front of w,
// and w has a corner strictly in front of k. Sets are in tree pre-order.
// Plane groups must already be assigned.
func ComputeDirectReflectables(k bsp.Kernel, tree *bsp.Tree, walls *room.Store) {
	for _, wi := range walls.Enabled() {
		w := walls.At(wi)
		found := make([]room.WallIndex, 0)
		tree.Walk(func(_ bsp.NodeIndex, n *bsp.Node, _ int) bool {
			for _, ki := range n.Walls {
				if ki != wi && reflects(k, w, walls.At(ki)) {
					found = append(found, ki)
				}
			}
			return true
		})
		w.DirectReflectables = found
	}
}

func reflects(k bsp.Kernel, w, other *room.Wall) bool {
	if !other.Enabled {
		return false
	}
	if w.PlaneGroup != room.NoPlaneGroup && w.PlaneGroup == other.PlaneGroup {
		return false
	}
	return inFront(k, w.Plane(), other.Corners) && inFront(k, other.Plane(), w.Corners)
}

func inFront(k bsp.Kernel, pl geom.Plane, pts []r3.Vec) bool {
	for _, p := range pts {
		if k.Classify(pl, p) == geom.Above {
			return true
		}
	}
	return false
}

// AggregateReflectables unifies the DirectReflectables of every plane
// group: the members' sets are merged, ordered by wall id (index breaks
// ties), deduplicated, and stored on the group and on every member. The
// result does not depend on member order.
func AggregateReflectables(walls *room.Store, pm *PlanePolygonMap) {
	for gi := range pm.Groups {
		g := &pm.Groups[gi]

		var united []room.WallIndex
		for _, m := range g.Walls {
			united = append(united, walls.At(m).DirectReflectables...)
		}
		sort.Slice(united, func(a, b int) bool {
			ia, ib := walls.At(united[a]).ID, walls.At(united[b]).ID
			if ia != ib {
				return ia < ib
			}
			return united[a] < united[b]
		})
		united = dedupeSorted(united)

		g.DirectReflectables = united
		for _, m := range g.Walls {
			walls.At(m).DirectReflectables = append([]room.WallIndex(nil), united...)
		}
	}
}

func dedupeSorted(in []room.WallIndex) []room.WallIndex {
	out := in[:0]
	for _, v := range in {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}
