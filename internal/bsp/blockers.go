package bsp

import (
	"sort"

	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/room"
	"gonum.org/v1/gonum/spatial/r3"
)

// InitBlockers sets Blockers of each wall in walls to the enabled
// candidates with at least one corner strictly in front of the wall's
// plane, sorted by centroid distance (nearest first, then by index).
func InitBlockers(k Kernel, s *room.Store, walls, candidates []room.WallIndex) {
	for _, wi := range walls {
		w := s.At(wi)
		pl := w.Plane()
		c := w.Centroid()

		blockers := make([]room.WallIndex, 0)
		dist := make(map[room.WallIndex]float64)
		for _, ci := range candidates {
			if ci == wi {
				continue
			}
			cand := s.At(ci)
			if !cand.Enabled || !anyAbove(k, pl, cand.Corners) {
				continue
			}
			blockers = append(blockers, ci)
			dist[ci] = r3.Norm(r3.Sub(cand.Centroid(), c))
		}
		sort.Slice(blockers, func(a, b int) bool {
			da, db := dist[blockers[a]], dist[blockers[b]]
			if da != db {
				return da < db
			}
			return blockers[a] < blockers[b]
		})
		w.Blockers = blockers
	}
}

func anyAbove(k Kernel, pl geom.Plane, pts []r3.Vec) bool {
	for _, p := range pts {
		if k.Classify(pl, p) == geom.Above {
			return true
		}
	}
	return false
}
