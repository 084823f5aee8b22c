package bsp

import (
	"math"
	"sort"

	"github.com/banshee-data/roombsp/internal/geom"
)

// candidate is the split cost record of one polygon.
type candidate struct {
	index   int // position in the polygon list
	behind  int // polygons entirely behind the candidate plane
	front   int // polygons entirely in front, including coincident ones
	crosses int // polygons straddling the plane
	balance float64
}

// balanceScore is the Ranta-Eskola balance min(b,f)/max(b,f). A side with
// no polygons scores 0.
func balanceScore(behind, front int) float64 {
	if behind == 0 || front == 0 {
		return 0
	}
	b, f := float64(behind), float64(front)
	return math.Min(b/f, f/b)
}

// measure counts, for polygon i, how every other polygon sits relative to
// its plane.
func measure(k Kernel, polys []geom.Polygon, i int) candidate {
	c := candidate{index: i}
	pl := polys[i].Plane
	for j, other := range polys {
		if j == i {
			continue
		}
		var behind, inFront bool
		for _, p := range other.Points {
			switch k.Classify(pl, p) {
			case geom.Below:
				behind = true
			case geom.Above:
				inFront = true
			}
		}
		switch {
		case behind && inFront:
			c.crosses++
		case behind:
			c.behind++
		default:
			// Strictly in front, or coincident with the plane.
			c.front++
		}
	}
	c.balance = balanceScore(c.behind, c.front)
	return c
}

// rankCandidates measures every polygon and orders the records by
// ascending crossing count. Equal counts keep input order.
func rankCandidates(k Kernel, polys []geom.Polygon) []candidate {
	ranked := make([]candidate, len(polys))
	for i := range polys {
		ranked[i] = measure(k, polys, i)
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].crosses < ranked[b].crosses
	})
	return ranked
}

// pickSplitter returns the index of the splitting polygon. The first ranked
// candidate whose balance reaches threshold wins; if none does, the
// candidate whose balance is closest to threshold wins, earliest rank
// first on ties.
func pickSplitter(k Kernel, polys []geom.Polygon, threshold float64) int {
	ranked := rankCandidates(k, polys)
	for _, c := range ranked {
		if c.balance >= threshold {
			return c.index
		}
	}

	best := ranked[0]
	bestDev := math.Abs(best.balance - threshold)
	for _, c := range ranked[1:] {
		if dev := math.Abs(c.balance - threshold); dev < bestDev {
			best, bestDev = c, dev
		}
	}
	return best.index
}

// isConvex reports whether the polygons bound a convex region: no vertex of
// any polygon lies strictly behind the plane of another.
func isConvex(k Kernel, polys []geom.Polygon) bool {
	for i := range polys {
		pl := polys[i].Plane
		for j := range polys {
			if i == j {
				continue
			}
			for _, p := range polys[j].Points {
				if k.Classify(pl, p) == geom.Below {
					return false
				}
			}
		}
	}
	return true
}
