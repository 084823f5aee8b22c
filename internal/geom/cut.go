package geom

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// cutRing is a polygon ring with its crossings of a cutting plane inserted
// as on-cut vertices. xy holds in-plane coordinates: X runs along the cut
// line and Y is the signed distance from it, negated when needed so the
// ring winds counter-clockwise.
type cutRing struct {
	pts   []r3.Vec
	sides []Side
	xy    []r2.Vec
	flip  bool
}

// cutEdge is a directed fragment boundary edge between two ring vertices.
type cutEdge struct {
	from, to int
}

func (k Kernel) newCutRing(poly Polygon, pl Plane) *cutRing {
	normal := poly.Plane.Normal
	if r3.Norm(normal) == 0 {
		normal = NewellNormal(poly.Points)
	}
	along := r3.Cross(normal, pl.Normal)

	n := len(poly.Points)
	sides := make([]Side, n)
	dists := make([]float64, n)
	for i, p := range poly.Points {
		dists[i] = pl.Distance(p)
		sides[i] = k.Classify(pl, p)
	}

	r := &cutRing{}
	add := func(p r3.Vec, s Side, d float64) {
		if s == On {
			d = 0
		}
		r.pts = append(r.pts, p)
		r.sides = append(r.sides, s)
		r.xy = append(r.xy, r2.Vec{X: r3.Dot(p, along), Y: d})
	}
	for i, cur := range poly.Points {
		j := (i + 1) % n
		add(cur, sides[i], dists[i])
		if (sides[i] == Above && sides[j] == Below) || (sides[i] == Below && sides[j] == Above) {
			t := dists[i] / (dists[i] - dists[j])
			add(r3.Add(cur, r3.Scale(t, r3.Sub(poly.Points[j], cur))), On, 0)
		}
	}

	var area float64
	for i := range r.xy {
		area += r2.Cross(r.xy[i], r.xy[(i+1)%len(r.xy)])
	}
	if area < 0 {
		r.flip = true
		for i := range r.xy {
			r.xy[i].Y = -r.xy[i].Y
		}
	}
	return r
}

// sign is the sign of Y on side s.
func (r *cutRing) sign(s Side) float64 {
	if (s == Above) != r.flip {
		return 1
	}
	return -1
}

// fragments returns the rings of the pieces of the polygon on side s. The
// boundary is the ring's own edges on that side plus the stretches of the
// cut line that border the polygon's interior from that side.
func (r *cutRing) fragments(s Side) [][]r3.Vec {
	n := len(r.pts)
	keep := func(t Side) bool { return t == s || t == On }

	var edges []cutEdge
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if keep(r.sides[i]) && keep(r.sides[j]) && !(r.sides[i] == On && r.sides[j] == On) {
			edges = append(edges, cutEdge{from: i, to: j})
		}
	}

	var cuts []int
	for i, t := range r.sides {
		if t == On {
			cuts = append(cuts, i)
		}
	}
	sort.SliceStable(cuts, func(a, b int) bool { return r.xy[cuts[a]].X < r.xy[cuts[b]].X })

	sign := r.sign(s)
	for c := 0; c+1 < len(cuts); c++ {
		lo, hi := cuts[c], cuts[c+1]
		if r.xy[lo].X == r.xy[hi].X {
			continue
		}
		if !r.insideFrom((r.xy[lo].X+r.xy[hi].X)/2, sign) {
			continue
		}
		// Interior stays on the left of every edge.
		if sign > 0 {
			edges = append(edges, cutEdge{from: lo, to: hi})
		} else {
			edges = append(edges, cutEdge{from: hi, to: lo})
		}
	}

	out := make(map[int][]int, len(edges))
	for e, ce := range edges {
		out[ce.from] = append(out[ce.from], e)
	}
	used := make([]bool, len(edges))

	var frags [][]r3.Vec
	for start := range edges {
		if used[start] {
			continue
		}
		var ring []int
		for e := start; e >= 0 && !used[e]; e = r.next(edges, out, e) {
			used[e] = true
			ring = append(ring, edges[e].from)
		}
		frags = append(frags, r.simplify(ring))
	}
	return frags
}

// next follows edge e to the outgoing edge that turns furthest left, which
// keeps the walk on the boundary of a single piece where pieces touch.
func (r *cutRing) next(edges []cutEdge, out map[int][]int, e int) int {
	v := edges[e].to
	in := r2.Sub(r.xy[v], r.xy[edges[e].from])
	best, bestTurn := -1, math.Inf(-1)
	for _, o := range out[v] {
		d := r2.Sub(r.xy[edges[o].to], r.xy[v])
		if turn := math.Atan2(r2.Cross(in, d), r2.Dot(in, d)); turn > bestTurn {
			best, bestTurn = o, turn
		}
	}
	return best
}

// insideFrom reports whether the polygon interior lies just off the cut
// line at x on the side with Y sign sign. It casts a ray from (x, 0) away
// from the line and counts boundary crossings.
func (r *cutRing) insideFrom(x, sign float64) bool {
	inside := false
	n := len(r.xy)
	for i := range r.xy {
		a, b := r.xy[i], r.xy[(i+1)%n]
		if (a.X > x) == (b.X > x) {
			continue
		}
		y := a.Y + (x-a.X)*(b.Y-a.Y)/(b.X-a.X)
		if sign*y > 0 {
			inside = !inside
		}
	}
	return inside
}

// simplify maps a fragment ring to points, dropping on-cut vertices whose
// neighbours are both on the cut.
func (r *cutRing) simplify(ring []int) []r3.Vec {
	pts := make([]r3.Vec, 0, len(ring))
	for i, v := range ring {
		prev := ring[(i+len(ring)-1)%len(ring)]
		next := ring[(i+1)%len(ring)]
		if r.sides[prev] == On && r.sides[v] == On && r.sides[next] == On {
			continue
		}
		pts = append(pts, r.pts[v])
	}
	return pts
}
