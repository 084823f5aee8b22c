// Package roomplot renders built room models for inspection: a PNG
// projection of the post-split walls coloured by plane group, and an HTML
// chart of the BSP tree's depth profile.
package roomplot

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/roombsp/internal/room"
)

// Projection selects the axis plane walls are drawn in.
type Projection int

const (
	// Plan looks down the z axis.
	Plan Projection = iota
	// FrontElevation looks along the y axis.
	FrontElevation
	// SideElevation looks along the x axis.
	SideElevation
)

// ParseProjection maps "plan", "front" or "side" to a Projection.
func ParseProjection(s string) (Projection, error) {
	switch s {
	case "plan", "":
		return Plan, nil
	case "front":
		return FrontElevation, nil
	case "side":
		return SideElevation, nil
	}
	return Plan, fmt.Errorf("unknown projection %q", s)
}

func (p Projection) project(v r3.Vec) plotter.XY {
	switch p {
	case FrontElevation:
		return plotter.XY{X: v.X, Y: v.Z}
	case SideElevation:
		return plotter.XY{X: v.Y, Y: v.Z}
	}
	return plotter.XY{X: v.X, Y: v.Y}
}

func (p Projection) labels() (x, y string) {
	switch p {
	case FrontElevation:
		return "x (m)", "z (m)"
	case SideElevation:
		return "y (m)", "z (m)"
	}
	return "x (m)", "y (m)"
}

type outlineGroup struct {
	Label    string
	Outlines []plotter.XYs
}

// outlineGroups projects the closed outline of every enabled wall, grouped
// by plane group in ascending group order.
func outlineGroups(walls *room.Store, proj Projection) []outlineGroup {
	byGroup := make(map[int][]plotter.XYs)
	for _, wi := range walls.Enabled() {
		w := walls.At(wi)
		if len(w.Corners) == 0 {
			continue
		}
		pts := make(plotter.XYs, 0, len(w.Corners)+1)
		for _, c := range w.Corners {
			pts = append(pts, proj.project(c))
		}
		pts = append(pts, proj.project(w.Corners[0]))
		byGroup[w.PlaneGroup] = append(byGroup[w.PlaneGroup], pts)
	}

	ids := make([]int, 0, len(byGroup))
	for g := range byGroup {
		ids = append(ids, g)
	}
	sort.Ints(ids)

	groups := make([]outlineGroup, 0, len(ids))
	for _, g := range ids {
		label := fmt.Sprintf("plane %d", g)
		if g == room.NoPlaneGroup {
			label = "ungrouped"
		}
		groups = append(groups, outlineGroup{Label: label, Outlines: byGroup[g]})
	}
	return groups
}

// WallPlot draws every enabled wall of walls as a closed outline. Walls in
// the same plane group share a colour and a legend entry.
func WallPlot(walls *room.Store, proj Projection, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text, p.Y.Label.Text = proj.labels()

	groups := outlineGroups(walls, proj)
	colors := generateColors(len(groups))
	for i, g := range groups {
		for j, pts := range g.Outlines {
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("outline %s: %w", g.Label, err)
			}
			line.Color = colors[i]
			line.Width = vg.Points(1)
			p.Add(line)
			if j == 0 {
				p.Legend.Add(g.Label, line)
			}
		}
	}
	return p, nil
}

// PlotWalls saves WallPlot as an image; the format follows the extension
// of path.
func PlotWalls(walls *room.Store, proj Projection, title, path string) error {
	p, err := WallPlot(walls, proj, title)
	if err != nil {
		return err
	}
	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

// generateColors spreads n colours evenly around the hue circle.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		r, g, b := hslToRGB(float64(i)/float64(n), 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range).
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
