package roomplot

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/roombsp/internal/bsp"
	"github.com/banshee-data/roombsp/internal/roommodel"
)

// DepthChart writes an HTML page with a bar chart of the number of tree
// nodes at each depth.
func DepthChart(w io.Writer, t *bsp.Tree, title string) error {
	profile := bsp.DepthProfile(t)

	x := make([]string, len(profile))
	y := make([]opts.BarData, len(profile))
	for depth, n := range profile {
		x[depth] = strconv.Itoa(depth)
		y[depth] = opts.BarData{Value: n}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("height %d, %d nodes", bsp.Height(t), t.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "depth"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "nodes"}),
	)
	bar.SetXAxis(x).
		AddSeries("nodes", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(bar)
	return page.Render(w)
}

// DepthChartHandler serves DepthChart for m.
func DepthChartHandler(m *roommodel.Model, title string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := DepthChart(&buf, m.Tree, title); err != nil {
			http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})
}
