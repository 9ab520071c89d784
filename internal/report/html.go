package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/rigidify/internal/rigidify"
)

// RenderHTML writes a standalone HTML page with one scatter series for the
// free points, one per rigid body and one for the frame origins.
func RenderHTML(w io.Writer, d *rigidify.Descriptor) error {
	if d == nil {
		return fmt.Errorf("render html: nil descriptor")
	}
	pad := extent(d) * 1.1
	if pad == 0 {
		pad = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Rigidification " + d.Name, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    d.Name,
			Subtitle: fmt.Sprintf("source=%s points=%d free=%d bodies=%d", d.SourceID, d.PointCount, len(d.FreePositions), len(d.RigidBodies)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y", NameLocation: "middle", NameGap: 30}),
	)

	free := make([]opts.ScatterData, 0, len(d.FreePositions))
	for i, p := range d.FreePositions {
		free = append(free, point(p, fmt.Sprintf("global %d", d.Partition.Free[i])))
	}
	scatter.AddSeries("free", free, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	for _, rb := range d.RigidBodies {
		data := make([]opts.ScatterData, 0, len(rb.Indices))
		for _, idx := range rb.Indices {
			data = append(data, point(bodyPoint(d, idx), fmt.Sprintf("global %d", idx)))
		}
		scatter.AddSeries(bodyLabel(rb.Ordinal), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}

	frames := make([]opts.ScatterData, 0, len(d.RigidBodies))
	for _, rb := range d.RigidBodies {
		frames = append(frames, point(rb.Frame.Position, bodyLabel(rb.Ordinal)))
	}
	scatter.AddSeries("frames", frames, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func point(p r3.Vec, name string) opts.ScatterData {
	return opts.ScatterData{Name: name, Value: []interface{}{p.X, p.Y, p.Z}}
}

func bodyLabel(ordinal int) string {
	return fmt.Sprintf("body %d", ordinal)
}

// bodyPoint returns the world position of a global index through the
// rigidified container. It reads the flat index pairs so descriptors
// decoded from JSON render the same as freshly assembled ones.
func bodyPoint(d *rigidify.Descriptor, global int) r3.Vec {
	if 2*global+1 >= len(d.IndexPairs) {
		return r3.Vec{}
	}
	sub, local := d.IndexPairs[2*global], d.IndexPairs[2*global+1]
	if sub != int(rigidify.SubspaceRigidified) || local >= len(d.RigidifiedPositions) {
		return r3.Vec{}
	}
	return d.RigidifiedPositions[local]
}

// extent is the largest absolute X or Y coordinate in d.
func extent(d *rigidify.Descriptor) float64 {
	var m float64
	visit := func(p r3.Vec) {
		m = math.Max(m, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	for _, p := range d.FreePositions {
		visit(p)
	}
	for _, p := range d.RigidifiedPositions {
		visit(p)
	}
	for _, rb := range d.RigidBodies {
		visit(rb.Frame.Position)
	}
	return m
}
