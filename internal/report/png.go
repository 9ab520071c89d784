package report

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/rigidify/internal/rigidify"
)

var (
	freeColor  = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	frameColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// RenderPNG saves an XY scatter of d to path, which must end in .png.
func RenderPNG(path string, d *rigidify.Descriptor) error {
	if d == nil {
		return fmt.Errorf("render png: nil descriptor")
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" {
		return fmt.Errorf("report image must have .png extension, got %q", ext)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%d free, %d bodies)", d.Name, len(d.FreePositions), len(d.RigidBodies))
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())

	free := make(plotter.XYs, 0, len(d.FreePositions))
	for _, v := range d.FreePositions {
		free = append(free, plotter.XY{X: v.X, Y: v.Y})
	}
	if err := addScatter(p, "free", free, freeColor, draw.CircleGlyph{}); err != nil {
		return err
	}

	colors := generateColors(len(d.RigidBodies))
	for i, rb := range d.RigidBodies {
		pts := make(plotter.XYs, 0, len(rb.Indices))
		for _, idx := range rb.Indices {
			v := bodyPoint(d, idx)
			pts = append(pts, plotter.XY{X: v.X, Y: v.Y})
		}
		if err := addScatter(p, bodyLabel(rb.Ordinal), pts, colors[i], draw.BoxGlyph{}); err != nil {
			return err
		}
	}

	frames := make(plotter.XYs, 0, len(d.RigidBodies))
	for _, rb := range d.RigidBodies {
		frames = append(frames, plotter.XY{X: rb.Frame.Position.X, Y: rb.Frame.Position.Y})
	}
	if err := addScatter(p, "frames", frames, frameColor, draw.CrossGlyph{}); err != nil {
		return err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}

// addScatter adds a legend-labelled scatter; empty series are skipped.
func addScatter(p *plot.Plot, label string, pts plotter.XYs, c color.Color, shape draw.GlyphDrawer) error {
	if len(pts) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter %s: %w", label, err)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(3)
	s.GlyphStyle.Shape = shape
	p.Add(s)
	p.Legend.Add(label, s)
	return nil
}

// generateColors spreads n hues around the colour wheel.
func generateColors(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = hsvToRGB(float64(i)/float64(max(n, 1)), 0.8, 0.85)
	}
	return out
}

func hsvToRGB(h, s, v float64) color.Color {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}
