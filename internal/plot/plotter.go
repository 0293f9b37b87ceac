// Package plot turns a pair of dataset columns into a scatter plot with a
// fitted regression line, using axis bounds that stay fixed across years.
package plot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"

	"hdiexplorer/internal/engine"
	"hdiexplorer/internal/models"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Surface is whatever the rendered plot is shown on. Draw replaces the
// previous frame entirely.
type Surface interface {
	Draw(img image.Image)
}

type Options struct {
	Width          int
	Height         int
	MarginFraction float64
	// EntityColumn labels each point (e.g. "Country"); may be empty.
	EntityColumn string
}

func DefaultOptions() Options {
	return Options{Width: 1200, Height: 800, MarginFraction: 0.01, EntityColumn: "Country"}
}

type Plotter struct {
	res  *engine.Resolver
	opts Options
	log  *slog.Logger
}

func New(res *engine.Resolver, opts Options, logger *slog.Logger) *Plotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plotter{res: res, opts: opts, log: logger}
}

func (p *Plotter) Options() Options { return p.opts }

// Scene resolves everything a render needs: the current year's points and
// the all-years axis bounds.
func (p *Plotter) Scene(x, y string) (*models.Scene, error) {
	ds := p.res.Dataset()
	for _, col := range []string{x, y} {
		if !ds.HasColumn(col) {
			p.log.Warn("data not available", "x", x, "y", y, "missing", col)
			return nil, &engine.ColumnError{Column: col, Err: engine.ErrColumnNotFound}
		}
	}

	points, err := ds.FilterPoints(x, y, p.opts.EntityColumn)
	if err != nil {
		p.log.Warn("cannot plot columns", "x", x, "y", y, "err", err)
		return nil, err
	}

	bounds := p.res.StableBounds(x, y, p.opts.MarginFraction)
	year, _ := engine.ColumnYear(x)

	return &models.Scene{
		Year:   year,
		X:      x,
		Y:      y,
		Title:  fmt.Sprintf("%s vs %s", y, x),
		XRange: bounds.X,
		YRange: bounds.Y,
		Points: points,
	}, nil
}

// Render draws x against y onto surface. When either column is unusable the
// surface is left untouched and the error is returned.
func (p *Plotter) Render(surface Surface, x, y string) (*models.Scene, error) {
	scene, err := p.Scene(x, y)
	if err != nil {
		return nil, err
	}
	img, err := p.Image(scene)
	if err != nil {
		return nil, err
	}
	surface.Draw(img)
	p.log.Debug("plot rendered", "x", x, "y", y, "points", len(scene.Points))
	return scene, nil
}

// Image rasterizes a scene.
func (p *Plotter) Image(scene *models.Scene) (image.Image, error) {
	if len(scene.Points) == 0 {
		return placeholder(p.opts.Width, p.opts.Height, scene), nil
	}
	var buf bytes.Buffer
	if err := p.buildChart(scene).Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	return img, nil
}

// WritePNG encodes a scene as PNG.
func (p *Plotter) WritePNG(w io.Writer, scene *models.Scene) error {
	if len(scene.Points) == 0 {
		return png.Encode(w, placeholder(p.opts.Width, p.opts.Height, scene))
	}
	if err := p.buildChart(scene).Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// pointStyle renders dots only, no connecting line
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func (p *Plotter) buildChart(scene *models.Scene) chart.Chart {
	xs := make([]float64, len(scene.Points))
	ys := make([]float64, len(scene.Points))
	for i, pt := range scene.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}

	scatter := chart.ContinuousSeries{
		Name:    "countries",
		XValues: xs,
		YValues: ys,
		Style:   pointStyle(chart.ColorBlue),
	}
	series := []chart.Series{scatter}
	if canFit(xs) {
		series = append(series, &chart.LinearRegressionSeries{
			Name:        "fit",
			InnerSeries: scatter,
			Style:       chart.Style{StrokeWidth: 2, StrokeColor: chart.ColorRed},
		})
	}

	return chart.Chart{
		Title:      scene.Title,
		Width:      p.opts.Width,
		Height:     p.opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  scene.X,
			Range: &chart.ContinuousRange{Min: scene.XRange.Min, Max: scene.XRange.Max},
		},
		YAxis: chart.YAxis{
			Name:  scene.Y,
			Range: &chart.ContinuousRange{Min: scene.YRange.Min, Max: scene.YRange.Max},
		},
		Series: series,
	}
}

// canFit reports whether a least-squares line exists: two or more points
// with distinct x values.
func canFit(xs []float64) bool {
	if len(xs) < 2 {
		return false
	}
	for _, x := range xs[1:] {
		if x != xs[0] {
			return true
		}
	}
	return false
}
