package plot

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"hdiexplorer/internal/engine"

	"github.com/apache/arrow/go/v18/arrow/memory"
	chart "github.com/wcharczuk/go-chart/v2"
)

const testCSV = `Country,Expected Years of Schooling (2020),Life Expectancy at Birth (2020),Expected Years of Schooling (1990),Life Expectancy at Birth (1990),GDI (2020)
Alpha,10,60,6,40,
Beta,12,65,7,85,
Gamma,,70,8,50,
`

type recordingSurface struct {
	frames []image.Image
}

func (s *recordingSurface) Draw(img image.Image) { s.frames = append(s.frames, img) }

func newTestPlotter(t *testing.T) *Plotter {
	t.Helper()
	ds, err := engine.ParseDataset([]byte(testCSV), memory.NewGoAllocator())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(ds.Release)

	opts := DefaultOptions()
	opts.Width, opts.Height = 640, 480
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(engine.NewResolver(ds, engine.SupportedYears), opts, logger)
}

func TestSceneFiltersCurrentYear(t *testing.T) {
	p := newTestPlotter(t)

	scene, err := p.Scene("Expected Years of Schooling (2020)", "Life Expectancy at Birth (2020)")
	if err != nil {
		t.Fatal(err)
	}
	if len(scene.Points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(scene.Points))
	}
	if scene.Points[0].X != 10 || scene.Points[0].Y != 60 || scene.Points[1].X != 12 || scene.Points[1].Y != 65 {
		t.Errorf("unexpected points %+v", scene.Points)
	}
	if scene.Title != "Life Expectancy at Birth (2020) vs Expected Years of Schooling (2020)" {
		t.Errorf("title: got %q", scene.Title)
	}
	if scene.Year != 2020 {
		t.Errorf("year: got %d", scene.Year)
	}
	// 1990 holds the global Y max (85), not 2020
	if scene.YRange.Max <= 85 || scene.YRange.Min >= 40 {
		t.Errorf("Y range should cover [40,85], got %+v", scene.YRange)
	}
}

func TestBoundsStableAcrossYears(t *testing.T) {
	p := newTestPlotter(t)

	a, err := p.Scene("Expected Years of Schooling (2020)", "Life Expectancy at Birth (2020)")
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Scene("Expected Years of Schooling (1990)", "Life Expectancy at Birth (1990)")
	if err != nil {
		t.Fatal(err)
	}
	if a.XRange != b.XRange || a.YRange != b.YRange {
		t.Errorf("bounds moved between years: %+v/%+v vs %+v/%+v", a.XRange, a.YRange, b.XRange, b.YRange)
	}
}

func TestRenderIdempotent(t *testing.T) {
	p := newTestPlotter(t)
	surface := &recordingSurface{}

	first, err := p.Render(surface, "Expected Years of Schooling (2020)", "Life Expectancy at Birth (2020)")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Render(surface, "Expected Years of Schooling (2020)", "Life Expectancy at Birth (2020)")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("scenes differ:\n%+v\n%+v", first, second)
	}
	if len(surface.frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(surface.frames))
	}

	var a, b bytes.Buffer
	if err := png.Encode(&a, surface.frames[0]); err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(&b, surface.frames[1]); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("repeated render produced different pixels")
	}
}

func TestRenderMissingColumnLeavesSurface(t *testing.T) {
	p := newTestPlotter(t)
	surface := &recordingSurface{}

	_, err := p.Render(surface, "Mean Years of Schooling (2020)", "Life Expectancy at Birth (2020)")
	if !errors.Is(err, engine.ErrColumnNotFound) {
		t.Fatalf("Expected ErrColumnNotFound, got %v", err)
	}
	if len(surface.frames) != 0 {
		t.Errorf("surface was drawn %d times", len(surface.frames))
	}
}

func TestRenderEmptyDrawsPlaceholder(t *testing.T) {
	p := newTestPlotter(t)
	surface := &recordingSurface{}

	scene, err := p.Render(surface, "GDI (2020)", "Life Expectancy at Birth (2020)")
	if err != nil {
		t.Fatal(err)
	}
	if len(scene.Points) != 0 {
		t.Fatalf("Expected no points, got %d", len(scene.Points))
	}
	if len(surface.frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(surface.frames))
	}
	if got := surface.frames[0].Bounds().Size(); got.X != 640 || got.Y != 480 {
		t.Errorf("placeholder size: got %v", got)
	}
}

func TestWritePNG(t *testing.T) {
	p := newTestPlotter(t)

	scene, err := p.Scene("Expected Years of Schooling (1990)", "Life Expectancy at Birth (1990)")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := p.WritePNG(&buf, scene); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 640 || got.Y != 480 {
		t.Errorf("chart size: got %v", got)
	}
}

func TestCanFit(t *testing.T) {
	if canFit(nil) || canFit([]float64{1}) || canFit([]float64{2, 2, 2}) {
		t.Error("degenerate inputs should not be fitted")
	}
	if !canFit([]float64{1, 2}) {
		t.Error("two distinct x values should be fitted")
	}
}

func TestPointStyleHasNoLine(t *testing.T) {
	// Series defaults fill in a zero stroke width, so it must stay disabled
	defaults := chart.Style{StrokeWidth: 2, StrokeColor: chart.ColorBlack}
	st := pointStyle(chart.ColorBlue).InheritFrom(defaults)
	if st.ShouldDrawStroke() {
		t.Errorf("scatter would draw a connecting line: width %v", st.StrokeWidth)
	}
	if !st.ShouldDrawDot() {
		t.Error("scatter should draw dots")
	}
}

func TestOptions(t *testing.T) {
	p := newTestPlotter(t)
	if got := p.Options(); got.Width != 640 || got.Height != 480 || got.EntityColumn != "Country" {
		t.Errorf("options: got %+v", got)
	}
}
