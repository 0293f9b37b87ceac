package main

import (
	"fmt"
	"image"
	"os"
	"strconv"

	"hdiexplorer/internal/config"
	"hdiexplorer/internal/engine"
	"hdiexplorer/internal/logging"
	"hdiexplorer/internal/plot"
	"hdiexplorer/internal/session"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/spf13/cobra"
)

// imageSurface shows rendered plots on a fyne image canvas.
type imageSurface struct {
	img *canvas.Image
}

func (s *imageSurface) Draw(img image.Image) {
	s.img.Image = img
	s.img.Refresh()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	loader := config.NewLoader()

	cmd := &cobra.Command{
		Use:           "hdi-viewer",
		Short:         "Explore human development indicators in a desktop window",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := loader.Load(cfgFile)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "path to a YAML config file")
	f.String("data", "", "CSV dataset to load (default data.csv)")
	f.Int("year", 0, "initial year")
	f.Float64("margin", 0, "axis padding as a fraction of the global span")
	f.String("log-level", "", "debug, info, warn or error")
	return cmd
}

func run(cfg *config.Config) error {
	logger := logging.New(cfg.Log, os.Stderr)

	// Without data there is nothing to show, so a load failure is fatal
	ds, err := engine.LoadDataset(cfg.DataPath, memory.NewGoAllocator())
	if err != nil {
		return err
	}
	defer ds.Release()

	res := engine.NewResolver(ds, cfg.Years())
	plotter := plot.New(res, cfg.PlotOptions(), logger)

	po := plotter.Options()
	a := app.NewWithID("org.hdiexplorer.viewer")
	w := a.NewWindow("Interactive Plot with Variable Selection")
	w.Resize(fyne.NewSize(float32(po.Width), float32(po.Height+120)))

	chartImg := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, po.Width, po.Height)))
	chartImg.FillMode = canvas.ImageFillContain
	chartImg.SetMinSize(fyne.NewSize(float32(po.Width)/2, float32(po.Height)/2))

	ctrl := session.NewController(res, plotter, &imageSurface{img: chartImg}, cfg.InitialState(), logger)
	st := ctrl.State()

	// Selects are filled directly so refreshing them never fires callbacks
	xSelect := widget.NewSelect(ctrl.Options(), nil)
	xSelect.Selected = st.X
	ySelect := widget.NewSelect(ctrl.Options(), nil)
	ySelect.Selected = st.Y

	refreshSelects := func() {
		st := ctrl.State()
		opts := ctrl.Options()
		xSelect.Options, xSelect.Selected = opts, st.X
		ySelect.Options, ySelect.Selected = opts, st.Y
		xSelect.Refresh()
		ySelect.Refresh()
	}

	yearLabel := widget.NewLabel(strconv.Itoa(st.Year))
	years := cfg.Years()
	slider := widget.NewSlider(float64(years.First), float64(years.Last))
	slider.Step = 1
	slider.SetValue(float64(st.Year))
	slider.OnChanged = func(v float64) {
		year := int(v)
		if year == ctrl.State().Year {
			return
		}
		yearLabel.SetText(strconv.Itoa(year))
		// Carry what the dropdowns show, even if Update was never pressed
		ctrl.Select(xSelect.Selected, ySelect.Selected)
		if _, err := ctrl.SetYear(year); err != nil {
			logger.Warn("plot not updated", "year", year, "err", err)
		}
		refreshSelects()
	}

	update := widget.NewButton("Update Plot", func() {
		ctrl.Select(xSelect.Selected, ySelect.Selected)
		if _, err := ctrl.Update(); err != nil {
			logger.Warn("plot not updated", "err", err)
		}
		refreshSelects()
	})

	controls := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Year:"), yearLabel, slider),
		container.NewHBox(
			widget.NewLabel("Select X-axis Variable:"), xSelect,
			widget.NewLabel("Select Y-axis Variable:"), ySelect,
			update,
		),
	)
	w.SetContent(container.NewBorder(nil, controls, nil, nil, chartImg))

	if _, err := ctrl.Update(); err != nil {
		logger.Warn("initial plot not drawn", "err", err)
	}
	logger.Debug("viewer ready", "year", st.Year, "options", len(ctrl.Options()))
	w.ShowAndRun()
	return nil
}
