// Package session holds the interactive selection (year, X column, Y column)
// and keeps both columns pinned to the same year before every render.
package session

import (
	"log/slog"

	"hdiexplorer/internal/engine"
	"hdiexplorer/internal/models"
	"hdiexplorer/internal/plot"
)

// State is the current selection. It lives only as long as the UI session.
type State struct {
	Year int
	X    string
	Y    string
}

// DefaultState is what the viewer opens with.
func DefaultState() State {
	return State{
		Year: 2020,
		X:    "Expected Years of Schooling (2020)",
		Y:    "Life Expectancy at Birth (2020)",
	}
}

// Align moves X and Y onto st.Year. The returned flags report whether each
// aligned column exists; the names are rewritten either way so the UI can
// show what was asked for.
func Align(res *engine.Resolver, st State) (aligned State, xOK, yOK bool) {
	aligned = st
	aligned.X, xOK = alignColumn(res, st.X, st.Year)
	aligned.Y, yOK = alignColumn(res, st.Y, st.Year)
	return aligned, xOK, yOK
}

func alignColumn(res *engine.Resolver, column string, year int) (string, bool) {
	if _, ok := engine.ColumnYear(column); !ok {
		return column, res.Dataset().HasColumn(column)
	}
	return res.SubstituteYear(column, year)
}

// Controller glues slider and selector events to the plotter.
type Controller struct {
	res     *engine.Resolver
	plotter *plot.Plotter
	surface plot.Surface
	log     *slog.Logger

	state   State
	options []string
}

func NewController(res *engine.Resolver, plotter *plot.Plotter, surface plot.Surface, initial State, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{res: res, plotter: plotter, surface: surface, log: logger}
	c.state, _, _ = Align(res, initial)
	c.options = res.SelectableColumns(c.state.Year)
	return c
}

func (c *Controller) State() State { return c.state }

// Options are the selectable columns for the current year.
func (c *Controller) Options() []string {
	out := make([]string, len(c.options))
	copy(out, c.options)
	return out
}

// SetYear handles a slider move: carry both selections over to year, refresh
// the options and redraw.
func (c *Controller) SetYear(year int) (*models.Scene, error) {
	c.state.Year = year
	c.state, _, _ = Align(c.res, c.state)
	c.options = c.res.SelectableColumns(year)
	c.log.Debug("year changed", "year", year, "options", len(c.options))
	return c.render()
}

// Select records the dropdown values without drawing.
func (c *Controller) Select(x, y string) {
	c.state.X = x
	c.state.Y = y
}

// Update redraws the current selection.
func (c *Controller) Update() (*models.Scene, error) {
	c.state, _, _ = Align(c.res, c.state)
	return c.render()
}

func (c *Controller) render() (*models.Scene, error) {
	return c.plotter.Render(c.surface, c.state.X, c.state.Y)
}
