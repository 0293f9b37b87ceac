package api

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"hdiexplorer/internal/config"
	"hdiexplorer/internal/engine"
	"hdiexplorer/internal/models"
	"hdiexplorer/internal/plot"
	"hdiexplorer/internal/session"

	"github.com/labstack/echo/v4"
)

//go:embed static/index.html
var indexHTML []byte

// backend is swapped in once the dataset has loaded.
type backend struct {
	res     *engine.Resolver
	plotter *plot.Plotter
}

type Handler struct {
	cfg  *config.Config
	log  *slog.Logger
	data atomic.Pointer[backend]
}

// NewHandler builds the HTTP surface. ds may be nil; requests then get 503
// until SetData is called.
func NewHandler(cfg *config.Config, ds *engine.Dataset, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{cfg: cfg, log: logger}
	if ds != nil {
		h.SetData(ds)
	}
	return h
}

func (h *Handler) SetData(ds *engine.Dataset) {
	res := engine.NewResolver(ds, h.cfg.Years())
	h.data.Store(&backend{res: res, plotter: plot.New(res, h.cfg.PlotOptions(), h.log)})
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/years", h.GetYears)
	api.GET("/columns", h.GetColumns)
	api.GET("/selection", h.GetSelection)
	api.GET("/plot", h.GetPlot)
	api.GET("/plot.png", h.GetPlotPNG)
}

// --- HELPERS ---
func (h *Handler) ready() (*backend, error) {
	b := h.data.Load()
	if b == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is still loading")
	}
	return b, nil
}

func getYearParam(c echo.Context, def int) (int, error) {
	raw := c.QueryParam("year")
	if raw == "" {
		return def, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
	}
	return year, nil
}

// getSelectionParams reads year/x/y, falling back to the configured defaults.
// Years outside the plotted range are rejected; their bounds are undefined.
func (h *Handler) getSelectionParams(c echo.Context, years engine.YearRange) (session.State, error) {
	year, err := getYearParam(c, h.cfg.DefaultYear)
	if err != nil {
		return session.State{}, err
	}
	if !years.Contains(year) {
		return session.State{}, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("year must be within %d..%d", years.First, years.Last))
	}
	st := session.State{Year: year, X: c.QueryParam("x"), Y: c.QueryParam("y")}
	if st.X == "" {
		st.X = h.cfg.DefaultX
	}
	if st.Y == "" {
		st.Y = h.cfg.DefaultY
	}
	return st, nil
}

func columnErrorResponse(c echo.Context, err error) error {
	var ce *engine.ColumnError
	if errors.As(err, &ce) {
		status := http.StatusNotFound
		if errors.Is(err, engine.ErrNotNumeric) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, models.ErrorBody{Error: ce.Err.Error(), Column: ce.Column})
	}
	return err
}

// scene aligns the requested pair to one year and resolves it.
func (h *Handler) scene(c echo.Context) (*backend, *models.Scene, error) {
	b, err := h.ready()
	if err != nil {
		return nil, nil, err
	}
	st, err := h.getSelectionParams(c, b.res.Years())
	if err != nil {
		return nil, nil, err
	}
	st, _, _ = session.Align(b.res, st)
	scene, err := b.plotter.Scene(st.X, st.Y)
	if err != nil {
		return nil, nil, err
	}
	return b, scene, nil
}

// --- HANDLERS ---
func (h *Handler) Index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

func (h *Handler) Health(c echo.Context) error {
	b, err := h.ready()
	if err != nil {
		return err
	}
	ds := b.res.Dataset()
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"rows":    ds.NumRows(),
		"columns": len(ds.Columns()),
	})
}

func (h *Handler) GetYears(c echo.Context) error {
	return c.JSON(http.StatusOK, models.YearsInfo{
		First:    h.cfg.FirstYear,
		Last:     h.cfg.LastYear,
		Default:  h.cfg.DefaultYear,
		DefaultX: h.cfg.DefaultX,
		DefaultY: h.cfg.DefaultY,
	})
}

func (h *Handler) GetColumns(c echo.Context) error {
	b, err := h.ready()
	if err != nil {
		return err
	}
	year, err := getYearParam(c, h.cfg.DefaultYear)
	if err != nil {
		return err
	}

	byLabel := b.res.ColumnsForYear(year)
	labels := make(map[string][]string, len(byLabel))
	for label, cols := range byLabel {
		labels[string(label)] = cols
	}
	return c.JSON(http.StatusOK, models.ColumnsInfo{
		Year:    year,
		Labels:  labels,
		Options: b.res.SelectableColumns(year),
	})
}

// GetSelection carries x and y over to the requested year, the way the
// slider does in the desktop viewer.
func (h *Handler) GetSelection(c echo.Context) error {
	b, err := h.ready()
	if err != nil {
		return err
	}
	st, err := h.getSelectionParams(c, b.res.Years())
	if err != nil {
		return err
	}
	st, xOK, yOK := session.Align(b.res, st)
	return c.JSON(http.StatusOK, models.Selection{
		Year:       st.Year,
		X:          st.X,
		Y:          st.Y,
		XAvailable: xOK,
		YAvailable: yOK,
		Options:    b.res.SelectableColumns(st.Year),
	})
}

func (h *Handler) GetPlot(c echo.Context) error {
	_, scene, err := h.scene(c)
	if err != nil {
		return columnErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, scene)
}

func (h *Handler) GetPlotPNG(c echo.Context) error {
	b, scene, err := h.scene(c)
	if err != nil {
		return columnErrorResponse(c, err)
	}
	var buf bytes.Buffer
	if err := b.plotter.WritePNG(&buf, scene); err != nil {
		h.log.Error("png render failed", "x", scene.X, "y", scene.Y, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "render failed")
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
