// Package httpapi exposes the grid pipeline over HTTP: operational
// endpoints plus a small JSON API for location listing and grid building.
// Rendering is left to the consumer; the grid endpoint returns the
// hand-off structure as-is.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ausclim/heatgrid/internal/adapter/bom"
	"github.com/ausclim/heatgrid/internal/config"
	"github.com/ausclim/heatgrid/internal/domain"
	"github.com/ausclim/heatgrid/internal/pipeline"
)

// GridBuilder runs the grid construction pipeline over a dataset.
type GridBuilder interface {
	Build(ds *domain.Dataset, req pipeline.GridRequest) (*domain.CalendarGrid, error)
}

// Server exposes health, readiness, metrics, and the grid API.
type Server struct {
	httpServer *http.Server
	source     bom.Source
	builder    GridBuilder
	cfg        *config.Config
	logger     *slog.Logger
	ready      atomic.Bool
}

// NewServer creates an HTTP server with operational and API routes.
func NewServer(cfg *config.Config, source bom.Source, builder GridBuilder, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source:  source,
		builder: builder,
		cfg:     cfg,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/locations", s.handleLocations)
	mux.HandleFunc("GET /api/v1/grid", s.handleGrid)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady reports ready once at least one station dataset has been
// served successfully.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "no station dataset fetched yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.fetchDataset(w, r, domain.TypeMaximum)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"locations": domain.Locations(ds),
		"default":   domain.DefaultLocation(ds),
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	season, err := parseSeason(q.Get("season"))
	if err != nil {
		writeError(w, err)
		return
	}
	policy, err := domain.PolicyFor(season)
	if err != nil {
		writeError(w, err)
		return
	}
	typ, err := parseType(q.Get("type"), policy.DefaultType)
	if err != nil {
		writeError(w, err)
		return
	}

	req := pipeline.GridRequest{
		Location:  q.Get("location"),
		Season:    season,
		Type:      typ,
		Precision: s.cfg.PrecisionOverride(),
	}

	if req.StartYear, err = parseYear(q.Get("start"), "start"); err != nil {
		writeError(w, err)
		return
	}
	if req.EndYear, err = parseYear(q.Get("end"), "end"); err != nil {
		writeError(w, err)
		return
	}

	if raw := q.Get("thresholds"); raw != "" {
		th, err := config.ParseThresholds(raw)
		if err != nil {
			writeError(w, &domain.ArgumentError{Field: "thresholds", Reason: err.Error()})
			return
		}
		req.Thresholds = th
	} else if req.Thresholds, err = s.cfg.DefaultThresholds(season); err != nil {
		writeError(w, err)
		return
	}

	if raw := q.Get("precision"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, &domain.ArgumentError{Field: "precision", Reason: "must be an integer"})
			return
		}
		req.Precision = &p
	}

	ds, ok := s.fetchDataset(w, r, typ)
	if !ok {
		return
	}

	grid, err := s.builder.Build(ds, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// fetchDataset resolves the station parameter and retrieves its dataset,
// writing an upstream error response on failure.
func (s *Server) fetchDataset(w http.ResponseWriter, r *http.Request, typ domain.ObsType) (*domain.Dataset, bool) {
	station := r.URL.Query().Get("station")
	if station == "" {
		station = s.cfg.StationID
	}

	ds, err := s.source.FetchDailySeries(r.Context(), station, typ)
	if err != nil {
		s.logger.Error("station fetch failed", "station", station, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "station data unavailable: " + station})
		return nil, false
	}
	s.ready.Store(true)
	return ds, true
}

func parseSeason(raw string) (domain.Season, error) {
	switch strings.ToLower(raw) {
	case "", "summer":
		return domain.SeasonSummer, nil
	case "winter":
		return domain.SeasonWinter, nil
	default:
		return "", &domain.ArgumentError{Field: "season", Reason: "must be Summer or Winter"}
	}
}

func parseType(raw string, def domain.ObsType) (domain.ObsType, error) {
	switch strings.ToLower(raw) {
	case "":
		return def, nil
	case "maximum", "max":
		return domain.TypeMaximum, nil
	case "minimum", "min":
		return domain.TypeMinimum, nil
	default:
		return "", &domain.ArgumentError{Field: "type", Reason: "must be Maximum or Minimum"}
	}
}

func parseYear(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 0 {
		return 0, &domain.ArgumentError{Field: field, Reason: "must be a calendar year"}
	}
	return y, nil
}

// writeError maps domain error kinds to HTTP statuses: caller mistakes are
// 400, an empty resolved window is 404, a window with no extremes is 422,
// and a malformed dataset is a server-side 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		schemaErr   *domain.SchemaError
		argErr      *domain.ArgumentError
		rangeErr    *domain.EmptyRangeError
		extremesErr *domain.EmptyExtremesError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &argErr):
		status = http.StatusBadRequest
	case errors.As(err, &rangeErr):
		status = http.StatusNotFound
	case errors.As(err, &extremesErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &schemaErr):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort JSON response
}
