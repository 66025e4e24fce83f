// Package pipeline orchestrates the grid construction stages: schema
// validation, window resolution, leap-day normalization, classification,
// and assembly. Each build is a synchronous pure transformation over an
// immutable dataset; concurrent builds against the same dataset are safe.
package pipeline

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ausclim/heatgrid/internal/domain"
	"github.com/ausclim/heatgrid/internal/observability"
)

// GridRequest parameterizes one calendar grid build. Zero values select
// defaults: the last sorted location, the season's default observation type,
// and the thirty years up to today.
type GridRequest struct {
	Location  string
	Season    domain.Season
	Type      domain.ObsType
	StartYear int
	EndYear   int

	Thresholds domain.Thresholds
	Precision  *int // nil selects dynamic precision detection
}

// Builder runs the grid construction pipeline.
type Builder struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewBuilder creates a Builder with the given observability.
func NewBuilder(logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{logger: logger, metrics: metrics}
}

// Build validates the dataset and request, resolves the season window, and
// assembles the renderable grid. It either returns a fully formed grid or
// fails with one of the domain error kinds; no partial results.
func (b *Builder) Build(ds *domain.Dataset, req GridRequest) (*domain.CalendarGrid, error) {
	start := time.Now()
	grid, err := b.build(ds, req)

	season := string(req.Season)
	if season == "" {
		season = "unknown"
	}
	b.metrics.GridsBuilt.WithLabelValues(season, outcomeOf(err)).Inc()
	if err != nil {
		b.logger.Warn("grid build failed", "season", season, "location", req.Location, "error", err)
		return nil, err
	}

	b.metrics.GridBuildDuration.Observe(time.Since(start).Seconds())
	b.logger.Info("grid built",
		"season", season,
		"location", grid.Location,
		"start_year", grid.StartYear,
		"end_year", grid.EndYear,
		"cells", len(grid.Cells),
	)
	return grid, nil
}

func (b *Builder) build(ds *domain.Dataset, req GridRequest) (*domain.CalendarGrid, error) {
	if err := domain.ValidateSchema(ds); err != nil {
		return nil, err
	}

	policy, err := domain.PolicyFor(req.Season)
	if err != nil {
		return nil, err
	}

	location := req.Location
	if location == "" {
		location = domain.DefaultLocation(ds)
	} else if !hasLocation(ds, location) {
		return nil, &domain.ArgumentError{Field: "location", Reason: "location not available: " + location}
	}

	typ := req.Type
	if typ == "" {
		typ = policy.DefaultType
	}
	if typ != domain.TypeMaximum && typ != domain.TypeMinimum {
		return nil, &domain.ArgumentError{Field: "type", Reason: "must be Maximum or Minimum"}
	}

	startYear, endYear := req.StartYear, req.EndYear
	defStart, defEnd := domain.DefaultYearRange()
	if startYear == 0 {
		startYear = defStart
	}
	if endYear == 0 {
		endYear = defEnd
	}

	series := domain.FilterSeries(ds, location, typ)
	window, rows, notices, err := domain.ResolveWindow(series, policy, startYear, endYear)
	if err != nil {
		return nil, err
	}
	for _, n := range notices {
		b.logger.Info("window adjusted", "notice", string(n), "location", location)
	}

	rows = domain.NormalizeLeapDays(rows, policy, window)

	classified, err := domain.Classify(rows, policy, window, req.Thresholds, req.Precision)
	if err != nil {
		return nil, err
	}

	grid := domain.AssembleGrid(classified, policy, window, location, typ)
	for _, n := range notices {
		grid.Notices = append(grid.Notices, string(n))
	}
	return grid, nil
}

func hasLocation(ds *domain.Dataset, location string) bool {
	for _, l := range domain.Locations(ds) {
		if l == location {
			return true
		}
	}
	return false
}

// outcomeOf maps a build error to its metric label.
func outcomeOf(err error) string {
	var (
		schemaErr   *domain.SchemaError
		argErr      *domain.ArgumentError
		rangeErr    *domain.EmptyRangeError
		extremesErr *domain.EmptyExtremesError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &schemaErr):
		return "schema_error"
	case errors.As(err, &argErr):
		return "argument_error"
	case errors.As(err, &rangeErr):
		return "empty_range"
	case errors.As(err, &extremesErr):
		return "empty_extremes"
	default:
		return "error"
	}
}
