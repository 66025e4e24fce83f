package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausclim/heatgrid/internal/adapter/httpapi"
	"github.com/ausclim/heatgrid/internal/config"
	"github.com/ausclim/heatgrid/internal/domain"
	"github.com/ausclim/heatgrid/internal/observability"
	"github.com/ausclim/heatgrid/internal/pipeline"
)

// stubSource serves a fixed dataset without touching the network.
type stubSource struct {
	ds  *domain.Dataset
	err error
}

func (s *stubSource) FetchDailySeries(ctx context.Context, stationID string, typ domain.ObsType) (*domain.Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ds, nil
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:         ":0",
		StationID:        "086338",
		SummerThresholds: "30,35,40",
		WinterThresholds: "0,2,5",
		Precision:        -1,
	}
}

// stationDataset builds a two-location maximum series for 2001-2003 with hot
// early-January days.
func stationDataset() *domain.Dataset {
	var rows []domain.DailyRecord
	for _, loc := range []string{"ADELAIDE", "SYDNEY"} {
		d := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2003, time.December, 31, 0, 0, 0, 0, time.UTC)
		for ; !d.After(end); d = d.AddDate(0, 0, 1) {
			temp := 25.0
			if d.Month() == time.January && d.Day() <= 2 {
				temp = 41.0
			}
			rows = append(rows, domain.DailyRecord{
				Date:        d,
				Year:        d.Year(),
				Month:       int(d.Month()),
				Day:         d.Day(),
				Location:    loc,
				Type:        domain.TypeMaximum,
				Temperature: &temp,
			})
		}
	}
	return domain.BuildDataset(rows)
}

func newTestServer(source *stubSource) *httpapi.Server {
	logger := slog.Default()
	builder := pipeline.NewBuilder(logger, observability.NewMetricsForTesting())
	return httpapi.NewServer(testConfig(), source, builder, logger)
}

func get(t *testing.T, s *httpapi.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(&stubSource{ds: stationDataset()})

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestServer_Readiness(t *testing.T) {
	s := newTestServer(&stubSource{ds: stationDataset()})

	// Not ready until a dataset has been served.
	rec := get(t, s, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, s, "/api/v1/locations")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Locations(t *testing.T) {
	s := newTestServer(&stubSource{ds: stationDataset()})

	rec := get(t, s, "/api/v1/locations")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Locations []string `json:"locations"`
		Default   string   `json:"default"`
	}
	decode(t, rec, &body)
	assert.Equal(t, []string{"ADELAIDE", "SYDNEY"}, body.Locations)
	assert.Equal(t, "SYDNEY", body.Default)
}

func TestServer_Grid(t *testing.T) {
	s := newTestServer(&stubSource{ds: stationDataset()})

	t.Run("builds a grid from query parameters", func(t *testing.T) {
		rec := get(t, s, "/api/v1/grid?season=Summer&location=ADELAIDE&start=2001&end=2003")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var grid domain.CalendarGrid
		decode(t, rec, &grid)
		assert.Equal(t, "ADELAIDE", grid.Location)
		assert.Equal(t, domain.SeasonSummer, grid.Season)
		assert.Equal(t, domain.TypeMaximum, grid.Type)
		assert.Equal(t, 2001, grid.StartYear)
		assert.Equal(t, 2003, grid.EndYear)
		assert.NotEmpty(t, grid.Cells)
		assert.Len(t, grid.Counts, 2)
	})

	t.Run("season defaults to summer, location to the last sorted", func(t *testing.T) {
		rec := get(t, s, "/api/v1/grid?start=2001&end=2003")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var grid domain.CalendarGrid
		decode(t, rec, &grid)
		assert.Equal(t, "SYDNEY", grid.Location)
		assert.Equal(t, domain.SeasonSummer, grid.Season)
	})

	t.Run("request thresholds override the configured defaults", func(t *testing.T) {
		rec := get(t, s, "/api/v1/grid?start=2001&end=2003&thresholds=38,40,42")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var grid domain.CalendarGrid
		decode(t, rec, &grid)
		require.NotEmpty(t, grid.Legend)
		assert.Equal(t, "39-40", grid.Legend[0].Label)
	})

	t.Run("explicit precision shapes the labels", func(t *testing.T) {
		rec := get(t, s, "/api/v1/grid?start=2001&end=2003&precision=1")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var grid domain.CalendarGrid
		decode(t, rec, &grid)
		assert.Equal(t, "30.1-35.0", grid.Legend[0].Label)
	})

	t.Run("bad parameters are client errors", func(t *testing.T) {
		for name, target := range map[string]string{
			"season":     "/api/v1/grid?season=Autumn",
			"type":       "/api/v1/grid?type=Average",
			"start":      "/api/v1/grid?start=MMXX",
			"thresholds": "/api/v1/grid?thresholds=40,35",
			"precision":  "/api/v1/grid?precision=two",
			"location":   "/api/v1/grid?location=HOBART&start=2001&end=2003",
		} {
			rec := get(t, s, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		}
	})

	t.Run("window outside the data is not found", func(t *testing.T) {
		rec := get(t, s, "/api/v1/grid?season=Winter&start=2001&end=2003&type=Minimum")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no extreme days is unprocessable", func(t *testing.T) {
		rec := get(t, s, "/api/v1/grid?start=2001&end=2003&thresholds=45,50,55")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestServer_StationUnavailable(t *testing.T) {
	s := newTestServer(&stubSource{err: fmt.Errorf("connection refused")})

	rec := get(t, s, "/api/v1/grid?start=2001&end=2003")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Contains(t, body["error"], "station data unavailable: 086338")
}
