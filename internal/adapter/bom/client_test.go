package bom

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausclim/heatgrid/internal/domain"
	"github.com/ausclim/heatgrid/internal/observability"
)

func zipArchive(t *testing.T, name, csvBody string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleCSV = `date,maximum temperature (degC),site number,site name
2001-01-01,30.5,086338,MELBOURNE REGIONAL OFFICE
2001-01-02,,086338,MELBOURNE REGIONAL OFFICE
2001-01-03,null,086338,MELBOURNE REGIONAL OFFICE
2001-01-04,25.0,086338,MELBOURNE REGIONAL OFFICE
`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 0, slog.Default(), observability.NewMetricsForTesting())
}

func TestClient_FetchDailySeries(t *testing.T) {
	t.Run("parses a zipped archive into a dataset", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write(zipArchive(t, "tmax.086338.daily.csv", sampleCSV)) //nolint:errcheck
		}))

		ds, err := client.FetchDailySeries(context.Background(), "086338", domain.TypeMaximum)
		require.NoError(t, err)
		assert.Equal(t, "/tmax.086338.daily.zip", gotPath)

		require.NoError(t, domain.ValidateSchema(ds))
		require.Len(t, ds.Records, 4)

		first := ds.Records[0]
		assert.Equal(t, "MELBOURNE REGIONAL OFFICE", first.Location)
		assert.Equal(t, domain.TypeMaximum, first.Type)
		require.NotNil(t, first.Temperature)
		assert.Equal(t, 30.5, *first.Temperature)

		// Both the blank and the literal null cell are missing observations.
		assert.True(t, ds.Records[1].Missing())
		assert.True(t, ds.Records[2].Missing())
	})

	t.Run("accepts both temperature header variants", func(t *testing.T) {
		for name, header := range map[string]string{
			"abbreviated": "maximum temperature (degC)",
			"spelled out": "maximum temperature (degrees C)",
		} {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(zipArchive(t, "tmax.086338.daily.csv", //nolint:errcheck
					"date,"+header+",site name\n2001-01-01,30.5,MELBOURNE\n"))
			}))

			ds, err := client.FetchDailySeries(context.Background(), "086338", domain.TypeMaximum)
			require.NoError(t, err, name)
			require.Len(t, ds.Records, 1, name)
			require.NotNil(t, ds.Records[0].Temperature, name)
			assert.Equal(t, 30.5, *ds.Records[0].Temperature, name)
		}
	})

	t.Run("minimum series uses the tmin archive", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write(zipArchive(t, "tmin.023090.daily.csv", //nolint:errcheck
				"date,minimum temperature (degC),site name\n2001-07-01,2.5,ADELAIDE\n"))
		}))

		ds, err := client.FetchDailySeries(context.Background(), "023090", domain.TypeMinimum)
		require.NoError(t, err)
		assert.Equal(t, "/tmin.023090.daily.zip", gotPath)
		assert.Equal(t, domain.TypeMinimum, ds.Records[0].Type)
	})

	t.Run("rejects an unsupported observation type", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler())
		_, err := client.FetchDailySeries(context.Background(), "086338", domain.ObsType("Average"))
		assert.ErrorContains(t, err, "unsupported observation type")
	})

	t.Run("reports non-200 responses", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone fishing", http.StatusServiceUnavailable)
		}))
		_, err := client.FetchDailySeries(context.Background(), "086338", domain.TypeMaximum)
		assert.ErrorContains(t, err, "status 503")
	})

	t.Run("rejects an archive without a CSV", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(zipArchive(t, "readme.txt", "nothing here")) //nolint:errcheck
		}))
		_, err := client.FetchDailySeries(context.Background(), "086338", domain.TypeMaximum)
		assert.ErrorContains(t, err, "no CSV file")
	})

	t.Run("rejects a header missing the temperature column", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(zipArchive(t, "tmax.086338.daily.csv", //nolint:errcheck
				"date,site name\n2001-01-01,MELBOURNE\n"))
		}))
		_, err := client.FetchDailySeries(context.Background(), "086338", domain.TypeMaximum)
		assert.ErrorContains(t, err, "missing expected columns")
	})

	t.Run("rejects a malformed temperature cell", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(zipArchive(t, "tmax.086338.daily.csv", //nolint:errcheck
				"date,maximum temperature (degC),site name\n2001-01-01,warm,MELBOURNE\n"))
		}))
		_, err := client.FetchDailySeries(context.Background(), "086338", domain.TypeMaximum)
		assert.ErrorContains(t, err, `bad temperature "warm"`)
	})
}

// countingSource counts fetches so cache hits are observable.
type countingSource struct {
	calls atomic.Int64
	err   error
}

func (s *countingSource) FetchDailySeries(ctx context.Context, stationID string, typ domain.ObsType) (*domain.Dataset, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Dataset{Columns: domain.StandardColumns()}, nil
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches once per station and type", func(t *testing.T) {
		inner := &countingSource{}
		src := NewCachedSource(inner, 4, observability.NewMetricsForTesting())

		first, err := src.FetchDailySeries(ctx, "086338", domain.TypeMaximum)
		require.NoError(t, err)
		second, err := src.FetchDailySeries(ctx, "086338", domain.TypeMaximum)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int64(1), inner.calls.Load())

		_, err = src.FetchDailySeries(ctx, "086338", domain.TypeMinimum)
		require.NoError(t, err)
		assert.Equal(t, int64(2), inner.calls.Load())
	})

	t.Run("does not cache failures", func(t *testing.T) {
		inner := &countingSource{err: fmt.Errorf("archive unreachable")}
		src := NewCachedSource(inner, 4, observability.NewMetricsForTesting())

		_, err := src.FetchDailySeries(ctx, "086338", domain.TypeMaximum)
		require.Error(t, err)
		_, err = src.FetchDailySeries(ctx, "086338", domain.TypeMaximum)
		require.Error(t, err)
		assert.Equal(t, int64(2), inner.calls.Load())
	})

	t.Run("evicts the least recently used dataset", func(t *testing.T) {
		inner := &countingSource{}
		src := NewCachedSource(inner, 2, observability.NewMetricsForTesting())

		_, _ = src.FetchDailySeries(ctx, "one", domain.TypeMaximum)
		_, _ = src.FetchDailySeries(ctx, "two", domain.TypeMaximum)
		_, _ = src.FetchDailySeries(ctx, "one", domain.TypeMaximum) // refresh "one"
		_, _ = src.FetchDailySeries(ctx, "three", domain.TypeMaximum)
		require.Equal(t, int64(3), inner.calls.Load())

		// "two" was the coldest entry and must be refetched; "one" and
		// "three" are still warm.
		_, _ = src.FetchDailySeries(ctx, "two", domain.TypeMaximum)
		assert.Equal(t, int64(4), inner.calls.Load())
		_, _ = src.FetchDailySeries(ctx, "three", domain.TypeMaximum)
		assert.Equal(t, int64(4), inner.calls.Load())
	})
}
