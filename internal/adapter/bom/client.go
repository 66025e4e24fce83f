// Package bom fetches daily temperature series from a Bureau of Meteorology
// style station archive: one zipped CSV per station and measure, downloaded
// over HTTP and normalized into a domain dataset.
package bom

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ausclim/heatgrid/internal/domain"
	"github.com/ausclim/heatgrid/internal/observability"
)

// Client downloads and parses station daily-series archives.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an archive client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// measureFor maps an observation type to its archive file prefix.
func measureFor(typ domain.ObsType) (string, error) {
	switch typ {
	case domain.TypeMaximum:
		return "tmax", nil
	case domain.TypeMinimum:
		return "tmin", nil
	default:
		return "", fmt.Errorf("unsupported observation type %q", typ)
	}
}

// FetchDailySeries downloads a station's zipped daily CSV for one
// observation type and returns it as a canonical dataset: sorted,
// deduplicated, and gap-filled.
func (c *Client) FetchDailySeries(ctx context.Context, stationID string, typ domain.ObsType) (*domain.Dataset, error) {
	start := time.Now()
	ds, err := c.fetch(ctx, stationID, typ)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.DatasetFetches.WithLabelValues(outcome).Inc()
	if err != nil {
		return nil, err
	}

	c.metrics.DatasetFetchDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("station series fetched",
		"station", stationID, "type", string(typ), "rows", len(ds.Records))
	return ds, nil
}

func (c *Client) fetch(ctx context.Context, stationID string, typ domain.ObsType) (*domain.Dataset, error) {
	measure, err := measureFor(typ)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s.%s.daily.zip", c.baseURL, measure, stationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch station archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("station archive: status %d: %s", resp.StatusCode, body)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read station archive: %w", err)
	}

	rows, err := parseArchive(payload, typ)
	if err != nil {
		return nil, fmt.Errorf("station %s: %w", stationID, err)
	}
	return domain.BuildDataset(rows), nil
}

// parseArchive extracts the first CSV from a zip payload and parses its rows.
func parseArchive(payload []byte, typ domain.ObsType) ([]domain.DailyRecord, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		rows, err := parseCSV(rc, typ)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("no CSV file in archive")
}

// parseCSV reads an archive CSV into daily records. The temperature column
// is located by name: any header containing "deg", which matches both the
// "(degC)" and "(degrees C)" header variants seen in station archives. The
// station name comes from the "site name" column. Empty temperature cells
// are missing observations, not errors.
func parseCSV(r io.Reader, typ domain.ObsType) ([]domain.DailyRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx, tempIdx, siteIdx := -1, -1, -1
	for i, name := range header {
		n := strings.ToLower(strings.TrimSpace(name))
		switch {
		case n == "date":
			dateIdx = i
		case strings.Contains(n, "deg"):
			tempIdx = i
		case n == "site name":
			siteIdx = i
		}
	}
	if dateIdx < 0 || tempIdx < 0 || siteIdx < 0 {
		return nil, fmt.Errorf("missing expected columns in header %v", header)
	}

	var rows []domain.DailyRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if dateIdx >= len(rec) || siteIdx >= len(rec) {
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q", line, rec[dateIdx])
		}

		row := domain.DailyRecord{
			Date:     date,
			Year:     date.Year(),
			Month:    int(date.Month()),
			Day:      date.Day(),
			Location: strings.TrimSpace(rec[siteIdx]),
			Type:     typ,
		}
		if tempIdx < len(rec) {
			if cell := strings.TrimSpace(rec[tempIdx]); cell != "" && !strings.EqualFold(cell, "null") {
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad temperature %q", line, cell)
				}
				row.Temperature = &v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
