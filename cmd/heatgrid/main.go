// Command heatgrid builds extreme-temperature calendar grids from Australian
// station archives. It runs either as a long-lived HTTP service (serve) or
// as a one-shot CLI printing locations or a grid as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ausclim/heatgrid/internal/adapter/bom"
	"github.com/ausclim/heatgrid/internal/adapter/httpapi"
	"github.com/ausclim/heatgrid/internal/config"
	"github.com/ausclim/heatgrid/internal/domain"
	"github.com/ausclim/heatgrid/internal/observability"
	"github.com/ausclim/heatgrid/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "heatgrid",
		Short:         "Seasonal extreme-temperature calendar grids for Australian weather stations",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newLocationsCmd(), newGridCmd())
	return root
}

// deps wires configuration, observability, the station source, and the
// pipeline builder.
type deps struct {
	cfg     *config.Config
	logger  *slog.Logger
	source  bom.Source
	builder *pipeline.Builder
}

func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := bom.NewClient(cfg.ArchiveBaseURL, cfg.ArchiveTimeout, logger, metrics)
	source := bom.NewCachedSource(client, cfg.DatasetCacheSize, metrics)
	builder := pipeline.NewBuilder(logger, metrics)

	return &deps{cfg: cfg, logger: logger, source: source, builder: builder}, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP grid service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}

			srv := httpapi.NewServer(d.cfg, d.source, d.builder, d.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					d.logger.Error("http server error", "error", err)
				}
			}()

			<-ctx.Done()
			d.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), d.cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				d.logger.Error("http server shutdown error", "error", err)
			}
			d.logger.Info("shutdown complete")
			return nil
		},
	}
}

func newLocationsCmd() *cobra.Command {
	var station string

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List the station names available in a station archive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			if station == "" {
				station = d.cfg.StationID
			}

			ds, err := d.source.FetchDailySeries(cmd.Context(), station, domain.TypeMaximum)
			if err != nil {
				return err
			}
			for _, loc := range domain.Locations(ds) {
				fmt.Fprintln(cmd.OutOrStdout(), loc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&station, "station", "", "station archive identifier (defaults to STATION_ID)")
	return cmd
}

func newGridCmd() *cobra.Command {
	var (
		station    string
		location   string
		season     string
		obsType    string
		startYear  int
		endYear    int
		thresholds string
		precision  int
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Build a calendar grid and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			if station == "" {
				station = d.cfg.StationID
			}

			req := pipeline.GridRequest{
				Location:  location,
				Season:    domain.Season(season),
				Type:      domain.ObsType(obsType),
				StartYear: startYear,
				EndYear:   endYear,
				Precision: d.cfg.PrecisionOverride(),
			}
			if thresholds == "" {
				if req.Thresholds, err = d.cfg.DefaultThresholds(req.Season); err != nil {
					return err
				}
			} else if req.Thresholds, err = config.ParseThresholds(thresholds); err != nil {
				return err
			}
			if precision >= 0 {
				req.Precision = &precision
			}

			typ := req.Type
			if typ == "" {
				policy, err := domain.PolicyFor(req.Season)
				if err != nil {
					return err
				}
				typ = policy.DefaultType
			}

			ds, err := d.source.FetchDailySeries(cmd.Context(), station, typ)
			if err != nil {
				return err
			}

			grid, err := d.builder.Build(ds, req)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(grid, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&station, "station", "", "station archive identifier (defaults to STATION_ID)")
	cmd.Flags().StringVar(&location, "location", "", "station name (defaults to the last sorted location)")
	cmd.Flags().StringVar(&season, "season", "Summer", "season: Summer or Winter")
	cmd.Flags().StringVar(&obsType, "type", "", "observation type: Maximum or Minimum (defaults per season)")
	cmd.Flags().IntVar(&startYear, "start", 0, "first year of the window (default: 30 years ago)")
	cmd.Flags().IntVar(&endYear, "end", 0, "last year of the window (default: this year)")
	cmd.Flags().StringVar(&thresholds, "thresholds", "", "comma-separated ascending cutoffs t1,t2,t3")
	cmd.Flags().IntVar(&precision, "precision", -1, "label decimal places (-1: detect from data)")
	return cmd
}
