// Package cli wires the seeder commands:
//
//	seeder seed    seed the configured zoom range and exit
//	seeder urls    print the request list of one zoom level
//	seeder serve   run the HTTP API
//
// Every flag overrides the matching environment variable when it is set.
package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jaennil/guide_helper/backend/seeder/internal/app"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/config"
	"github.com/spf13/cobra"
)

var ErrSeedFailed = errors.New("seeding finished with failed requests")

type flags struct {
	urlFormat  string
	layer      string
	wmsVersion string
	endpoint   string
	tileSize   int
	gutterSize int
	maxThreads int
	logLevel   string
	store      string

	minZoom int
	maxZoom int
	dryRun  bool
	resume  bool

	zoom int
	port string
}

func BuildCLI() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "seeder",
		Short: "Warm a WMS tile cache by requesting every tile of a zoom pyramid",
		Long: `seeder enumerates the EPSG:4326 tile pyramid of a layer and issues one
GetMap request per tile so that the cache in front of the WMS server is filled
before users ask for the tiles.`,
		Version:      "1.0.0",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.urlFormat, "url-format", "", "sample GetMap request to derive the url format from")
	pf.StringVar(&f.layer, "layer", "", "layer name, defaults to LAYERS of the url format")
	pf.StringVar(&f.wmsVersion, "wms-version", "", "WMS version, 1.1.1 or 1.3.0")
	pf.StringVar(&f.endpoint, "endpoint", "", "WMS endpoint the requests are sent to")
	pf.IntVar(&f.tileSize, "tile-size", 256, "tile size in pixels")
	pf.IntVar(&f.gutterSize, "gutter-size", 20, "gutter in pixels added on every side")
	pf.IntVar(&f.maxThreads, "max-threads", 8, "upper bound for concurrent requests")
	pf.StringVar(&f.logLevel, "log-level", "info", "log level")
	pf.StringVar(&f.store, "store", config.StoreMemory, "progress store: map, sqlite, redis or valkey")

	rootCmd.AddCommand(buildSeedCommand(f))
	rootCmd.AddCommand(buildURLsCommand(f))
	rootCmd.AddCommand(buildServeCommand(f))

	return rootCmd
}

func buildSeedCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed every zoom level in the configured range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runSeed(cmd, cfg)
		},
	}

	cmd.Flags().IntVar(&f.minZoom, "min-zoom", 0, "first zoom level")
	cmd.Flags().IntVar(&f.maxZoom, "max-zoom", 5, "last zoom level")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "list requests without sending them")
	cmd.Flags().BoolVar(&f.resume, "resume", false, "skip tiles the progress store already has as seeded")

	return cmd
}

func runSeed(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := app.Seed(ctx, cfg)

	out := cmd.OutOrStdout()
	for _, run := range summary.Runs {
		fmt.Fprintf(out, "zoom %2d: %d tiles, %d succeeded, %d failed, %d skipped, %d workers, %s\n",
			run.Zoom, run.Total, run.Succeeded, run.Failed, run.Skipped, run.Workers, run.Duration)
	}
	if len(summary.Runs) > 0 {
		fmt.Fprintf(out, "total: %d tiles, %d succeeded, %d failed, %d skipped\n",
			summary.Total, summary.Succeeded, summary.Failed, summary.Skipped)
	}

	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrSeedFailed, summary.Failed, summary.Total)
	}
	return nil
}

func buildURLsCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urls",
		Short: "Print the request list of one zoom level without sending anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			list, err := app.URLs(cfg, f.zoom)
			if err != nil {
				return err
			}
			for _, u := range list.URLs {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&f.zoom, "zoom", 0, "zoom level")
	_ = cmd.MarkFlagRequired("zoom")

	return cmd
}

func buildServeCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the seeding HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			app.Serve(cfg)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.port, "port", "8080", "HTTP port")

	return cmd
}

func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	fs := cmd.Flags()
	if fs.Changed("url-format") {
		cfg.Seeder.URLFormat = f.urlFormat
	}
	if fs.Changed("layer") {
		cfg.Seeder.Layer = f.layer
	}
	if fs.Changed("wms-version") {
		cfg.Seeder.Version = f.wmsVersion
	}
	if fs.Changed("endpoint") {
		cfg.Seeder.Endpoint = f.endpoint
	}
	if fs.Changed("tile-size") {
		cfg.Seeder.TileSize = f.tileSize
	}
	if fs.Changed("gutter-size") {
		cfg.Seeder.GutterSize = f.gutterSize
	}
	if fs.Changed("max-threads") {
		cfg.Seeder.MaxThreads = f.maxThreads
	}
	if fs.Changed("log-level") {
		cfg.Logger.Level = f.logLevel
	}
	if fs.Changed("store") {
		cfg.Store.Driver = f.store
	}
	if fs.Changed("min-zoom") {
		cfg.Seeder.MinZoom = f.minZoom
	}
	if fs.Changed("max-zoom") {
		cfg.Seeder.MaxZoom = f.maxZoom
	}
	if fs.Changed("dry-run") {
		cfg.Seeder.DryRun = f.dryRun
	}
	if fs.Changed("resume") {
		cfg.Seeder.Resume = f.resume
	}
	if fs.Changed("port") {
		cfg.HTTP.Server.Port = f.port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
