package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/flathunt/internal/config"
	"github.com/IshaanNene/flathunt/internal/crawler"
	"github.com/IshaanNene/flathunt/internal/fetcher"
	"github.com/IshaanNene/flathunt/internal/listing"
	"github.com/IshaanNene/flathunt/internal/observability"
	"github.com/IshaanNene/flathunt/internal/pipeline"
	"github.com/IshaanNene/flathunt/internal/storage"
)

var (
	cfgFile       string
	verbose       bool
	workers       int
	outputDir     string
	outputType    string
	maxPages      int
	skipMalformed bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flathunt <base_search_url> <keyword>",
		Short: "Find Warsaw rentals on OLX and Otodom whose description mentions a keyword",
		Long: `flathunt walks every page of an OLX search result, opens each listing
(OLX or Otodom), keeps the ones whose description contains the keyword,
total rent is within budget and district is not excluded, and writes them
to result_<keyword>.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         runHunt,
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.Flags().IntVarP(&workers, "workers", "n", 1, "concurrent listing fetches per results page")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for result files")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format(s): result, jsonl, csv, mongo (comma-separated)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many result pages (0 = until a page fails)")
	cmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "skip listings missing a required field instead of aborting")

	cmd.AddCommand(versionCmd())
	cmd.AddCommand(configCmd())
	return cmd
}

// runHunt executes the crawl for one search URL and keyword.
func runHunt(cmd *cobra.Command, args []string) error {
	baseURL, keyword := args[0], args[1]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := config.ValidateURL(baseURL); err != nil {
		return fmt.Errorf("invalid URL %q: %w", baseURL, err)
	}

	logger := setupLogger(cfg.Logging)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return hunt(ctx, cfg, baseURL, keyword, logger)
}

// hunt crawls baseURL and stores the accepted listings. Nothing is written
// when the crawl fails.
func hunt(ctx context.Context, cfg *config.Config, baseURL, keyword string, logger *slog.Logger) error {
	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	start := time.Now()
	c := crawler.New(cfg, httpFetcher, metrics, logger)
	found, err := c.Crawl(ctx, baseURL, keyword)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	unique, err := dedupe(found, logger)
	if err != nil {
		return err
	}

	store, err := storage.NewStorage(cfg.Storage, keyword, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if err := store.Store(unique); err != nil {
		_ = store.Close()
		return fmt.Errorf("store results: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	metrics.ListingsStored.Add(int64(len(unique)))

	stats := metrics.Snapshot()
	logger.Info("hunt complete",
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"pages", stats["pages_fetched"],
		"listings_fetched", stats["listings_fetched"],
		"accepted", len(unique),
		"storage", store.Name(),
		"bytes", stats["bytes_downloaded"],
	)
	return nil
}

// dedupe keeps the first listing per URL.
func dedupe(found []*listing.Listing, logger *slog.Logger) ([]*listing.Listing, error) {
	pipe := pipeline.New(logger)
	pipe.Use(pipeline.NewDedupMiddleware())

	unique := make([]*listing.Listing, 0, len(found))
	for _, l := range found {
		kept, err := pipe.Process(l)
		if err != nil {
			return nil, err
		}
		if kept != nil {
			unique = append(unique, kept)
		}
	}
	return unique, nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flathunt %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Crawl:\n")
			fmt.Fprintf(w, "  Workers:           %d\n", cfg.Crawl.Workers)
			fmt.Fprintf(w, "  Max Pages:         %d\n", cfg.Crawl.MaxPages)
			fmt.Fprintf(w, "  Listing Selector:  %s\n", cfg.Crawl.ListingSelector)
			fmt.Fprintf(w, "  Skip Malformed:    %v\n", cfg.Crawl.SkipMalformed)
			fmt.Fprintf(w, "\nSources:\n")
			fmt.Fprintf(w, "  OLX Origin:        %s\n", cfg.Sources.OLXOrigin)
			fmt.Fprintf(w, "  OLX Path Prefix:   %s\n", cfg.Sources.OLXPathPrefix)
			fmt.Fprintf(w, "  Otodom Domain:     %s\n", cfg.Sources.OtodomDomain)
			fmt.Fprintf(w, "\nFilter:\n")
			fmt.Fprintf(w, "  Max Total Rent:    %d\n", cfg.Filter.MaxTotalRent)
			fmt.Fprintf(w, "  Excluded:          %s\n", strings.Join(cfg.Filter.ExcludedDistricts, ", "))
			fmt.Fprintf(w, "\nFetcher:\n")
			fmt.Fprintf(w, "  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Fprintf(w, "  Follow Redirects:  %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Fprintf(w, "  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Fprintf(w, "  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Fprintf(w, "\nStorage:\n")
			fmt.Fprintf(w, "  Type:              %s\n", cfg.Storage.Type)
			fmt.Fprintf(w, "  Output Dir:        %s\n", cfg.Storage.OutputDir)
			fmt.Fprintf(w, "\nMetrics:\n")
			fmt.Fprintf(w, "  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Fprintf(w, "  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies explicitly set command-line flags to the config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Crawl.Workers = workers
	}
	if flags.Changed("max-pages") {
		cfg.Crawl.MaxPages = maxPages
	}
	if flags.Changed("skip-malformed") {
		cfg.Crawl.SkipMalformed = skipMalformed
	}
	if outputDir != "" {
		cfg.Storage.OutputDir = outputDir
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
}
