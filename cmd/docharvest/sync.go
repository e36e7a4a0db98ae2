package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/docharvest/internal/config"
	"github.com/jonathan/docharvest/internal/observability"
	"github.com/jonathan/docharvest/internal/pipeline"
)

var syncCommand = &cobra.Command{
	Use:   "sync",
	Short: "Crawl all configured sources and update the catalog",
	Long: `Crawls every active source declared in the config file: searches the current
sync window, fetches new items, extracts and deduplicates their text, classifies
each document and stores extracted entities.

With --backfill the crawl covers one window per year from the backfill start
year to now, so historical content is ingested incrementally and resumably.

Run 'docharvest migrate' once before the first sync.`,
	RunE: runSyncCmd,
}

var (
	syncConfigPath  string
	syncDatabaseURL string
	syncBackfill    bool
	syncVerbose     bool
	syncBatchLimit  int
	syncWorkers     int
)

func init() {
	syncCommand.Flags().StringVar(&syncConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	syncCommand.Flags().StringVar(&syncDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	syncCommand.Flags().BoolVar(&syncBackfill, "backfill", false, "Crawl per-year historical windows instead of the incremental window")
	syncCommand.Flags().BoolVarP(&syncVerbose, "verbose", "v", false, "Print detailed progress information")
	syncCommand.Flags().IntVar(&syncBatchLimit, "batch-limit", 0, "Per-invocation fetch cap (0 uses the config or default)")
	syncCommand.Flags().IntVar(&syncWorkers, "workers", 0, "CPU worker pool size (0 uses the config or default)")

	rootCmd.AddCommand(syncCommand)
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if syncConfigPath != "" {
		loadedCfg, err := config.LoadConfig(syncConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if syncVerbose {
			fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", syncConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = syncDatabaseURL
	}
	if cmd.Flags().Changed("batch-limit") {
		cfg.BatchLimit = syncBatchLimit
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = syncWorkers
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = syncVerbose
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())

	// Step 4: Validate source declarations
	if len(cfg.Mailboxes) == 0 && len(cfg.Directories) == 0 {
		return fmt.Errorf("no sources configured; declare mailboxes or directories in the config file")
	}

	database, err := connectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	summary, runErr := pipeline.Run(ctx, database, pipeline.RunOptions{
		Config:   &cfg,
		Backfill: syncBackfill,
		Verbose:  cfg.Verbose,
	})
	if summary != nil {
		observability.NewPrinter(os.Stdout).PrintSyncSummary(summary)
	}
	return runErr
}
