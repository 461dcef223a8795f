// Package main contains the shelfsync CLI commands.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shelfsync/shelfsync/internal/cli"
	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/engine"
	"github.com/shelfsync/shelfsync/internal/llm"
	"github.com/shelfsync/shelfsync/internal/partner"
	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/internal/storage"
	"github.com/shelfsync/shelfsync/internal/warehouse"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare warehouse stock with the partner catalogue",
		Long: `Fetch the current stock baseline from the warehouse service, look each
product up on the partner site and print a side-by-side comparison.

Products whose names differ between the two systems are bridged by
model-predicted search queries, so exact name agreement is not required.

Examples:
  shelfsync reconcile                      # Reconcile the configured store
  shelfsync reconcile --group <folder-id>  # Limit to one product folder
  shelfsync reconcile --limit 50           # Reconcile at most 50 items`,
		RunE: runReconcile,
	}

	cmd.Flags().StringP("store", "s", "", "Store ID to fetch stock for (defaults to warehouse.main_store_id)")
	cmd.Flags().StringP("group", "g", "", "Product folder ID to limit the stock query to")
	cmd.Flags().IntP("limit", "l", 0, "Maximum number of stock items to reconcile (0 = all)")
	cmd.Flags().Bool("no-cache", false, "Skip the on-disk prediction cache")

	_ = viper.BindPFlag("reconcile.store", cmd.Flags().Lookup("store"))
	_ = viper.BindPFlag("reconcile.group", cmd.Flags().Lookup("group"))
	_ = viper.BindPFlag("reconcile.limit", cmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("reconcile.no_cache", cmd.Flags().Lookup("no-cache"))

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateReconcile(); err != nil {
		return err
	}

	wh, err := warehouse.NewClient(cfg.Warehouse)
	if err != nil {
		return fmt.Errorf("failed to create warehouse client: %w", err)
	}

	storeID := viper.GetString("reconcile.store")
	if storeID == "" {
		storeID = cfg.StoreID
	}

	slog.Info("Fetching stock baseline", "store", storeID)
	items, err := wh.SearchStock(ctx, service.StockFilter{
		StoreID:        storeID,
		ProductGroupID: viper.GetString("reconcile.group"),
		Limit:          viper.GetInt("reconcile.limit"),
	})
	if err != nil {
		return fmt.Errorf("failed to fetch stock: %w", err)
	}
	if len(items) == 0 {
		fmt.Println(cli.WarningStyle.Render("No stock items matched the query."))
		return nil
	}
	slog.Info("Stock baseline loaded", "items", len(items))

	cache := openPredictionCache(cfg)
	predictor, err := llm.NewPredictor(cfg.LLM, cache, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create predictor: %w", err)
	}
	defer func() {
		if closeErr := predictor.Close(); closeErr != nil {
			slog.Warn("Failed to close predictor", "error", closeErr)
		}
	}()

	extractorClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create extraction client: %w", err)
	}

	partnerClient, err := partner.NewClient(cfg.Partner, partner.NewLLMExtractor(extractorClient))
	if err != nil {
		return fmt.Errorf("failed to create partner client: %w", err)
	}

	eng := engine.NewWithConfig(predictor, partnerClient, cfg.Engine)

	bar := progressbar.NewOptions(len(items),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Reconciling stock..."),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
	eng.SetProgress(func(done, _ int) {
		if setErr := bar.Set(done); setErr != nil {
			slog.Warn("Failed to update progress bar", "error", setErr)
		}
	})

	start := time.Now()
	rows, runErr := eng.Reconcile(ctx, items)

	if len(rows) > 0 {
		fmt.Println(cli.RenderComparison(rows))
		fmt.Println(cli.RenderStats(engine.Stats(rows, time.Since(start))))
	}

	if runErr != nil {
		return fmt.Errorf("reconciliation aborted: %w", runErr)
	}
	return nil
}

// openPredictionCache prefers the on-disk cache so repeated runs skip the
// model calls for unchanged items. If the database cannot be opened the run
// proceeds with an in-memory cache.
func openPredictionCache(cfg *config.Config) service.PredictionCache {
	if viper.GetBool("reconcile.no_cache") {
		return llm.NewMemoryCache(cfg.CacheTTL)
	}

	cache, err := storage.NewSQLiteCache(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		slog.Warn("Failed to open prediction cache, using in-memory cache", "path", cfg.CachePath, "error", err)
		return llm.NewMemoryCache(cfg.CacheTTL)
	}
	return cache
}
