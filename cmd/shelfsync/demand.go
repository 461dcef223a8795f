package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shelfsync/shelfsync/internal/cli"
	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/demand"
	"github.com/shelfsync/shelfsync/internal/warehouse"
)

func demandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demand <file.csv>",
		Short: "Create a draft demand from a supplier CSV file",
		Long: `Parse a supplier CSV file, match its rows against warehouse products by
serial number and create a draft demand from the matches.

The CSV must have "Serial Number" and "Product Name" columns; a
"Sales Price" column is used when present. The demand is created
inapplicable so it can be reviewed before posting.

Example:
  shelfsync demand shipment-2024-03.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runDemand,
	}
}

func runDemand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateDemand(); err != nil {
		return err
	}

	wh, err := warehouse.NewClient(cfg.Warehouse)
	if err != nil {
		return fmt.Errorf("failed to create warehouse client: %w", err)
	}

	result, err := demand.NewService(wh, cfg.Refs).CreateFromFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to create demand: %w", err)
	}

	fmt.Println(cli.RenderDemandResult(result))
	slog.Info("Demand created", "id", result.Demand.ID, "positions", len(result.Processed))
	return nil
}
