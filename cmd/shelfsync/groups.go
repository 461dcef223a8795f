package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfsync/shelfsync/internal/cli"
	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/warehouse"
)

func groupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List warehouse product folders",
		Long: `List the product folders known to the warehouse service. Folder IDs can
be passed to "reconcile --group" to limit a run to one part of the
catalogue.`,
		RunE: runGroups,
	}

	cmd.Flags().BoolP("all", "a", false, "Include archived folders")

	return cmd
}

func runGroups(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	showAll, _ := cmd.Flags().GetBool("all")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Warehouse.Validate(); err != nil {
		return err
	}

	wh, err := warehouse.NewClient(cfg.Warehouse)
	if err != nil {
		return fmt.Errorf("failed to create warehouse client: %w", err)
	}

	groups, err := wh.ProductGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to list product folders: %w", err)
	}

	fmt.Println(cli.TitleStyle.Render("Product Folders"))
	shown := 0
	for _, g := range groups {
		if g.Archived && !showAll {
			continue
		}
		line := fmt.Sprintf("%-36s  %s", g.ID, g.Name)
		if g.Archived {
			line = cli.SubtleStyle.Render(line + "  (archived)")
		}
		fmt.Println(line)
		shown++
	}
	if shown == 0 {
		fmt.Println(cli.SubtleStyle.Render("No product folders found."))
	}
	return nil
}
