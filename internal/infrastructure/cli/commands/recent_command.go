package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/infrastructure/cli/helpers"
)

// NewRecentCommand creates the recent command
func NewRecentCommand(container *app.Container) *cobra.Command {
	var number int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRecent(cmd.Context(), cmd.OutOrStdout(), container, number)
		},
	}

	cmd.Flags().IntVarP(&number, "number", "n", domain.DefaultRecentLimit, "Number of commands to show")
	return cmd
}

// NewStatsCommand creates the stats command
func NewStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show command history statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStats(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

func showRecent(ctx context.Context, out io.Writer, container *app.Container, limit int) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}
	commands, err := svc.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to retrieve recent commands: %w", err)
	}
	helpers.RenderCommands(out, commands)
	return nil
}

func showStats(ctx context.Context, out io.Writer, container *app.Container) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}
	helpers.RenderStats(out, stats)
	return nil
}
