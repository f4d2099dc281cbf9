package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/infrastructure/cli/helpers"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Maintain the stored command history",
	}

	historyCmd.AddCommand(
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
		newHistoryRetainCommand(container),
	)

	return historyCmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(container *app.Container) *cobra.Command {
	var withChains bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every logged command",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearHistory(cmd.Context(), cmd.OutOrStdout(), container, withChains)
		},
	}

	cmd.Flags().BoolVar(&withChains, "chains", false, "Also forget recorded chains")
	return cmd
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to a JSONL file, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportHistory(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	}
}

// newHistoryRetainCommand creates the 'history retain' subcommand
func newHistoryRetainCommand(container *app.Container) *cobra.Command {
	var (
		retainDays int
		persist    bool
	)

	cmd := &cobra.Command{
		Use:   "retain",
		Short: "Prune history older than N days",
		Long: `Prune history older than N days.

Without --days the configured history.retention_days is used; 0 keeps everything.
With --save the given --days becomes the new retention policy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if retainDays < 0 {
				return errors.New(ErrInvalidRetainDays)
			}
			return updateHistoryRetention(cmd.Context(), cmd.OutOrStdout(), container, retainDays, persist)
		},
	}

	cmd.Flags().IntVar(&retainDays, "days", 0, "Days to retain (default history.retention_days)")
	cmd.Flags().BoolVar(&persist, "save", false, "Store --days as history.retention_days")
	return cmd
}

// clearHistory deletes logged commands and optionally the chains
func clearHistory(ctx context.Context, out io.Writer, container *app.Container, withChains bool) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}

	if err := svc.ClearHistory(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if withChains {
		if err := svc.ClearChains(ctx); err != nil {
			return fmt.Errorf("failed to clear chains: %w", err)
		}
	}

	fmt.Fprintln(out, "History cleared.")
	return nil
}

// exportHistory writes the history as JSON lines
func exportHistory(ctx context.Context, out io.Writer, container *app.Container, path string) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}

	if err := svc.Export(ctx, path); err != nil {
		return fmt.Errorf("failed to export history to %s: %w", path, err)
	}

	fmt.Fprintf(out, "History exported to %s\n", path)
	return nil
}

// updateHistoryRetention prunes old history and optionally saves the policy
func updateHistoryRetention(ctx context.Context, out io.Writer, container *app.Container, days int, persist bool) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}

	applied, err := svc.Retain(ctx, days)
	if err != nil {
		return fmt.Errorf("failed to prune old history: %w", err)
	}

	if persist && days > 0 {
		cfg, err := container.ConfigProvider.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg.History.RetentionDays = days
		if err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
			return err
		}
	}

	if applied == 0 {
		fmt.Fprintln(out, "No retention policy set; history kept.")
		return nil
	}
	fmt.Fprintf(out, "Retained last %d days of history.\n", applied)
	return nil
}
