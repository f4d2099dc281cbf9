package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/infrastructure/cli/helpers"
)

// NewChainsCommand creates the chains command with all subcommands
func NewChainsCommand(container *app.Container) *cobra.Command {
	chainsCmd := &cobra.Command{
		Use:   "chains",
		Short: "Inspect recurring command sequences",
	}

	chainsCmd.AddCommand(
		newChainsListCommand(container),
		newChainsClearCommand(container),
	)

	return chainsCmd
}

func newChainsListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded chains, most frequent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := historyService(container)
			if err != nil {
				return err
			}
			chains, err := svc.Chains(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list chains: %w", err)
			}
			helpers.RenderChains(cmd.OutOrStdout(), chains)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max chains to show (default chains.fetch_limit)")
	return cmd
}

func newChainsClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every recorded chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := historyService(container)
			if err != nil {
				return err
			}
			if err := svc.ClearChains(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear chains: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Chains cleared.")
			return nil
		},
	}
}
