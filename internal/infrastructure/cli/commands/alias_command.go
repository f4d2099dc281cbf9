package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/infrastructure/cli/helpers"
)

// NewAliasCommand creates the alias command with all subcommands
func NewAliasCommand(container *app.Container) *cobra.Command {
	aliasCmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage command aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listAliases(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	aliasCmd.AddCommand(
		newAliasAddCommand(container),
		newAliasListCommand(container),
		newAliasRemoveCommand(container),
	)

	return aliasCmd
}

func newAliasAddCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <command...>",
		Short: "Add an alias; separate commands with | to save a sequence",
		Example: `  repty alias add st git status
  repty alias add ship "git add . | git commit -m wip | git push"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addAlias(cmd.Context(), cmd.OutOrStdout(), container, args[0], strings.Join(args[1:], " "))
		},
	}
}

func newAliasListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listAliases(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

func newAliasRemoveCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an alias",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeAlias(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	}
}

func addAlias(ctx context.Context, out io.Writer, container *app.Container, name, command string) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}
	alias, err := svc.AddAlias(ctx, name, command)
	if err != nil {
		return fmt.Errorf("failed to add alias: %w", err)
	}

	if alias.Kind == domain.AliasChain {
		fmt.Fprintf(out, "Sequence alias added: %s\n", alias.Name)
		for _, part := range domain.SplitChain(alias.CommandsText) {
			fmt.Fprintf(out, "  -> %s\n", part)
		}
		return nil
	}
	fmt.Fprintf(out, "Alias added: %s -> %s\n", alias.Name, alias.CommandsText)
	return nil
}

func listAliases(ctx context.Context, out io.Writer, container *app.Container) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}
	aliases, err := svc.Aliases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list aliases: %w", err)
	}
	helpers.RenderAliases(out, aliases)
	return nil
}

func removeAlias(ctx context.Context, out io.Writer, container *app.Container, name string) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}
	if err := svc.RemoveAlias(ctx, name); err != nil {
		if errors.Is(err, domain.ErrAliasNotFound) {
			return fmt.Errorf("alias not found: %s", name)
		}
		return fmt.Errorf("failed to remove alias: %w", err)
	}
	fmt.Fprintf(out, "Alias removed: %s\n", name)
	return nil
}
