package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/infrastructure/cli/helpers"
)

// NewRunCommand creates the run command
func NewRunCommand(container *app.Container) *cobra.Command {
	var (
		flags     scopeFlags
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "run <query...>",
		Short: "Search history (or an alias) and execute the chosen command",
		Long: `Resolve the query to one command and execute it.

An exact alias name runs the alias. Otherwise the history is searched and,
when several commands match, you pick one from the top results.
The command is confirmed before it runs unless --yes is given or
execution.confirm_before_execute is false. Commands flagged by the
guardrail always ask, and critical ones are refused.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := flags.scope()
			if err != nil {
				return err
			}
			req := domain.RunRequest{
				Query:     strings.Join(args, " "),
				Directory: workingDir(),
				Scope:     scope,
				AssumeYes: assumeYes,
			}
			return runQuery(cmd, cmd.OutOrStdout(), container, req)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Execute without confirmation")
	return cmd
}

func runQuery(cmd *cobra.Command, out io.Writer, container *app.Container, req domain.RunRequest) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}

	resp, err := svc.Run(cmd.Context(), req)
	switch {
	case errors.Is(err, domain.ErrNoMatches):
		fmt.Fprintln(out, MsgNoMatches)
		return nil
	case errors.Is(err, domain.ErrCancelled):
		fmt.Fprintln(out, MsgCancelled)
		return nil
	case errors.Is(err, domain.ErrCommandBlocked):
		fmt.Fprintf(out, "Refusing to run: %s\n", resp.Command)
		for _, reason := range resp.Risk.Reasons {
			fmt.Fprintf(out, " - %s\n", reason)
		}
		return err
	}

	if resp.Alias != nil {
		fmt.Fprintf(out, "Alias %s -> %s\n", resp.Alias.Name, resp.Command)
	}
	if resp.Result != nil {
		fmt.Fprintf(out, "Executing: %s\n\n", resp.Command)
		helpers.RenderExecution(out, resp)
		if resp.Result.Ran && resp.Result.ExitCode != 0 {
			// The exit code was reported above; do not surface it twice.
			return nil
		}
	}
	return err
}
