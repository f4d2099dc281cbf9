package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/domain"
)

// CaptureCommandName is what the shell hooks invoke after every prompt.
const CaptureCommandName = "__capture__"

// NewLogCommand creates the log command for manual entries
func NewLogCommand(container *app.Container) *cobra.Command {
	var (
		directory string
		exitCode  int
	)

	cmd := &cobra.Command{
		Use:   "log <command...>",
		Short: "Manually log a command to history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if directory == "" {
				directory = workingDir()
			}
			code := exitCode
			return logCommand(cmd.Context(), cmd.OutOrStdout(), container, strings.Join(args, " "), directory, &code)
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "", "Working directory (default: current)")
	cmd.Flags().IntVarP(&exitCode, "exit-code", "e", 0, "Exit code of the command")
	return cmd
}

// NewCaptureCommand creates the hidden command used by the shell hooks.
// Arguments are <command> [exit-code] [directory]; flag parsing is off since
// captured text may start with dashes. Excluded commands are dropped silently.
func NewCaptureCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:                CaptureCommandName + " <command> [exit-code] [directory]",
		Hidden:             true,
		DisableFlagParsing: true,
		Args:               cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.TrimSpace(args[0])
			if command == "" {
				return nil
			}
			exitCode := parseExitCode(args)
			directory := workingDir()
			if len(args) > 2 && args[2] != "" {
				directory = args[2]
			}
			return captureCommand(cmd.Context(), container, command, directory, exitCode)
		},
	}
}

func logCommand(ctx context.Context, out io.Writer, container *app.Container, command, directory string, exitCode *int) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}

	id, err := svc.Log(ctx, command, directory, exitCode)
	if errors.Is(err, domain.ErrCommandExcluded) {
		fmt.Fprintln(out, err.Error())
		return nil
	}
	if err != nil && id == 0 {
		return fmt.Errorf("failed to log command: %w", err)
	}

	fmt.Fprintf(out, "Command logged (ID: %d)\n", id)
	return err
}

func captureCommand(ctx context.Context, container *app.Container, command, directory string, exitCode *int) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}
	_, err = svc.Log(ctx, command, directory, exitCode)
	if errors.Is(err, domain.ErrCommandExcluded) {
		return nil
	}
	return err
}

func parseExitCode(args []string) *int {
	if len(args) < 2 {
		return nil
	}
	code, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil {
		return nil
	}
	return &code
}
