package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/infrastructure/cli/commands"
	"github.com/doeshing/repty/internal/version"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The caller owns the returned
// container and must Close it.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, *app.Container, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, nil, err
	}
	container.HistoryService.Prompter = NewPrompter(nil, nil)

	root := &cobra.Command{
		Use:     "repty [query...]",
		Short:   "Terminal command history with natural language search",
		Long:    "repty logs the commands you run and finds them again from a plain-English description.",
		Version: version.Version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return commands.SearchAll(cmd.Context(), cmd.OutOrStdout(), container, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		commands.NewSearchCommand(container),
		commands.NewRunCommand(container),
		commands.NewLogCommand(container),
		commands.NewCaptureCommand(container),
		commands.NewRecentCommand(container),
		commands.NewStatsCommand(container),
		commands.NewAliasCommand(container),
		commands.NewChainsCommand(container),
		commands.NewHistoryCommand(container),
		commands.NewConfigCommand(container),
		commands.NewInstallCommand(container),
		commands.NewUninstallCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewGuardrailCommand(container),
		commands.NewVersionCommand(),
	)
	return root, container, nil
}

// IsVerbose reports whether REPTY_DEBUG asks for debug logging.
func IsVerbose() bool {
	v := strings.TrimSpace(os.Getenv("REPTY_DEBUG"))
	return strings.EqualFold(v, "1") || strings.EqualFold(v, "true")
}
