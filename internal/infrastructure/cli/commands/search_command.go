package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/application/history"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/infrastructure/cli/helpers"
)

// scopeFlags are shared by search and run.
type scopeFlags struct {
	here    bool
	project bool
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.here, "here", false, "Only commands run in the current directory")
	cmd.Flags().BoolVar(&f.project, "project", false, "Only commands run inside the current project")
}

func (f scopeFlags) scope() (domain.SearchScope, error) {
	switch {
	case f.here && f.project:
		return "", errors.New(ErrConflictingScopes)
	case f.here:
		return domain.ScopeDirectory, nil
	case f.project:
		return domain.ScopeProject, nil
	default:
		return domain.ScopeAll, nil
	}
}

// NewSearchCommand creates the search command
func NewSearchCommand(container *app.Container) *cobra.Command {
	var (
		flags scopeFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search command history using natural language",
		Example: `  repty search git push yesterday
  repty search --here docker build`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := flags.scope()
			if err != nil {
				return err
			}
			req := domain.SearchRequest{
				Query:     strings.Join(args, " "),
				Directory: workingDir(),
				Scope:     scope,
				Limit:     limit,
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), container, req)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "Max rows fetched before ranking (default history.max_results)")
	return cmd
}

// SearchAll runs an unscoped search for the joined args. The root command
// uses it so that `repty <query>` behaves like `repty search <query>`.
func SearchAll(ctx context.Context, out io.Writer, container *app.Container, args []string) error {
	return runSearch(ctx, out, container, domain.SearchRequest{
		Query:     strings.Join(args, " "),
		Directory: workingDir(),
		Scope:     domain.ScopeAll,
	})
}

func runSearch(ctx context.Context, out io.Writer, container *app.Container, req domain.SearchRequest) error {
	svc, err := historyService(container)
	if err != nil {
		return err
	}

	result, err := svc.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	helpers.RenderScoredCommands(out, result.Commands)
	helpers.RenderChainCandidates(out, result.Chains)
	return nil
}

func historyService(container *app.Container) (*history.Service, error) {
	if container == nil || container.HistoryService == nil {
		return nil, errors.New(ErrHistoryServiceUnavailable)
	}
	return container.HistoryService, nil
}

func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return dir
}
