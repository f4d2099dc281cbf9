// Package history implements the user-facing operations over the command log:
// capture, search, run, listings, aliases and maintenance.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/repty/internal/application/chains"
	"github.com/doeshing/repty/internal/application/nlp"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/pkg/filesystem"
	"github.com/doeshing/repty/internal/ports"
)

// aliasChainSeparator splits a manual chain given to `alias add`.
const aliasChainSeparator = "|"

// Service orchestrates the history lifecycle end-to-end.
// Guardrail is optional; without it every command is allowed.
type Service struct {
	Config    domain.Config
	Store     ports.HistoryRepository
	Parser    *nlp.Parser
	Matcher   *nlp.Matcher
	Detector  *chains.Detector
	Executor  ports.CommandExecutor
	Guardrail ports.SecurityService
	Prompter  ports.ConfirmationPrompter
	Logger    ports.Logger
	Clock     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) ready() error {
	if s.Store == nil {
		return domain.ErrStoreNotReady
	}
	return nil
}

// IsExcluded reports whether the command contains a configured sensitive pattern.
func (s *Service) IsExcluded(command string) bool {
	lower := strings.ToLower(command)
	for _, pattern := range s.Config.History.ExcludePatterns {
		if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// Log records a command run in directory and then updates chain statistics.
func (s *Service) Log(ctx context.Context, command, directory string, exitCode *int) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	command = strings.TrimSpace(command)
	if command == "" {
		return 0, errors.New("command is empty")
	}
	if s.IsExcluded(command) {
		return 0, domain.ErrCommandExcluded
	}

	id, err := s.Store.Insert(ctx, domain.Command{
		Text:      command,
		Timestamp: s.now(),
		Directory: directory,
		ExitCode:  exitCode,
	})
	if err != nil {
		return 0, err
	}

	if s.Detector != nil {
		if err := s.Detector.DetectAndRecord(ctx, command, directory); err != nil {
			return id, fmt.Errorf("detect chains: %w", err)
		}
	}
	s.Logger.Debug("command logged", map[string]interface{}{"id": id, "directory": directory})
	return id, nil
}

// Search parses the query, pulls candidates from the store and ranks them.
// Chains matching the raw query are returned alongside.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	if err := s.ready(); err != nil {
		return domain.SearchResult{}, err
	}
	parsed := s.Parser.Parse(req.Query)
	filters := domain.SearchFilters{
		StartDate:   parsed.StartDate,
		EndDate:     parsed.EndDate,
		CommandType: parsed.CommandType,
		Keywords:    s.Parser.ExtractKeywords(parsed),
	}
	s.applyScope(&filters, req)

	limit := req.Limit
	if limit <= 0 {
		limit = s.Config.History.MaxResults
	}
	candidates, err := s.Store.SearchCommands(ctx, filters, limit)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("search commands: %w", err)
	}

	ranked := s.Matcher.RankCommands(candidates, parsed)
	relevant := s.Matcher.FilterRelevant(ranked, parsed)

	var suggested []domain.ChainCandidate
	if s.Detector != nil {
		suggested, err = s.Detector.FindChainsForQuery(ctx, req.Query)
		if err != nil {
			return domain.SearchResult{}, err
		}
	}

	s.Logger.Debug("search done", map[string]interface{}{
		"query":        req.Query,
		"command_type": parsed.CommandType,
		"action":       parsed.Action,
		"keywords":     strings.Join(parsed.Keywords, ","),
		"candidates":   len(candidates),
		"relevant":     len(relevant),
		"chains":       len(suggested),
	})
	return domain.SearchResult{Parsed: parsed, Commands: relevant, Chains: suggested}, nil
}

func (s *Service) applyScope(filters *domain.SearchFilters, req domain.SearchRequest) {
	switch req.Scope {
	case domain.ScopeDirectory:
		filters.Directory = req.Directory
	case domain.ScopeProject:
		if root, ok := filesystem.FindProjectRoot(req.Directory, s.Config.Search.ProjectMarkers); ok {
			filters.ProjectRoot = root
			return
		}
		filters.Directory = req.Directory
	}
}

// Run resolves the request to a single command, confirms it and executes it.
// An exact alias name wins over search.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (domain.RunResponse, error) {
	if err := s.ready(); err != nil {
		return domain.RunResponse{}, err
	}
	if s.Executor == nil {
		return domain.RunResponse{}, errors.New("history.Service executor not configured")
	}

	resp, err := s.resolve(ctx, req)
	if err != nil {
		return resp, err
	}

	if s.Guardrail != nil {
		risk, err := s.Guardrail.Evaluate(resp.Command)
		if err != nil {
			return resp, fmt.Errorf("evaluate command risk: %w", err)
		}
		resp.Risk = risk
		if risk.Action == domain.ActionBlock {
			s.Logger.Warn("command blocked", map[string]interface{}{"command": resp.Command, "level": string(risk.Level)})
			return resp, domain.ErrCommandBlocked
		}
	}

	mustConfirm := resp.Risk.Action == domain.ActionConfirm
	if mustConfirm || (!req.AssumeYes && s.Config.Execution.ConfirmBeforeExecute) {
		if s.Prompter == nil || !s.Prompter.Enabled() {
			return resp, domain.ErrCancelled
		}
		ok, err := s.Prompter.Confirm(resp.Command, resp.Risk)
		if err != nil {
			return resp, err
		}
		if !ok {
			return resp, domain.ErrCancelled
		}
	}

	result, err := s.Executor.Execute(ctx, resp.Command)
	resp.Executed = result.Ran
	resp.Result = &result
	s.Logger.Info("command executed", map[string]interface{}{
		"command":   resp.Command,
		"exit_code": result.ExitCode,
		"duration":  result.DurationMS,
	})
	return resp, err
}

func (s *Service) resolve(ctx context.Context, req domain.RunRequest) (domain.RunResponse, error) {
	name := strings.TrimSpace(req.Query)
	alias, err := s.Store.Alias(ctx, name)
	switch {
	case err == nil:
		return domain.RunResponse{Command: alias.CommandsText, Alias: &alias, Candidates: 1}, nil
	case !errors.Is(err, domain.ErrAliasNotFound):
		return domain.RunResponse{}, err
	}

	result, err := s.Search(ctx, domain.SearchRequest{Query: req.Query, Directory: req.Directory, Scope: req.Scope})
	if err != nil {
		return domain.RunResponse{}, err
	}
	if len(result.Commands) == 0 {
		return domain.RunResponse{}, domain.ErrNoMatches
	}

	resp := domain.RunResponse{Command: result.Commands[0].Text, Candidates: len(result.Commands)}
	if len(result.Commands) == 1 || s.Prompter == nil || !s.Prompter.Enabled() {
		return resp, nil
	}

	options := result.Commands
	if len(options) > domain.MaxSelectableResults {
		options = options[:domain.MaxSelectableResults]
	}
	labels := make([]string, len(options))
	for i, cmd := range options {
		labels[i] = fmt.Sprintf("%s (%s)", cmd.Text, cmd.Timestamp.Local().Format(domain.TimestampFormat))
	}
	idx, err := s.Prompter.Select(labels)
	if err != nil {
		return resp, err
	}
	if idx < 0 || idx >= len(options) {
		return resp, domain.ErrCancelled
	}
	resp.Command = options[idx].Text
	return resp, nil
}

// Recent lists the latest commands, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Command, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	return s.Store.RecentCommands(ctx, limit)
}

// Stats summarises the stored history.
func (s *Service) Stats(ctx context.Context) (domain.HistoryStats, error) {
	if err := s.ready(); err != nil {
		return domain.HistoryStats{}, err
	}
	return s.Store.Stats(ctx, s.now())
}

// AddAlias saves name as a shortcut. Commands separated by "|" form a chain alias.
func (s *Service) AddAlias(ctx context.Context, name, command string) (domain.Alias, error) {
	if err := s.ready(); err != nil {
		return domain.Alias{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t") {
		return domain.Alias{}, fmt.Errorf("invalid alias name %q", name)
	}

	alias := domain.Alias{Name: name, CommandsText: strings.TrimSpace(command), Kind: domain.AliasSingle}
	if strings.Contains(command, aliasChainSeparator) {
		var parts []string
		for _, part := range strings.Split(command, aliasChainSeparator) {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		alias.CommandsText = domain.JoinChain(parts)
		alias.Kind = domain.AliasChain
	}
	if alias.CommandsText == "" {
		return domain.Alias{}, errors.New("alias command is empty")
	}
	if err := s.Store.AddAlias(ctx, alias); err != nil {
		return domain.Alias{}, err
	}
	return alias, nil
}

// Aliases lists saved aliases.
func (s *Service) Aliases(ctx context.Context) ([]domain.Alias, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Store.Aliases(ctx)
}

// RemoveAlias deletes an alias by name.
func (s *Service) RemoveAlias(ctx context.Context, name string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.Store.DeleteAlias(ctx, strings.TrimSpace(name))
}

// Chains lists recorded chains, most frequent first.
func (s *Service) Chains(ctx context.Context, limit int) ([]domain.CommandChain, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.Config.Chains.FetchLimit
	}
	return s.Store.FrequentChains(ctx, limit)
}

// ClearChains forgets every recorded chain.
func (s *Service) ClearChains(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.Store.ClearChains(ctx)
}

// ClearHistory deletes all logged commands.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.Store.ClearHistory(ctx)
}

// Export writes the log as JSON lines to dest.
func (s *Service) Export(ctx context.Context, dest string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.Store.ExportJSON(ctx, dest)
}

// Retain prunes commands older than days. Zero falls back to
// history.retention_days, and zero there keeps everything.
func (s *Service) Retain(ctx context.Context, days int) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if days <= 0 {
		days = s.Config.History.RetentionDays
	}
	if days <= 0 {
		return 0, nil
	}
	return days, s.Store.PruneOlderThan(ctx, days)
}
