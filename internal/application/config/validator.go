package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/repty/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		return errors.New("storage.db_path must be set")
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if err := validateExecution(cfg.Execution); err != nil {
		return err
	}
	if err := validateRanking(cfg.Ranking); err != nil {
		return err
	}
	if err := validateChains(cfg.Chains); err != nil {
		return err
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	if history.MaxResults <= 0 {
		return fmt.Errorf("history.max_results must be > 0")
	}
	if history.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days must be >= 0")
	}
	for i, pattern := range history.ExcludePatterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("history.exclude_patterns[%d] is empty", i)
		}
	}
	return nil
}

func validateExecution(exec domain.ExecutionSettings) error {
	switch strings.ToLower(exec.Shell) {
	case "", "auto", "bash", "zsh", "sh":
		return nil
	}
	if strings.HasPrefix(exec.Shell, "/") {
		return nil
	}
	return fmt.Errorf("execution.shell must be auto|bash|zsh|sh or an absolute path, got %s", exec.Shell)
}

func validateRanking(r domain.RankingSettings) error {
	if r.MinScore < 0 {
		return fmt.Errorf("ranking.min_score must be >= 0")
	}
	if r.FuzzyMaxDistance < 0 {
		return fmt.Errorf("ranking.fuzzy_max_distance must be >= 0")
	}
	if r.RecencyWindowDays <= 0 {
		return fmt.Errorf("ranking.recency_window_days must be > 0")
	}
	if r.RelativeCutoff <= 0 || r.RelativeCutoff > 1 {
		return fmt.Errorf("ranking.relative_cutoff must be in (0, 1], got %g", r.RelativeCutoff)
	}
	return nil
}

func validateChains(c domain.ChainSettings) error {
	if c.MaxGap <= 0 {
		return fmt.Errorf("chains.max_gap must be > 0")
	}
	if c.RecentWindow < 2 {
		return fmt.Errorf("chains.recent_window must be >= 2")
	}
	if c.FetchLimit <= 0 {
		return fmt.Errorf("chains.fetch_limit must be > 0")
	}
	if c.MinOccurrences < 1 {
		return fmt.Errorf("chains.min_occurrences must be >= 1")
	}
	return nil
}
