package domain

import "time"

// Config mirrors ~/.repty/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version" json:"config_format_version"`
	Storage             StorageSettings   `yaml:"storage" json:"storage"`
	History             HistorySettings   `yaml:"history" json:"history"`
	Search              SearchSettings    `yaml:"search" json:"search"`
	Execution           ExecutionSettings `yaml:"execution" json:"execution"`
	Ranking             RankingSettings   `yaml:"ranking" json:"ranking"`
	Chains              ChainSettings     `yaml:"chains" json:"chains"`
}

// StorageSettings locates the history database.
type StorageSettings struct {
	DBPath string `yaml:"db_path" json:"db_path"`
}

// HistorySettings controls what gets logged and kept.
type HistorySettings struct {
	MaxResults      int      `yaml:"max_results" json:"max_results"`
	ExcludePatterns []string `yaml:"exclude_patterns" json:"exclude_patterns"`
	RetentionDays   int      `yaml:"retention_days" json:"retention_days"`
}

// SearchSettings configures directory scoping.
type SearchSettings struct {
	ProjectMarkers []string `yaml:"project_markers" json:"project_markers"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell                string `yaml:"shell" json:"shell"`
	ConfirmBeforeExecute bool   `yaml:"confirm_before_execute" json:"confirm_before_execute"`

	// GuardrailRules points at a YAML rules file; empty uses the built-in rules.
	GuardrailRules string `yaml:"guardrail_rules" json:"guardrail_rules"`
}

// RankingSettings holds the additive scoring weights and filter thresholds.
type RankingSettings struct {
	CommandTypePrefixScore   int     `yaml:"command_type_prefix_score" json:"command_type_prefix_score"`
	CommandTypeContainsScore int     `yaml:"command_type_contains_score" json:"command_type_contains_score"`
	ActionScore              int     `yaml:"action_score" json:"action_score"`
	KeywordScore             int     `yaml:"keyword_score" json:"keyword_score"`
	FuzzyMaxDistance         int     `yaml:"fuzzy_max_distance" json:"fuzzy_max_distance"`
	FuzzyBaseScore           int     `yaml:"fuzzy_base_score" json:"fuzzy_base_score"`
	RecencyWindowDays        int     `yaml:"recency_window_days" json:"recency_window_days"`
	RecencyBaseScore         int     `yaml:"recency_base_score" json:"recency_base_score"`
	MinScore                 int     `yaml:"min_score" json:"min_score"`
	StrongMatchScore         int     `yaml:"strong_match_score" json:"strong_match_score"`
	RelativeCutoff           float64 `yaml:"relative_cutoff" json:"relative_cutoff"`
}

// ChainSettings holds the chain detection window and chain scoring weights.
type ChainSettings struct {
	MaxGap           time.Duration `yaml:"max_gap" json:"max_gap"`
	RecentWindow     int           `yaml:"recent_window" json:"recent_window"`
	FetchLimit       int           `yaml:"fetch_limit" json:"fetch_limit"`
	MinOccurrences   int           `yaml:"min_occurrences" json:"min_occurrences"`
	StrictMatchScore int           `yaml:"strict_match_score" json:"strict_match_score"`
	LooseMatchScore  int           `yaml:"loose_match_score" json:"loose_match_score"`
	CountWeight      int           `yaml:"count_weight" json:"count_weight"`
	OutcomeBonus     int           `yaml:"outcome_bonus" json:"outcome_bonus"`
}

// DefaultRankingSettings returns the stock scoring heuristics.
func DefaultRankingSettings() RankingSettings {
	return RankingSettings{
		CommandTypePrefixScore:   50,
		CommandTypeContainsScore: 25,
		ActionScore:              30,
		KeywordScore:             10,
		FuzzyMaxDistance:         2,
		FuzzyBaseScore:           5,
		RecencyWindowDays:        7,
		RecencyBaseScore:         5,
		MinScore:                 5,
		StrongMatchScore:         80,
		RelativeCutoff:           0.6,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (r *RankingSettings) ApplyDefaults() {
	d := DefaultRankingSettings()
	fillInt(&r.CommandTypePrefixScore, d.CommandTypePrefixScore)
	fillInt(&r.CommandTypeContainsScore, d.CommandTypeContainsScore)
	fillInt(&r.ActionScore, d.ActionScore)
	fillInt(&r.KeywordScore, d.KeywordScore)
	fillInt(&r.FuzzyMaxDistance, d.FuzzyMaxDistance)
	fillInt(&r.FuzzyBaseScore, d.FuzzyBaseScore)
	fillInt(&r.RecencyWindowDays, d.RecencyWindowDays)
	fillInt(&r.RecencyBaseScore, d.RecencyBaseScore)
	fillInt(&r.MinScore, d.MinScore)
	fillInt(&r.StrongMatchScore, d.StrongMatchScore)
	if r.RelativeCutoff == 0 {
		r.RelativeCutoff = d.RelativeCutoff
	}
}

// DefaultChainSettings returns the stock chain heuristics.
func DefaultChainSettings() ChainSettings {
	return ChainSettings{
		MaxGap:           5 * time.Minute,
		RecentWindow:     10,
		FetchLimit:       50,
		MinOccurrences:   2,
		StrictMatchScore: 100,
		LooseMatchScore:  50,
		CountWeight:      10,
		OutcomeBonus:     20,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *ChainSettings) ApplyDefaults() {
	d := DefaultChainSettings()
	if c.MaxGap == 0 {
		c.MaxGap = d.MaxGap
	}
	fillInt(&c.RecentWindow, d.RecentWindow)
	fillInt(&c.FetchLimit, d.FetchLimit)
	fillInt(&c.MinOccurrences, d.MinOccurrences)
	fillInt(&c.StrictMatchScore, d.StrictMatchScore)
	fillInt(&c.LooseMatchScore, d.LooseMatchScore)
	fillInt(&c.CountWeight, d.CountWeight)
	fillInt(&c.OutcomeBonus, d.OutcomeBonus)
}

func fillInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
