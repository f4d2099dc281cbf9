// Package security grades replayed commands against regex danger rules.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/pkg/filesystem"
	"github.com/doeshing/repty/internal/ports"
)

// Guardrail implements the SecurityService port.
type Guardrail struct {
	patterns []compiledPattern
	source   string
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule DangerPattern
}

// DangerPattern describes a regex-based guardrail rule.
type DangerPattern struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
	Action  string `yaml:"action"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// BuiltinSource names the rule set used when no rules file is configured.
const BuiltinSource = "built-in"

// NewGuardrail loads rules from path. An empty path, a missing file or a file
// without rules falls back to the built-in set; a malformed file is an error.
func NewGuardrail(path string) (*Guardrail, error) {
	rules, source, err := loadRules(path)
	if err != nil {
		return nil, err
	}

	compiled := make([]compiledPattern, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("guardrail rule %q: %w", rule.Pattern, err)
		}
		compiled = append(compiled, compiledPattern{re: re, rule: rule})
	}
	return &Guardrail{patterns: compiled, source: source}, nil
}

// Evaluate implements ports.SecurityService. The most severe matching rule
// decides the action; every match contributes a reason.
func (g *Guardrail) Evaluate(command string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("guardrail nil")
	}
	assessment := domain.RiskAssessment{Level: domain.RiskSafe, Action: domain.ActionAllow}
	for _, pattern := range g.patterns {
		if !pattern.re.MatchString(command) {
			continue
		}
		level := parseRiskLevel(pattern.rule.Level)
		if level.Severity() > assessment.Level.Severity() {
			assessment.Level = level
			assessment.Action = parseAction(pattern.rule.Action, level)
		}
		assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
		assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.Pattern)
	}
	return assessment, nil
}

// RuleCount reports how many rules are active.
func (g *Guardrail) RuleCount() int {
	return len(g.patterns)
}

// Source is the rules file path or BuiltinSource.
func (g *Guardrail) Source() string {
	return g.source
}

func loadRules(path string) ([]DangerPattern, string, error) {
	if strings.TrimSpace(path) == "" {
		return defaultPatterns(), BuiltinSource, nil
	}
	path = expandPath(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultPatterns(), BuiltinSource, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read guardrail rules: %w", err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, "", fmt.Errorf("parse guardrail rules %s: %w", path, err)
	}
	if len(file.Rules.DangerPatterns) == 0 {
		return defaultPatterns(), BuiltinSource, nil
	}
	return file.Rules.DangerPatterns, path, nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch level := domain.RiskLevel(strings.ToLower(strings.TrimSpace(value))); level {
	case domain.RiskLow, domain.RiskMedium, domain.RiskHigh, domain.RiskCritical:
		return level
	default:
		return domain.RiskSafe
	}
}

// parseAction defaults to confirm for anything above safe.
func parseAction(value string, level domain.RiskLevel) domain.GuardrailAction {
	switch action := domain.GuardrailAction(strings.ToLower(strings.TrimSpace(value))); action {
	case domain.ActionAllow, domain.ActionConfirm, domain.ActionBlock:
		return action
	}
	if level == domain.RiskSafe {
		return domain.ActionAllow
	}
	return domain.ActionConfirm
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return path
}

func defaultPatterns() []DangerPattern {
	return []DangerPattern{
		{Pattern: `rm\s+-[a-zA-Z]*r[a-zA-Z]*f?\s+/(\s|$)`, Level: "critical", Message: "Deleting root directory", Action: "block"},
		{Pattern: `rm\s+-[a-zA-Z]*r[a-zA-Z]*\s+/(etc|usr|bin|sbin|boot|var|lib)\b`, Level: "high", Message: "Deleting a system directory", Action: "confirm"},
		{Pattern: `rm\s+-rf\s+\*`, Level: "critical", Message: "Recursive delete everything", Action: "confirm"},
		{Pattern: `rm\s+-rf\s+(~|\$HOME)(/|\s|$)`, Level: "high", Message: "Deleting home directory", Action: "confirm"},
		{Pattern: `dd\s+.*of=/dev/`, Level: "critical", Message: "Raw disk writing", Action: "block"},
		{Pattern: `mkfs\.`, Level: "critical", Message: "Formatting filesystem", Action: "block"},
		{Pattern: `>\s*/dev/(sd[a-z]|nvme|disk)`, Level: "critical", Message: "Writing to block device", Action: "block"},
		{Pattern: `:\(\)\s*\{\s*:\|:&\s*\};:`, Level: "critical", Message: "Fork bomb", Action: "block"},
		{Pattern: `chmod\s+(-R\s+)?777`, Level: "medium", Message: "Overly permissive chmod", Action: "confirm"},
		{Pattern: `(curl|wget)[^|]*\|\s*(sudo\s+)?(ba|z)?sh`, Level: "high", Message: "Piping a remote script to a shell", Action: "confirm"},
		{Pattern: `git\s+push\s+.*(--force|-f)(\s|$)`, Level: "medium", Message: "Force push rewrites remote history", Action: "confirm"},
		{Pattern: `git\s+reset\s+--hard`, Level: "medium", Message: "Discards uncommitted changes", Action: "confirm"},
		{Pattern: `(?i)drop\s+(table|database)`, Level: "high", Message: "Dropping database objects", Action: "confirm"},
		{Pattern: `\b(shutdown|reboot|halt)\b`, Level: "high", Message: "Stops the machine", Action: "confirm"},
	}
}

var _ ports.SecurityService = (*Guardrail)(nil)
