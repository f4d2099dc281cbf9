package nlp

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/pkg/textdistance"
)

// Matcher scores stored commands against a parsed query.
type Matcher struct {
	cfg domain.RankingSettings
	now func() time.Time
}

// MatcherOption customizes a Matcher.
type MatcherOption func(*Matcher)

// WithClock overrides the time source used for recency scoring.
func WithClock(now func() time.Time) MatcherOption {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMatcher creates a Matcher. Zero-valued settings fall back to defaults.
func NewMatcher(cfg domain.RankingSettings, opts ...MatcherOption) *Matcher {
	cfg.ApplyDefaults()
	m := &Matcher{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ScoreBreakdown holds the independent contributions that add up to a score.
type ScoreBreakdown struct {
	CommandType int
	Action      int
	Keywords    int
	Recency     int
}

// Total sums all contributions.
func (b ScoreBreakdown) Total() int {
	return b.CommandType + b.Action + b.Keywords + b.Recency
}

// Breakdown computes every scoring contribution for a command.
func (m *Matcher) Breakdown(cmd domain.Command, q domain.ParsedQuery) ScoreBreakdown {
	text := strings.ToLower(cmd.Text)
	return ScoreBreakdown{
		CommandType: commandTypeScore(text, q.CommandType, m.cfg),
		Action:      actionScore(text, q.Action, m.cfg),
		Keywords:    keywordScore(text, q.Keywords, m.cfg),
		Recency:     recencyScore(cmd.Timestamp, m.now(), m.cfg),
	}
}

// Score returns the total relevance of a command for the query.
func (m *Matcher) Score(cmd domain.Command, q domain.ParsedQuery) int {
	return m.Breakdown(cmd, q).Total()
}

// RankCommands scores every command and sorts descending. Ties keep input order.
func (m *Matcher) RankCommands(commands []domain.Command, q domain.ParsedQuery) []domain.ScoredCommand {
	scored := make([]domain.ScoredCommand, 0, len(commands))
	for _, cmd := range commands {
		scored = append(scored, domain.ScoredCommand{Command: cmd, Score: m.Score(cmd, q)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// FilterRelevant drops weak matches, commands missing the requested action and,
// once a strong match exists, anything far below it. Order is preserved.
func (m *Matcher) FilterRelevant(scored []domain.ScoredCommand, q domain.ParsedQuery) []domain.ScoredCommand {
	survivors := make([]domain.ScoredCommand, 0, len(scored))
	top := math.MinInt
	for _, sc := range scored {
		if sc.Score < m.cfg.MinScore {
			continue
		}
		if q.Action != "" && !strings.Contains(strings.ToLower(sc.Text), q.Action) {
			continue
		}
		survivors = append(survivors, sc)
		top = max(top, sc.Score)
	}
	if len(survivors) == 0 || top <= m.cfg.StrongMatchScore {
		return survivors
	}

	cutoff := m.cfg.RelativeCutoff * float64(top)
	out := survivors[:0]
	for _, sc := range survivors {
		if float64(sc.Score) >= cutoff {
			out = append(out, sc)
		}
	}
	return out
}

func commandTypeScore(text, commandType string, cfg domain.RankingSettings) int {
	switch {
	case commandType == "":
		return 0
	case strings.HasPrefix(text, commandType):
		return cfg.CommandTypePrefixScore
	case strings.Contains(text, commandType):
		return cfg.CommandTypeContainsScore
	default:
		return 0
	}
}

func actionScore(text, action string, cfg domain.RankingSettings) int {
	if action != "" && strings.Contains(text, action) {
		return cfg.ActionScore
	}
	return 0
}

// keywordScore adds a flat bonus per contained keyword plus a fuzzy bonus for
// every word of the command within edit distance of the keyword.
func keywordScore(text string, keywords []string, cfg domain.RankingSettings) int {
	if len(keywords) == 0 {
		return 0
	}
	words := strings.Fields(text)
	score := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			score += cfg.KeywordScore
		}
		for _, word := range words {
			distance := textdistance.Levenshtein(keyword, word)
			if distance <= cfg.FuzzyMaxDistance {
				score += max(0, cfg.FuzzyBaseScore-distance)
			}
		}
	}
	return score
}

func recencyScore(ts, now time.Time, cfg domain.RankingSettings) int {
	if ts.IsZero() {
		return 0
	}
	// A future timestamp has a negative age and scores above the base.
	ageDays := float64(now.Sub(ts)) / float64(domain.Day)
	if ageDays >= float64(cfg.RecencyWindowDays) {
		return 0
	}
	return cfg.RecencyBaseScore - int(math.Floor(ageDays))
}
