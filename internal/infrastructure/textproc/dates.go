package textproc

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/ports"
)

var (
	periodPattern  = regexp.MustCompile(`(?i)(?:\W|^)(last|past|previous|this)\s+(week|month)(?:\W|$)`)
	periodExact    = regexp.MustCompile(`(?i)^\W*(last|past|previous|this)\s+(week|month)\W*$`)
	weekdayPattern = regexp.MustCompile(`(?i)(?:\W|^)` + en.WEEKDAY_OFFSET_PATTERN + `(?:\W|$)`)
	forwardPattern = regexp.MustCompile(`(?i)(?:\W|^)(?:next|this)(?:\W|$)`)
)

// DateExtractor finds English date phrases ("yesterday", "last friday",
// "3 days ago", "last week") relative to the current time.
type DateExtractor struct {
	parser *when.Parser
	now    func() time.Time
}

// DateOption customizes a DateExtractor.
type DateOption func(*DateExtractor)

// WithReferenceTime fixes the base time phrases are resolved against.
func WithReferenceTime(now func() time.Time) DateOption {
	return func(d *DateExtractor) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDateExtractor builds an extractor with the English and common rule sets
// plus a rule for calendar weeks and months.
func NewDateExtractor(opts ...DateOption) *DateExtractor {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	w.Add(periodRule())
	d := &DateExtractor{parser: w, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Extract implements ports.DateExtractor. Week and month phrases carry an
// end; every other phrase is a single instant.
func (d *DateExtractor) Extract(text string) []domain.DatePhrase {
	now := d.now()
	res, err := d.parser.Parse(text, now)
	if err != nil || res == nil || strings.TrimSpace(res.Text) == "" {
		return nil
	}

	phrase := domain.DatePhrase{Text: res.Text}
	if m := periodExact.FindStringSubmatch(res.Text); m != nil {
		start, end := periodBounds(m[1], m[2], now)
		phrase.Start, phrase.End = &start, &end
		return []domain.DatePhrase{phrase}
	}

	start := res.Time
	// A bare weekday means the most recent one, not the coming one.
	if weekdayPattern.MatchString(res.Text) && !forwardPattern.MatchString(res.Text) {
		for laterDay(start, now) {
			start = start.AddDate(0, 0, -7)
		}
	}
	phrase.Start = &start
	return []domain.DatePhrase{phrase}
}

// periodRule resolves "last week", "this month" and friends to the first day
// of the period. It yields to any rule that already moved the time, so
// "monday last week" stays with the weekday rule.
func periodRule() rules.Rule {
	return &rules.F{
		RegExp: periodPattern,
		Applier: func(m *rules.Match, c *rules.Context, _ *rules.Options, ref time.Time) (bool, error) {
			if c.Duration != 0 {
				return false, nil
			}
			start, _ := periodBounds(m.Captures[0], m.Captures[1], ref)
			c.Duration = start.Sub(ref)
			return true, nil
		},
	}
}

// periodBounds returns noon on the first and last day of the period. Weeks
// start on Monday; the current period ends at ref.
func periodBounds(which, unit string, ref time.Time) (time.Time, time.Time) {
	current := strings.EqualFold(which, "this")
	y, m, d := ref.Date()
	loc := ref.Location()

	if strings.EqualFold(unit, "month") {
		if current {
			return time.Date(y, m, 1, 12, 0, 0, 0, loc), ref
		}
		return time.Date(y, m-1, 1, 12, 0, 0, 0, loc), time.Date(y, m, 0, 12, 0, 0, 0, loc)
	}

	sinceMonday := (int(ref.Weekday()) + 6) % 7
	monday := time.Date(y, m, d-sinceMonday, 12, 0, 0, 0, loc)
	if current {
		return monday, ref
	}
	return monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -1)
}

func laterDay(t, ref time.Time) bool {
	ty, tm, td := t.Date()
	ry, rm, rd := ref.In(t.Location()).Date()
	return time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).After(time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC))
}

var _ ports.DateExtractor = (*DateExtractor)(nil)
