package textproc

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestTokenizerSplitsOnPunctuation(t *testing.T) {
	tok := NewTokenizer()
	got := tok.Tokenize("What Git command, did I use?  docker-compose up")
	want := []string{"what", "git", "command", "did", "i", "use", "docker", "compose", "up"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizerSplitsShellPunctuation(t *testing.T) {
	tok := NewTokenizer()
	tests := []struct {
		in   string
		want []string
	}{
		{"node.js build", []string{"node", "js", "build"}},
		{"cat package.json", []string{"cat", "package", "json"}},
		{"npm run docker:build", []string{"npm", "run", "docker", "build"}},
		{"don't", []string{"don", "t"}},
		{"my_script --dry-run", []string{"my_script", "dry", "run"}},
		{"make 2>&1", []string{"make", "2", "1"}},
	}
	for _, tt := range tests {
		if got := tok.Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTokenizerEmpty(t *testing.T) {
	if got := NewTokenizer().Tokenize("  ?! "); len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}

func TestPorterStemmer(t *testing.T) {
	s := NewPorterStemmer()
	tests := map[string]string{
		"branches": "branch",
		"pushing":  "push",
		"commits":  "commit",
		"files":    "file",
		"docker":   "docker",
		"":         "",
	}
	for in, want := range tests {
		if got := s.Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDateExtractorYesterday(t *testing.T) {
	base := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.Local)
	d := NewDateExtractor(WithReferenceTime(func() time.Time { return base }))

	phrases := d.Extract("deploy yesterday")
	if len(phrases) == 0 {
		t.Fatal("expected a date phrase")
	}
	first := phrases[0]
	if strings.TrimSpace(first.Text) != "yesterday" {
		t.Errorf("Text = %q, want yesterday", first.Text)
	}
	if first.Start == nil {
		t.Fatal("expected a start instant")
	}
	y, m, day := first.Start.Date()
	if y != 2026 || m != time.March || day != 14 {
		t.Errorf("Start = %v, want 2026-03-14", first.Start)
	}
	if first.End != nil {
		t.Errorf("End = %v, want nil", first.End)
	}
}

func TestDateExtractorNoDate(t *testing.T) {
	d := NewDateExtractor()
	if phrases := d.Extract("git push origin main"); len(phrases) != 0 {
		t.Errorf("expected no phrases, got %+v", phrases)
	}
}

// wednesday is 2026-03-18, a Wednesday.
var wednesday = time.Date(2026, time.March, 18, 10, 30, 0, 0, time.Local)

func day(t *time.Time) string {
	if t == nil {
		return "<nil>"
	}
	return t.Format("2006-01-02")
}

func TestDateExtractorWeekdays(t *testing.T) {
	d := NewDateExtractor(WithReferenceTime(func() time.Time { return wednesday }))
	tests := []struct {
		query string
		want  string
	}{
		{"git commit on monday", "2026-03-16"},
		{"deploy friday", "2026-03-13"},
		{"tests wednesday", "2026-03-18"},
		{"build on tuesday", "2026-03-17"},
		{"last friday", "2026-03-13"},
		{"next friday", "2026-03-20"},
		{"3 days ago", "2026-03-15"},
	}
	for _, tt := range tests {
		phrases := d.Extract(tt.query)
		if len(phrases) == 0 {
			t.Errorf("Extract(%q) found no phrase", tt.query)
			continue
		}
		if got := day(phrases[0].Start); got != tt.want {
			t.Errorf("Extract(%q) start = %s, want %s", tt.query, got, tt.want)
		}
		if phrases[0].End != nil {
			t.Errorf("Extract(%q) end = %s, want none", tt.query, day(phrases[0].End))
		}
	}
}

func TestDateExtractorPeriods(t *testing.T) {
	d := NewDateExtractor(WithReferenceTime(func() time.Time { return wednesday }))
	tests := []struct {
		query     string
		text      string
		wantStart string
		wantEnd   string
	}{
		{"npm install last week", "last week", "2026-03-09", "2026-03-15"},
		{"git push this week", "this week", "2026-03-16", "2026-03-18"},
		{"deploy last month", "last month", "2026-02-01", "2026-02-28"},
		{"docker build this month", "this month", "2026-03-01", "2026-03-18"},
		{"Past Week", "Past Week", "2026-03-09", "2026-03-15"},
	}
	for _, tt := range tests {
		phrases := d.Extract(tt.query)
		if len(phrases) == 0 {
			t.Errorf("Extract(%q) found no phrase", tt.query)
			continue
		}
		got := phrases[0]
		if strings.TrimSpace(got.Text) != tt.text {
			t.Errorf("Extract(%q) text = %q, want %q", tt.query, got.Text, tt.text)
		}
		if day(got.Start) != tt.wantStart || day(got.End) != tt.wantEnd {
			t.Errorf("Extract(%q) = %s..%s, want %s..%s", tt.query, day(got.Start), day(got.End), tt.wantStart, tt.wantEnd)
		}
	}
}

func TestDateExtractorMonthBoundary(t *testing.T) {
	march31 := time.Date(2026, time.March, 31, 9, 0, 0, 0, time.Local)
	d := NewDateExtractor(WithReferenceTime(func() time.Time { return march31 }))
	phrases := d.Extract("last month")
	if len(phrases) == 0 {
		t.Fatal("expected a phrase")
	}
	if day(phrases[0].Start) != "2026-02-01" || day(phrases[0].End) != "2026-02-28" {
		t.Errorf("got %s..%s", day(phrases[0].Start), day(phrases[0].End))
	}
}
