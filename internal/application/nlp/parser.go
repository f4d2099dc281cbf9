package nlp

import (
	"strings"
	"time"

	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/ports"
)

// Parser builds a ParsedQuery from free text. It never fails: anything it
// cannot recognize is simply left unset.
type Parser struct {
	dates     ports.DateExtractor
	tokenizer ports.Tokenizer
	stemmer   ports.Stemmer
}

// NewParser wires the parser to its text processing collaborators.
// A nil date extractor disables date detection.
func NewParser(dates ports.DateExtractor, tokenizer ports.Tokenizer, stemmer ports.Stemmer) *Parser {
	return &Parser{dates: dates, tokenizer: tokenizer, stemmer: stemmer}
}

// Parse extracts the date range, command type, action and stemmed keywords.
func (p *Parser) Parse(query string) domain.ParsedQuery {
	var result domain.ParsedQuery

	query = p.extractDateRange(query, &result)

	tokens := p.tokenizer.Tokenize(strings.ToLower(query))
	result.CommandType = firstInVocabulary(CommandTypes, tokens)
	result.Action = firstInVocabulary(Actions, tokens)
	result.Keywords = p.keywords(tokens)

	return result
}

// extractDateRange applies the first date phrase found and returns the query
// with that phrase removed.
func (p *Parser) extractDateRange(query string, result *domain.ParsedQuery) string {
	if p.dates == nil {
		return query
	}
	phrases := p.dates.Extract(query)
	if len(phrases) == 0 {
		return query
	}
	first := phrases[0]

	if first.Start != nil {
		start := startOfDay(*first.Start)
		result.StartDate = &start
	}
	switch {
	case first.End != nil:
		end := endOfDay(*first.End)
		result.EndDate = &end
	case result.StartDate != nil:
		end := endOfDay(*result.StartDate)
		result.EndDate = &end
	}

	if first.Text != "" {
		query = strings.Replace(query, first.Text, "", 1)
	}
	return query
}

func (p *Parser) keywords(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if IsStopWord(token) || len(token) < minKeywordLength {
			continue
		}
		stem := token
		if p.stemmer != nil {
			stem = p.stemmer.Stem(token)
		}
		// A stem can come out shorter than its token.
		if len(stem) < minKeywordLength || IsStopWord(stem) {
			continue
		}
		if _, dup := seen[stem]; dup {
			continue
		}
		seen[stem] = struct{}{}
		keywords = append(keywords, stem)
	}
	return keywords
}

// ExtractKeywords orders search terms as [commandType?, action?, ...keywords].
func (p *Parser) ExtractKeywords(q domain.ParsedQuery) []string {
	terms := make([]string, 0, len(q.Keywords)+2)
	if q.CommandType != "" {
		terms = append(terms, q.CommandType)
	}
	if q.Action != "" {
		terms = append(terms, q.Action)
	}
	return append(terms, q.Keywords...)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
