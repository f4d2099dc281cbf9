// Package textproc adapts third-party text processing libraries to the
// tokenizer, stemmer and date-extractor ports used by the query parser.
package textproc

import (
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis/tokenizer/character"

	"github.com/doeshing/repty/internal/ports"
)

// Tokenizer splits text into runs of letters, digits and underscores using
// bleve's character tokenizer. Everything else is a boundary, so "node.js"
// gives "node" and "js", and "docker:build" gives "docker" and "build".
type Tokenizer struct {
	tokenizer *character.CharacterTokenizer
}

// NewTokenizer builds a Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{tokenizer: character.NewCharacterTokenizer(isWordRune)}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Tokenize implements ports.Tokenizer.
func (t *Tokenizer) Tokenize(text string) []string {
	stream := t.tokenizer.Tokenize([]byte(strings.ToLower(text)))
	tokens := make([]string, 0, len(stream))
	for _, token := range stream {
		if len(token.Term) == 0 {
			continue
		}
		tokens = append(tokens, string(token.Term))
	}
	return tokens
}

var _ ports.Tokenizer = (*Tokenizer)(nil)
