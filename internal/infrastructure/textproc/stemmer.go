package textproc

import (
	porterstemmer "github.com/blevesearch/go-porterstemmer"

	"github.com/doeshing/repty/internal/ports"
)

// PorterStemmer reduces English words to their Porter stem.
type PorterStemmer struct{}

// NewPorterStemmer builds a PorterStemmer.
func NewPorterStemmer() PorterStemmer {
	return PorterStemmer{}
}

// Stem implements ports.Stemmer.
func (PorterStemmer) Stem(word string) string {
	if word == "" {
		return word
	}
	return porterstemmer.StemString(word)
}

var _ ports.Stemmer = PorterStemmer{}
