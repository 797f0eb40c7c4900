// Package content holds the post aggregate and the composition engine that
// interleaves positioned images with a post's paragraphs.
package content

import (
	"strconv"
	"strings"
)

// DefaultMaxIndex is the number of indexed image slots a post supports
// unless configured otherwise.
const DefaultMaxIndex = 3

// Position names where an image belongs: the hero slot, or immediately after
// paragraph N ("index-N").
type Position string

// Hero is the single lead image rendered before any paragraph.
const Hero Position = "hero"

const indexPrefix = "index-"

// IndexPosition returns the position for paragraph slot i.
func IndexPosition(i int) Position {
	return Position(indexPrefix + strconv.Itoa(i))
}

// IsHero reports whether p is the hero position.
func (p Position) IsHero() bool { return p == Hero }

// Index returns the paragraph slot of an indexed position, or 0 for hero and
// for anything that is not shaped like "index-N".
func (p Position) Index() int {
	s, ok := strings.CutPrefix(string(p), indexPrefix)
	if !ok || s == "" || s[0] == '0' || s[0] == '+' || s[0] == '-' {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// Vocabulary is the closed set of positions a deployment accepts.
type Vocabulary struct {
	MaxIndex int
}

// DefaultVocabulary accepts hero plus DefaultMaxIndex indexed slots.
var DefaultVocabulary = Vocabulary{MaxIndex: DefaultMaxIndex}

func (v Vocabulary) max() int {
	if v.MaxIndex <= 0 {
		return DefaultMaxIndex
	}
	return v.MaxIndex
}

// Valid reports whether p belongs to the vocabulary.
func (v Vocabulary) Valid(p Position) bool {
	if p.IsHero() {
		return true
	}
	i := p.Index()
	return i >= 1 && i <= v.max()
}

// Parse normalizes surrounding whitespace and validates s. Anything outside
// the vocabulary is rejected, never coerced.
func (v Vocabulary) Parse(s string) (Position, error) {
	p := Position(strings.TrimSpace(s))
	if p == "" {
		return "", &ValidationError{Field: "position", Reason: "is required"}
	}
	if !v.Valid(p) {
		return "", &ValidationError{Field: "position", Reason: "unknown position " + strconv.Quote(s)}
	}
	return p, nil
}

// Positions lists the vocabulary in display order: hero, index-1..index-N.
func (v Vocabulary) Positions() []Position {
	out := make([]Position, 0, v.max()+1)
	out = append(out, Hero)
	for i := 1; i <= v.max(); i++ {
		out = append(out, IndexPosition(i))
	}
	return out
}
