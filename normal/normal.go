// Package normal provides small composable string normalizers, used to
// build lookup keys for the grounding indices.
package normal

import (
	"strings"
	"unicode"
)

// Normalizer maps a string to its normalized form.
type Normalizer interface {
	Normalize(string) string
}

// Pipeline applies a list of normalizers in order.
type Pipeline struct {
	Normalizer []Normalizer
}

func (p *Pipeline) Normalize(s string) string {
	for _, n := range p.Normalizer {
		s = n.Normalize(s)
	}
	return s
}

// LowercaseNormalizer folds case.
type LowercaseNormalizer struct{}

func (n *LowercaseNormalizer) Normalize(v string) string {
	return strings.ToLower(v)
}

// CollapseWSNormalizer collapses whitespace runs into a single space and
// trims the ends.
type CollapseWSNormalizer struct{}

func (n *CollapseWSNormalizer) Normalize(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// LettersDigitsNormalizer drops everything that is not a letter, digit or
// space.
type LettersDigitsNormalizer struct{}

func (n *LettersDigitsNormalizer) Normalize(v string) string {
	var b strings.Builder
	for _, c := range v {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == ' ' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

var lookupPipeline = &Pipeline{
	Normalizer: []Normalizer{
		&LowercaseNormalizer{},
		&LettersDigitsNormalizer{},
		&CollapseWSNormalizer{},
	},
}

// LookupKey normalizes a name for index lookups.
func LookupKey(s string) string {
	return lookupPipeline.Normalize(s)
}
