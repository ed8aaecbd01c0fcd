// Package normalize rewrites stage directions in model output into emoji.
package normalize

import "strings"

// Replacement maps one literal pattern to its glyph.
type Replacement struct {
	Pattern string
	Glyph   string
}

// DefaultReplacements is the fixed, ordered table applied to every response.
var DefaultReplacements = []Replacement{
	{"*smiles*", "😊"},
	{"*smiling*", "😊"},
	{"*laughs*", "😂"},
	{"*nods*", "👍"},
	{"*sighs*", "😌"},
	{"*adjusts glasses*", "🤖"},
	{"*grin*", "😁"},
	{"*bounces up and down excitedly*", "🕺"},
	{"*smiling emoji*", "😊"},
	{"*adjusts aviator sunglasses*", "😎"},
	{"*winks*", "😉"},
}

// Normalizer applies an ordered list of literal replacements.
type Normalizer struct {
	replacements []Replacement
}

// New returns a Normalizer over DefaultReplacements.
func New() *Normalizer {
	return NewWithReplacements(DefaultReplacements)
}

// NewWithReplacements copies rs so later edits by the caller have no effect.
func NewWithReplacements(rs []Replacement) *Normalizer {
	cp := make([]Replacement, len(rs))
	copy(cp, rs)
	return &Normalizer{replacements: cp}
}

// Apply replaces every occurrence of each pattern, one pattern at a time in
// table order. Patterns match as exact substrings only.
func (n *Normalizer) Apply(s string) string {
	for _, r := range n.replacements {
		if r.Pattern == "" {
			continue
		}
		s = strings.ReplaceAll(s, r.Pattern, r.Glyph)
	}
	return s
}

// Replacements returns a copy of the table in application order.
func (n *Normalizer) Replacements() []Replacement {
	cp := make([]Replacement, len(n.replacements))
	copy(cp, n.replacements)
	return cp
}
