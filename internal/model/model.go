// Package model holds the trained snapshot: vocabulary, merge rules, and
// reserved-token table. It is the one artifact both the trainer and the
// codec operate on, and the one persisted to disk.
package model

import (
	"github.com/screenager/bpego/internal/reserved"
	"github.com/screenager/bpego/internal/vocab"
)

// Rule is a single merge rule: an ordered pair of strings whose
// concatenation is a vocabulary token, discovered at some iteration of
// training. Rule order is the order of discovery and is never reordered.
type Rule struct {
	Left  string
	Right string
}

// Model is the trained snapshot. After training returns, a Model is
// value-semantic: fully constructed and immutable.
type Model struct {
	reserved *reserved.Table
	vocab    *vocab.Index
	rules    []Rule
}

// New builds a Model from its constituent parts. rules is taken by
// reference; callers should not mutate it afterwards.
func New(r *reserved.Table, v *vocab.Index, rules []Rule) *Model {
	return &Model{reserved: r, vocab: v, rules: rules}
}

// Reserved returns the model's Reserved Token Table.
func (m *Model) Reserved() *reserved.Table { return m.reserved }

// Vocab returns the model's Vocabulary Index.
func (m *Model) Vocab() *vocab.Index { return m.vocab }

// MergeRules returns the ordered merge-rule list.
func (m *Model) MergeRules() []Rule {
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Vocabulary returns the set of vocabulary token strings.
func (m *Model) Vocabulary() []string { return m.vocab.Tokens() }

// VocabSize returns the number of tokens in the vocabulary.
func (m *Model) VocabSize() int { return m.vocab.Len() }

// TokenOf returns the string for index, if present.
func (m *Model) TokenOf(index int) (string, bool) { return m.vocab.TokenOf(index) }

// IndexOf returns the index for token, if present.
func (m *Model) IndexOf(token string) (int, bool) { return m.vocab.IndexOf(token) }
