// Package vocab implements the Vocabulary Index: the bidirectional mapping
// between token strings and contiguous integer indices, plus the prefix-tree
// structure supporting longest-prefix-match queries.
package vocab

import (
	"fmt"

	"github.com/screenager/bpego/internal/bpeerr"
)

// Index is the vocabulary's token<->index bijection and its trie.
//
// During training the trie is rebuilt only on demand (BuildTrie), since the
// hot loop never needs longest-prefix queries; Add is append-only and keeps
// forward and inverse maps consistent at every call.
type Index struct {
	forward map[string]int
	inverse []string
	trie    *trieNode
}

// New returns an empty Vocabulary Index.
func New() *Index {
	return &Index{forward: make(map[string]int)}
}

// Len returns the number of tokens in the vocabulary.
func (v *Index) Len() int {
	return len(v.inverse)
}

// Add appends token to the vocabulary if not already present and returns
// its index. Indices are dense, start at 0, and never change once assigned.
// A genuinely new token invalidates any built trie, so a later LongestPrefix
// rebuilds it rather than matching against a vocabulary that has since grown
// (as happens when Train resumes against an already-loaded, already-triied
// Index and promotes new merge tokens into it).
func (v *Index) Add(token string) int {
	if idx, ok := v.forward[token]; ok {
		return idx
	}
	idx := len(v.inverse)
	v.forward[token] = idx
	v.inverse = append(v.inverse, token)
	v.trie = nil
	return idx
}

// Contains reports whether token is a vocabulary member.
func (v *Index) Contains(token string) bool {
	_, ok := v.forward[token]
	return ok
}

// IndexOf returns the index for token, if present.
func (v *Index) IndexOf(token string) (int, bool) {
	idx, ok := v.forward[token]
	return idx, ok
}

// TokenOf returns the string for index, if present.
func (v *Index) TokenOf(index int) (string, bool) {
	if index < 0 || index >= len(v.inverse) {
		return "", false
	}
	return v.inverse[index], true
}

// IndicesOf maps every token to its index, failing with ErrUnknownToken if
// any token is absent.
func (v *Index) IndicesOf(tokens []string) ([]int, error) {
	out := make([]int, len(tokens))
	for i, t := range tokens {
		idx, ok := v.forward[t]
		if !ok {
			return nil, fmt.Errorf("%w: %q", bpeerr.ErrUnknownToken, t)
		}
		out[i] = idx
	}
	return out, nil
}

// TokensOf maps every index to its string, failing with ErrUnknownIndex if
// any index is absent.
func (v *Index) TokensOf(indices []int) ([]string, error) {
	out := make([]string, len(indices))
	for i, idx := range indices {
		tok, ok := v.TokenOf(idx)
		if !ok {
			return nil, fmt.Errorf("%w: %d", bpeerr.ErrUnknownIndex, idx)
		}
		out[i] = tok
	}
	return out, nil
}

// Tokens returns the vocabulary strings ordered by index.
func (v *Index) Tokens() []string {
	out := make([]string, len(v.inverse))
	copy(out, v.inverse)
	return out
}

// BuildTrie (re)constructs the prefix tree from the current vocabulary. It
// is rebuildable from the vocabulary and is never persisted.
func (v *Index) BuildTrie() {
	root := newTrieNode()
	for _, tok := range v.inverse {
		root.insert(tok)
	}
	v.trie = root
}

// LongestPrefix returns the longest vocabulary member that is a prefix of
// text[from:], matched by Unicode scalar traversal of the trie. The length
// is reported in bytes. If no trie is built yet, or Add has invalidated it,
// the trie is built from the current vocabulary first.
func (v *Index) LongestPrefix(text string, from int) (length int, token string, ok bool) {
	if v.trie == nil {
		v.BuildTrie()
	}
	length, ok = v.trie.longestPrefix(text, from)
	if !ok {
		return 0, "", false
	}
	return length, text[from : from+length], true
}

// NewFromTokens builds a Vocabulary Index, assigning dense indices 0..n-1 in
// the order tokens are given, and builds its trie.
func NewFromTokens(tokens []string) *Index {
	v := New()
	for _, t := range tokens {
		v.Add(t)
	}
	v.BuildTrie()
	return v
}

// NewFromIndexed reconstructs a Vocabulary Index from an explicit
// index->token mapping (as loaded from a snapshot), validating that indices
// are dense and start at 0 and that there are no duplicate token strings.
func NewFromIndexed(indexToToken map[int]string) (*Index, error) {
	n := len(indexToToken)
	inverse := make([]string, n)
	seen := make([]bool, n)
	for idx, tok := range indexToToken {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: index %d out of dense range [0,%d)", bpeerr.ErrParse, idx, n)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: duplicate index %d", bpeerr.ErrParse, idx)
		}
		seen[idx] = true
		inverse[idx] = tok
	}
	forward := make(map[string]int, n)
	for idx, tok := range inverse {
		if _, dup := forward[tok]; dup {
			return nil, fmt.Errorf("%w: duplicate token %q", bpeerr.ErrParse, tok)
		}
		forward[tok] = idx
	}
	v := &Index{forward: forward, inverse: inverse}
	v.BuildTrie()
	return v, nil
}
