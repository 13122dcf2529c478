// Package codec implements the Encoder/Decoder: turning raw text into a
// sequence of vocabulary indices using greedy longest-prefix matching
// against the trained model, and back.
package codec

import (
	"strings"
	"unicode/utf8"

	"github.com/screenager/bpego/internal/model"
)

// CleanText lowercases s. It is the only normalization the core encoder
// applies; anything more aggressive (whitespace collapsing, punctuation
// stripping) belongs to a corpus loader, not the codec.
func CleanText(s string) string {
	return strings.ToLower(s)
}

// Encode lowercases text with CleanText, then greedily matches the longest
// vocabulary token at each position against m's trie. A position with no
// matching prefix emits the Unknown reserved token and advances by one rune.
func Encode(m *model.Model, text string) []int {
	text = CleanText(text)
	v := m.Vocab()
	r := m.Reserved()
	unk, _ := v.IndexOf(r.Unknown.Value)

	out := make([]int, 0, len(text))
	for i := 0; i < len(text); {
		length, token, ok := v.LongestPrefix(text, i)
		if !ok {
			_, size := utf8.DecodeRuneInString(text[i:])
			out = append(out, unk)
			i += size
			continue
		}
		idx, _ := v.IndexOf(token)
		out = append(out, idx)
		i += length
	}
	return out
}

// Decode concatenates the tokens for indices. The end-of-sentence reserved
// token is never written literally: it contributes a single space in its
// place, and only when the following token exists and is not itself
// reserved.
func Decode(m *model.Model, indices []int) (string, error) {
	v := m.Vocab()
	r := m.Reserved()

	tokens, err := v.TokensOf(indices)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, tok := range tokens {
		if r.IsEndOfSentence(tok) {
			if i+1 < len(tokens) && !r.IsReserved(tokens[i+1]) {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.WriteString(tok)
	}
	return sb.String(), nil
}

// PadSequences right-pads every sequence to the length of the longest one
// using the Pad reserved token's index, without mutating its inputs.
func PadSequences(m *model.Model, seqs [][]int) [][]int {
	maxLen := 0
	for _, s := range seqs {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	padIdx := m.Reserved().Pad.Index

	out := make([][]int, len(seqs))
	for i, s := range seqs {
		padded := make([]int, maxLen)
		copy(padded, s)
		for j := len(s); j < maxLen; j++ {
			padded[j] = padIdx
		}
		out[i] = padded
	}
	return out
}
