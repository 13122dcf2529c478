// Package bpe is a byte-pair-encoding trainer and tokenizer. It seeds a
// vocabulary from a fixed reserved-token table, trains merge rules over a
// corpus by repeatedly promoting the most frequent adjacent symbol pair,
// and encodes/decodes text against the resulting model.
package bpe

import (
	"github.com/screenager/bpego/internal/codec"
	"github.com/screenager/bpego/internal/model"
	"github.com/screenager/bpego/internal/trainer"
)

// Model is a trained vocabulary, merge-rule list, and reserved-token table.
type Model = model.Model

// Rule is a single discovered merge rule.
type Rule = model.Rule

// Format selects a snapshot's on-disk encoding.
type Format = model.Format

// TrainOption configures a Train call.
type TrainOption = trainer.Option

// Progress describes training state at the end of one iteration.
type Progress = trainer.Progress

const (
	FormatJSON = model.FormatJSON
	FormatYAML = model.FormatYAML
)

var (
	WithChunkSize     = trainer.WithChunkSize
	WithWorkers       = trainer.WithWorkers
	WithSnapshotEvery = trainer.WithSnapshotEvery
	WithFormat        = trainer.WithFormat
	WithProgress      = trainer.WithProgress
	WithContext       = trainer.WithContext
)

// Train runs BPE training over source for iterations rounds, writing
// periodic and final snapshots to outputPath. If startPath is non-empty,
// training resumes from that snapshot instead of seeding a fresh
// reserved-only vocabulary.
func Train(source string, iterations int, outputPath, startPath string, opts ...TrainOption) (*Model, error) {
	return trainer.Train(source, iterations, outputPath, startPath, opts...)
}

// Load reads a trained model snapshot from path.
func Load(path string) (*Model, error) {
	return model.Load(path)
}

// Save writes m to path in the given format.
func Save(m *Model, path string, format Format) error {
	return model.Save(m, path, format)
}

// CleanText lowercases s, the core's only text normalization.
func CleanText(s string) string {
	return codec.CleanText(s)
}

// Encode greedily tokenizes text against m's vocabulary.
func Encode(m *Model, text string) []int {
	return codec.Encode(m, text)
}

// Decode reconstructs text from a sequence of vocabulary indices.
func Decode(m *Model, indices []int) (string, error) {
	return codec.Decode(m, indices)
}

// PadSequences right-pads every sequence to the longest one's length using
// the model's Pad reserved token.
func PadSequences(m *Model, seqs [][]int) [][]int {
	return codec.PadSequences(m, seqs)
}

// Vocabulary returns m's vocabulary token strings, ordered by index.
func Vocabulary(m *Model) []string {
	return m.Vocabulary()
}

// MergeRules returns m's merge rules in discovery order.
func MergeRules(m *Model) []Rule {
	return m.MergeRules()
}

// VocabSize returns the number of tokens in m's vocabulary.
func VocabSize(m *Model) int {
	return m.VocabSize()
}

// TokenOf returns the string for index, if present in m's vocabulary.
func TokenOf(m *Model, index int) (string, bool) {
	return m.TokenOf(index)
}

// IndexOf returns the index for token, if present in m's vocabulary.
func IndexOf(m *Model, token string) (int, bool) {
	return m.IndexOf(token)
}
