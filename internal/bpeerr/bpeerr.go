// Package bpeerr defines the error taxonomy shared by the vocabulary,
// trainer, and codec packages. Errors are sentinel values, comparable with
// errors.Is, rather than a typed exception hierarchy.
package bpeerr

import "errors"

var (
	// ErrUnknownToken is returned when a token string has no vocabulary entry.
	ErrUnknownToken = errors.New("bpe: unknown token")
	// ErrUnknownIndex is returned when an index has no vocabulary entry.
	ErrUnknownIndex = errors.New("bpe: unknown index")
	// ErrUnknownCharacter is returned during resumed training when the
	// source text contains a character absent from the loaded vocabulary.
	ErrUnknownCharacter = errors.New("bpe: unknown character")
	// ErrEmptyCorpus is returned when the initial symbol stream has fewer
	// than two elements; training still produces a valid initial model.
	ErrEmptyCorpus = errors.New("bpe: empty corpus")
	// ErrParse is returned when a snapshot file cannot be decoded.
	ErrParse = errors.New("bpe: malformed snapshot")
)
