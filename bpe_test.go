package bpe_test

import (
	"path/filepath"
	"testing"

	"github.com/screenager/bpego"
)

func TestTrainEncodeDecodeRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "model.json")
	m, err := bpe.Train("the cat sat on the mat the cat sat", 30, out, "")
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	indices := bpe.Encode(m, "the cat sat")
	got, err := bpe.Decode(m, indices)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "the cat sat" {
		t.Fatalf("want %q, got %q", "the cat sat", got)
	}
}

func TestSaveLoadRoundTripThroughFacade(t *testing.T) {
	out := filepath.Join(t.TempDir(), "model.json")
	m, err := bpe.Train("ab ab ab ab", 3, out, "")
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	path := filepath.Join(t.TempDir(), "saved.json")
	if err := bpe.Save(m, path, bpe.FormatJSON); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := bpe.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if bpe.VocabSize(loaded) != bpe.VocabSize(m) {
		t.Fatalf("want vocab size %d, got %d", bpe.VocabSize(m), bpe.VocabSize(loaded))
	}
}
