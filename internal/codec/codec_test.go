package codec_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/screenager/bpego/internal/codec"
	"github.com/screenager/bpego/internal/model"
	"github.com/screenager/bpego/internal/trainer"
)

func trainSmall(t *testing.T, source string, iterations int) *model.Model {
	t.Helper()
	out := filepath.Join(t.TempDir(), "model.json")
	m, err := trainer.Train(source, iterations, out, "")
	if err != nil {
		t.Fatalf("trainer.Train: %v", err)
	}
	return m
}

func TestCleanTextLowercasesOnly(t *testing.T) {
	got := codec.CleanText("Hello WORLD\n")
	want := "hello world\n"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := trainSmall(t, "hello world hello world", 20)

	indices := codec.Encode(m, "hello world")
	got, err := codec.Decode(m, indices)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("round trip mismatch: want %q, got %q", "hello world", got)
	}
}

func TestEncodeUnknownCharacterFallsBackToUnknownToken(t *testing.T) {
	m := trainSmall(t, "abc abc abc", 5)

	indices := codec.Encode(m, "abc#abc")
	unkIdx, ok := m.IndexOf(m.Reserved().Unknown.Value)
	if !ok {
		t.Fatal("expected unknown reserved token in vocabulary")
	}
	found := false
	for _, idx := range indices {
		if idx == unkIdx {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unknown token index %d among %v", unkIdx, indices)
	}
}

func TestDecodeEndOfSentenceNeverEmitsLiteralToken(t *testing.T) {
	m := trainSmall(t, "abc abc abc", 5)
	aIdx, ok := m.IndexOf("a")
	if !ok {
		t.Fatal("expected \"a\" in vocabulary")
	}
	bIdx, ok := m.IndexOf("b")
	if !ok {
		t.Fatal("expected \"b\" in vocabulary")
	}
	eosIdx := m.Reserved().EOS.Index

	got, err := codec.Decode(m, []int{aIdx, eosIdx, bIdx})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := "a b"
	if got != want {
		t.Fatalf("EOS must contribute a single separating space and never its literal string: want %q, got %q", want, got)
	}
}

func TestDecodeEndOfSentenceAtEndEmitsNoTrailingSpace(t *testing.T) {
	m := trainSmall(t, "abc abc abc", 5)
	aIdx, _ := m.IndexOf("a")
	eosIdx := m.Reserved().EOS.Index

	got, err := codec.Decode(m, []int{aIdx, eosIdx})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "a" {
		t.Fatalf("trailing EOS with no following token must emit nothing: want %q, got %q", "a", got)
	}
}

func TestDecodeUnknownIndexFails(t *testing.T) {
	m := trainSmall(t, "abc abc", 2)
	_, err := codec.Decode(m, []int{999999})
	if err == nil {
		t.Fatal("want error for out-of-range index, got nil")
	}
}

func TestPadSequencesPadsToLongest(t *testing.T) {
	m := trainSmall(t, "ab ab ab", 1)
	padIdx := m.Reserved().Pad.Index

	seqs := [][]int{{1, 2, 3}, {1}}
	padded := codec.PadSequences(m, seqs)

	want := [][]int{
		{1, 2, 3},
		{1, padIdx, padIdx},
	}
	if !reflect.DeepEqual(padded, want) {
		t.Fatalf("want %v, got %v", want, padded)
	}
	if !reflect.DeepEqual(seqs[0], []int{1, 2, 3}) || !reflect.DeepEqual(seqs[1], []int{1}) {
		t.Fatal("PadSequences must not mutate its inputs")
	}
}
