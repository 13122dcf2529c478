package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/screenager/bpego/internal/model"
	"github.com/screenager/bpego/internal/reserved"
	"github.com/screenager/bpego/internal/vocab"
)

func newTestModel() *model.Model {
	r := reserved.New()
	v := vocab.New()
	for _, tok := range r.Values() {
		v.Add(tok)
	}
	v.Add("a")
	v.Add("b")
	v.Add("ab")
	rules := []model.Rule{{Left: "a", Right: "b"}}
	return model.New(r, v, rules)
}

func TestSaveLoadJSONRoundTrip(t *testing.T) {
	m := newTestModel()
	path := filepath.Join(t.TempDir(), "model.json")

	if err := model.Save(m, path, model.FormatJSON); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := model.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertModelsEqual(t, m, loaded)
}

func TestSaveLoadYAMLRoundTrip(t *testing.T) {
	m := newTestModel()
	path := filepath.Join(t.TempDir(), "model.yaml")

	if err := model.Save(m, path, model.FormatYAML); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := model.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertModelsEqual(t, m, loaded)
}

func assertModelsEqual(t *testing.T, want, got *model.Model) {
	t.Helper()
	if got.VocabSize() != want.VocabSize() {
		t.Fatalf("want vocab size %d, got %d", want.VocabSize(), got.VocabSize())
	}
	for _, tok := range want.Vocabulary() {
		wantIdx, _ := want.IndexOf(tok)
		gotIdx, ok := got.IndexOf(tok)
		if !ok {
			t.Fatalf("token %q missing after round trip", tok)
		}
		if gotIdx != wantIdx {
			t.Fatalf("token %q: want index %d, got %d", tok, wantIdx, gotIdx)
		}
	}
	wantRules := want.MergeRules()
	gotRules := got.MergeRules()
	if len(wantRules) != len(gotRules) {
		t.Fatalf("want %d merge rules, got %d", len(wantRules), len(gotRules))
	}
	for i := range wantRules {
		if wantRules[i] != gotRules[i] {
			t.Fatalf("rule %d: want %+v, got %+v", i, wantRules[i], gotRules[i])
		}
	}
	if got.Reserved().Unknown.Value != want.Reserved().Unknown.Value {
		t.Fatalf("reserved config mismatch after round trip")
	}
}

func TestLoadMalformedJSONFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := model.Load(path); err == nil {
		t.Fatal("want error loading malformed JSON, got nil")
	}
}
