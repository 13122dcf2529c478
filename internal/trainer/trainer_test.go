package trainer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/screenager/bpego/internal/bpeerr"
)

func TestTrainSingleIterationMostFrequentPair(t *testing.T) {
	out := filepath.Join(t.TempDir(), "model.json")
	m, err := Train("ab ab ab", 1, out, "", WithSnapshotEvery(1))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	rules := m.MergeRules()
	if len(rules) != 1 {
		t.Fatalf("want 1 merge rule, got %d: %+v", len(rules), rules)
	}
	if rules[0].Left != "a" || rules[0].Right != "b" {
		t.Fatalf("want merge (a,b), got (%q,%q)", rules[0].Left, rules[0].Right)
	}
	if _, ok := m.IndexOf("ab"); !ok {
		t.Fatal("expected \"ab\" in vocabulary after merge")
	}
}

func TestTrainTwoIterationsChainedMerge(t *testing.T) {
	out := filepath.Join(t.TempDir(), "model.json")
	m, err := Train("aaa", 2, out, "")
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	rules := m.MergeRules()
	if len(rules) != 2 {
		t.Fatalf("want 2 merge rules, got %d: %+v", len(rules), rules)
	}
	if rules[0].Left != "a" || rules[0].Right != "a" {
		t.Fatalf("first merge want (a,a), got (%q,%q)", rules[0].Left, rules[0].Right)
	}
	if rules[1].Left != "aa" || rules[1].Right != "a" {
		t.Fatalf("second merge want (aa,a), got (%q,%q)", rules[1].Left, rules[1].Right)
	}
	if _, ok := m.IndexOf("aaa"); !ok {
		t.Fatal("expected \"aaa\" in vocabulary after two merges")
	}
}

func TestTrainEmptyCorpusReturnsValidModelAndSentinel(t *testing.T) {
	out := filepath.Join(t.TempDir(), "model.json")
	m, err := Train("", 5, out, "")
	if err == nil {
		t.Fatal("want ErrEmptyCorpus, got nil")
	}
	if !errors.Is(err, bpeerr.ErrEmptyCorpus) {
		t.Fatalf("want ErrEmptyCorpus, got %v", err)
	}
	if m == nil {
		t.Fatal("want non-nil model even on empty corpus")
	}
	if m.VocabSize() == 0 {
		t.Fatal("want reserved tokens seeded even on empty corpus")
	}
}

func TestTrainStopsEarlyWhenStreamExhausted(t *testing.T) {
	out := filepath.Join(t.TempDir(), "model.json")
	// "aa" can only ever produce one merge; further iterations have
	// nothing left to count.
	m, err := Train("aa", 10, out, "")
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(m.MergeRules()) != 1 {
		t.Fatalf("want exactly 1 merge rule, got %d", len(m.MergeRules()))
	}
}

func TestFreshInitCollapsesWhitespaceRunsToOneSpaceSymbol(t *testing.T) {
	r, v, stream := freshInit("ab\n\n  ab \tab")
	spaceIdx, ok := v.IndexOf(r.Space.Value)
	if !ok {
		t.Fatal("expected reserved space token in vocabulary")
	}
	aIdx, _ := v.IndexOf("a")
	bIdx, _ := v.IndexOf("b")

	want := []int{aIdx, bIdx, spaceIdx, aIdx, bIdx, spaceIdx, aIdx, bIdx}
	if !intsEqual(stream, want) {
		t.Fatalf("want %v, got %v (newline/carriage/duplicate-space symbols must never appear)", want, stream)
	}
}

func TestResumeInitRebuildsAtCharacterLevelNotGreedyMerge(t *testing.T) {
	out := filepath.Join(t.TempDir(), "model.json")
	seed, err := Train("the the the", 1, out, "")
	if err != nil {
		t.Fatalf("seed Train: %v", err)
	}
	if _, ok := seed.IndexOf("th"); !ok {
		t.Fatal("expected seed training to have merged \"th\"")
	}

	_, v, _, stream, err := resumeInit(out, "the")
	if err != nil {
		t.Fatalf("resumeInit: %v", err)
	}
	tIdx, ok := v.IndexOf("t")
	if !ok {
		t.Fatal("expected \"t\" in resumed vocabulary")
	}
	hIdx, ok := v.IndexOf("h")
	if !ok {
		t.Fatal("expected \"h\" in resumed vocabulary")
	}
	eIdx, ok := v.IndexOf("e")
	if !ok {
		t.Fatal("expected \"e\" in resumed vocabulary")
	}

	want := []int{tIdx, hIdx, eIdx}
	if !intsEqual(stream, want) {
		t.Fatalf("resume must rebuild character-by-character, ignoring existing merges: want %v, got %v", want, stream)
	}
}

func TestResumeInitUnknownCharacterFails(t *testing.T) {
	out := filepath.Join(t.TempDir(), "model.json")
	if _, err := Train("abc abc", 1, out, ""); err != nil {
		t.Fatalf("seed Train: %v", err)
	}

	_, _, _, _, err := resumeInit(out, "abc#abc")
	if !errors.Is(err, bpeerr.ErrUnknownCharacter) {
		t.Fatalf("want ErrUnknownCharacter, got %v", err)
	}
}

func TestArgmaxIsDeterministicUnderTies(t *testing.T) {
	counts := map[pairKey]int{
		{A: 3, B: 1}: 5,
		{A: 1, B: 2}: 5,
		{A: 2, B: 9}: 5,
	}
	best, _ := argmax(counts)
	if best != (pairKey{A: 1, B: 2}) {
		t.Fatalf("want lexicographically smallest tied pair {1,2}, got %+v", best)
	}
}

func TestRewriteHandlesAdjacentOverlaps(t *testing.T) {
	// stream: f s s -> merging (s,s) should leave f then merged(s,s).
	out := rewrite([]int{10, 20, 20}, pairKey{A: 20, B: 20}, 99)
	want := []int{10, 99}
	if !intsEqual(out, want) {
		t.Fatalf("want %v, got %v", want, out)
	}
}

func TestRewriteNonOverlappingFourSymbolPattern(t *testing.T) {
	// stream: f s f s, merging (f,s) must not let the second match consume
	// bytes already claimed by the first.
	out := rewrite([]int{1, 2, 1, 2}, pairKey{A: 1, B: 2}, 99)
	want := []int{99, 99}
	if !intsEqual(out, want) {
		t.Fatalf("want %v, got %v", want, out)
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
