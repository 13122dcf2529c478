// Package trainer implements the Trainer: the fork-join hot loop that
// repeatedly finds the most frequent adjacent symbol pair in a corpus and
// promotes it into a new vocabulary token.
package trainer

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/screenager/bpego/internal/bpeerr"
	"github.com/screenager/bpego/internal/model"
	"github.com/screenager/bpego/internal/reserved"
	"github.com/screenager/bpego/internal/vocab"
)

// pairKey identifies an adjacent symbol pair by vocabulary index, so
// counting never has to hash or compare strings in the hot loop.
type pairKey struct {
	A, B int
}

// Train runs BPE training over source for the given number of iterations,
// seeding a fresh vocabulary from the Reserved Token Table (or resuming from
// the snapshot at startPath, if non-empty), and writes snapshots to
// outputPath as it goes. It returns a fully valid *model.Model even on an
// empty corpus or a cancelled context, alongside a matching error; when the
// resume snapshot cannot be loaded or rebuilt, the model is nil.
func Train(source string, iterations int, outputPath, startPath string, opts ...Option) (*model.Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		r      *reserved.Table
		v      *vocab.Index
		rules  []model.Rule
		stream []int
		err    error
	)

	if startPath != "" {
		r, v, rules, stream, err = resumeInit(startPath, source)
		if err != nil {
			return nil, err
		}
	} else {
		r, v, stream = freshInit(source)
	}

	if len(stream) < 2 {
		m := model.New(r, v, rules)
		if err := model.Save(m, outputPath, cfg.format); err != nil {
			return m, fmt.Errorf("save empty-corpus snapshot: %w", err)
		}
		return m, bpeerr.ErrEmptyCorpus
	}

	for iter := 1; iter <= iterations; iter++ {
		select {
		case <-cfg.ctx.Done():
			m := model.New(r, v, rules)
			if saveErr := model.Save(m, outputPath, cfg.format); saveErr != nil {
				return m, fmt.Errorf("save snapshot on cancellation (original error %v): %w", cfg.ctx.Err(), saveErr)
			}
			return m, cfg.ctx.Err()
		default:
		}

		counts, err := countPairs(cfg.ctx, stream, cfg.chunkSize, cfg.workers)
		if err != nil {
			m := model.New(r, v, rules)
			if saveErr := model.Save(m, outputPath, cfg.format); saveErr != nil {
				return m, fmt.Errorf("save snapshot after count error (original error %v): %w", err, saveErr)
			}
			return m, err
		}
		if len(counts) == 0 {
			break
		}

		best, bestCount := argmax(counts)
		leftTok, _ := v.TokenOf(best.A)
		rightTok, _ := v.TokenOf(best.B)
		merged := leftTok + rightTok
		newIdx := v.Add(merged)
		rules = append(rules, model.Rule{Left: leftTok, Right: rightTok})

		stream = rewrite(stream, best, newIdx)

		snapshotHit := iter%cfg.snapshotEvery == 0
		if snapshotHit {
			m := model.New(r, v, rules)
			if err := model.Save(m, outputPath, cfg.format); err != nil {
				return m, fmt.Errorf("save periodic snapshot at iteration %d: %w", iter, err)
			}
		}

		if cfg.progress != nil {
			cfg.progress(Progress{
				Iteration:   iter,
				Iterations:  iterations,
				VocabSize:   v.Len(),
				BestPair:    [2]string{leftTok, rightTok},
				BestCount:   bestCount,
				StreamLen:   len(stream),
				SnapshotHit: snapshotHit,
			})
		}

		if len(stream) < 2 {
			break
		}
	}

	m := model.New(r, v, rules)
	if err := model.Save(m, outputPath, cfg.format); err != nil {
		return m, fmt.Errorf("save final snapshot: %w", err)
	}
	return m, nil
}

// freshInit builds the reserved-seeded vocabulary and the initial symbol
// stream from raw source text: the text is split on whitespace into words,
// each word is lowercased and exploded into per-rune symbols, and a single
// reserved space index is interleaved between consecutive words (never
// before the first or after the last).
func freshInit(source string) (*reserved.Table, *vocab.Index, []int) {
	r := reserved.New()
	v := vocab.New()
	for _, tok := range r.Values() {
		v.Add(tok)
	}
	spaceIdx := v.Add(r.Space.Value)

	words := strings.Fields(source)
	stream := make([]int, 0, len(source))
	for wi, word := range words {
		for _, ru := range word {
			stream = append(stream, v.Add(string(unicode.ToLower(ru))))
		}
		if wi != len(words)-1 {
			stream = append(stream, spaceIdx)
		}
	}
	return r, v, stream
}

// resumeInit loads an existing snapshot and rebuilds the symbol stream from
// source the same way freshInit does (whitespace-split words, single
// interleaved space index), but looks each character up in the already
// loaded vocabulary instead of growing it: a character absent from the
// vocabulary fails with ErrUnknownCharacter rather than being merged away.
func resumeInit(startPath, source string) (*reserved.Table, *vocab.Index, []model.Rule, []int, error) {
	m, err := model.Load(startPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load resume snapshot: %w", err)
	}
	r := m.Reserved()
	v := m.Vocab()
	rules := m.MergeRules()

	spaceIdx, ok := v.IndexOf(r.Space.Value)
	if !ok {
		return nil, nil, nil, nil, fmt.Errorf("%w: reserved space token missing from loaded vocabulary", bpeerr.ErrParse)
	}

	words := strings.Fields(source)
	stream := make([]int, 0, len(source))
	for wi, word := range words {
		for _, ru := range word {
			lower := string(unicode.ToLower(ru))
			idx, ok := v.IndexOf(lower)
			if !ok {
				return nil, nil, nil, nil, fmt.Errorf("%w: %q", bpeerr.ErrUnknownCharacter, lower)
			}
			stream = append(stream, idx)
		}
		if wi != len(words)-1 {
			stream = append(stream, spaceIdx)
		}
	}
	return r, v, rules, stream, nil
}

// countPairs partitions stream into chunks of chunkSize and counts adjacent
// pairs concurrently. Chunk ranges are boundary-pair inclusive: chunk k
// counts every pair (stream[i], stream[i+1]) for i in [lo, hi), where hi is
// the chunk's upper element bound extended by one so the pair that straddles
// the chunk boundary is counted exactly once, by the chunk that owns its
// left element.
func countPairs(ctx context.Context, stream []int, chunkSize, workers int) (map[pairKey]int, error) {
	n := len(stream)
	if n < 2 {
		return nil, nil
	}
	nChunks := (n + chunkSize - 1) / chunkSize
	partials := make([]map[pairKey]int, nChunks)

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for c := 0; c < nChunks; c++ {
		c := c
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			lo := c * chunkSize
			hi := lo + chunkSize
			if hi > n-1 {
				hi = n - 1
			}
			local := make(map[pairKey]int)
			for i := lo; i < hi; i++ {
				local[pairKey{stream[i], stream[i+1]}]++
			}
			partials[c] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := make(map[pairKey]int)
	for _, local := range partials {
		for k, cnt := range local {
			total[k] += cnt
		}
	}
	return total, nil
}

// argmax picks the most frequent pair in a single pass. Ties break on
// ascending (A, B) index order so the result never depends on Go's
// randomized map iteration, without needing a full sort of every distinct
// pair on each training iteration.
func argmax(counts map[pairKey]int) (pairKey, int) {
	var best pairKey
	bestCount := -1
	first := true
	for k, cnt := range counts {
		switch {
		case first:
			best, bestCount, first = k, cnt, false
		case cnt > bestCount:
			best, bestCount = k, cnt
		case cnt == bestCount && less(k, best):
			best = k
		}
	}
	return best, bestCount
}

func less(a, b pairKey) bool {
	if a.A != b.A {
		return a.A < b.A
	}
	return a.B < b.B
}

// rewrite produces a fresh stream with every non-overlapping left-to-right
// occurrence of pair replaced by newIdx. A single forward pass with a
// two-pointer scan is sufficient since replaced pairs never re-overlap: once
// consumed, both positions advance past the match.
func rewrite(stream []int, pair pairKey, newIdx int) []int {
	out := make([]int, 0, len(stream))
	i := 0
	for i < len(stream) {
		if i+1 < len(stream) && stream[i] == pair.A && stream[i+1] == pair.B {
			out = append(out, newIdx)
			i += 2
			continue
		}
		out = append(out, stream[i])
		i++
	}
	return out
}
