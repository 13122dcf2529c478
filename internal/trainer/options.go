package trainer

import (
	"context"
	"runtime"

	"github.com/screenager/bpego/internal/model"
)

// Progress describes the state of a training run at the end of one
// iteration, passed to the WithProgress callback.
type Progress struct {
	Iteration   int
	Iterations  int
	VocabSize   int
	BestPair    [2]string
	BestCount   int
	StreamLen   int
	SnapshotHit bool
}

// Option configures a Train call. Options follow the functional-options
// shape used throughout the rest of this module (see cmd/bpe's flag
// wiring for how they are assembled from CLI input).
type Option func(*config)

type config struct {
	chunkSize     int
	workers       int
	snapshotEvery int
	format        model.Format
	progress      func(Progress)
	ctx           context.Context
}

func defaultConfig() *config {
	return &config{
		chunkSize:     4096,
		workers:       runtime.GOMAXPROCS(0),
		snapshotEvery: 50,
		format:        model.FormatJSON,
		ctx:           context.Background(),
	}
}

// WithChunkSize sets the symbol-stream chunk size used for parallel pair
// counting. Must be > 0; values below a few hundred mostly add scheduling
// overhead without shortening wall time.
func WithChunkSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithWorkers caps the number of concurrent counting goroutines, overriding
// the GOMAXPROCS default. Zero or negative is ignored: the pool always has
// some bound, it is never left unset.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithSnapshotEvery sets how many iterations elapse between periodic
// snapshots. A final snapshot is always written regardless of this value.
func WithSnapshotEvery(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.snapshotEvery = n
		}
	}
}

// WithFormat selects the on-disk snapshot encoding.
func WithFormat(f model.Format) Option {
	return func(c *config) { c.format = f }
}

// WithProgress registers a callback invoked once per completed iteration.
func WithProgress(fn func(Progress)) Option {
	return func(c *config) { c.progress = fn }
}

// WithContext makes the run cancellable; counting workers check ctx between
// chunks and the loop checks it between iterations.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
