package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/screenager/bpego"
	"github.com/screenager/bpego/internal/corpus"
	"github.com/screenager/bpego/internal/model"
	"github.com/screenager/bpego/internal/tui"
	"github.com/screenager/bpego/internal/watch"
)

var (
	defaultOutput        = "model.json"
	defaultIterations    = 1000
	defaultSnapshotEvery = 50
	defaultChunkSize     = 4096
)

func main() {
	root := &cobra.Command{
		Use:   "bpe",
		Short: "Byte-pair-encoding trainer and tokenizer",
		Long:  "bpe — trains a byte-pair-encoding vocabulary from a text corpus and encodes/decodes text against it.",
	}

	var cfg struct {
		Output        string `toml:"output"`
		Iterations    int    `toml:"iterations"`
		SnapshotEvery int    `toml:"snapshot-every"`
		ChunkSize     int    `toml:"chunk-size"`
	}
	if b, err := os.ReadFile(".bpe.toml"); err == nil {
		if err := toml.Unmarshal(b, &cfg); err == nil {
			if cfg.Output != "" {
				defaultOutput = cfg.Output
			}
			if cfg.Iterations > 0 {
				defaultIterations = cfg.Iterations
			}
			if cfg.SnapshotEvery > 0 {
				defaultSnapshotEvery = cfg.SnapshotEvery
			}
			if cfg.ChunkSize > 0 {
				defaultChunkSize = cfg.ChunkSize
			}
		}
	}

	var (
		output        string
		iterations    int
		snapshotEvery int
		chunkSize     int
		workers       int
		startFrom     string
		yamlFormat    bool
	)
	root.PersistentFlags().StringVar(&output, "output", defaultOutput, "path to write the trained model snapshot")
	root.PersistentFlags().IntVar(&iterations, "iterations", defaultIterations, "number of merge iterations")
	root.PersistentFlags().IntVar(&snapshotEvery, "snapshot-every", defaultSnapshotEvery, "iterations between periodic snapshots")
	root.PersistentFlags().IntVar(&chunkSize, "chunk-size", defaultChunkSize, "symbol-stream chunk size for parallel pair counting")
	root.PersistentFlags().IntVar(&workers, "workers", 0, "counting worker cap (0 = GOMAXPROCS)")
	root.PersistentFlags().StringVar(&startFrom, "resume", "", "resume training from an existing snapshot")
	root.PersistentFlags().BoolVar(&yamlFormat, "yaml", false, "write snapshots as YAML instead of JSON")

	format := func() bpe.Format {
		if yamlFormat {
			return bpe.FormatYAML
		}
		return bpe.FormatJSON
	}

	progressPrinter := func(runID string) func(p bpe.Progress) {
		started := false
		return func(p bpe.Progress) {
			if !started {
				fmt.Fprintf(os.Stderr, "run %s\n", runID)
				started = true
			}
			marker := "  "
			if p.SnapshotHit {
				marker = "* "
			}
			fmt.Fprintf(os.Stderr, "\r%s[%d/%d] vocab=%d merged=(%q,%q) x%d stream=%s",
				marker, p.Iteration, p.Iterations, p.VocabSize,
				p.BestPair[0], p.BestPair[1], p.BestCount, humanize.Comma(int64(p.StreamLen)))
			if p.Iteration == p.Iterations {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	trainOpts := func(runID string) []bpe.TrainOption {
		return []bpe.TrainOption{
			bpe.WithChunkSize(chunkSize),
			bpe.WithWorkers(workers),
			bpe.WithSnapshotEvery(snapshotEvery),
			bpe.WithFormat(format()),
			bpe.WithProgress(progressPrinter(runID)),
		}
	}

	// ---- bpe train <source...> --------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "train <file-or-dir> [file-or-dir...]",
		Short: "Train a model from one or more text files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			source, err := loadSources(args)
			if err != nil {
				return err
			}

			runID := uuid.New().String()
			opts := append(trainOpts(runID), bpe.WithContext(ctx))
			m, err := bpe.Train(source, iterations, output, startFrom, opts...)
			if err != nil {
				if isInterrupted(err) {
					fmt.Fprintln(os.Stderr, "\ninterrupted — last snapshot preserved")
					return nil
				}
				return err
			}
			fmt.Fprintf(os.Stderr, "done. vocabulary size %d, %d merge rules, written to %s\n",
				bpe.VocabSize(m), len(bpe.MergeRules(m)), output)
			return nil
		},
	})

	// ---- bpe watch <dir> ---------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "watch <dir>",
		Short: "Train, then retrain whenever the corpus directory changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dir := args[0]
			runID := uuid.New().String()
			onRetrain := func(m *model.Model, err error) {
				if err != nil {
					fmt.Fprintf(os.Stderr, "[watch] retrain failed: %v\n", err)
					return
				}
				fmt.Fprintf(os.Stderr, "[watch] retrained: vocabulary size %d\n", m.VocabSize())
			}

			w, err := watch.New(dir, output, iterations, onRetrain, trainOpts(runID)...)
			if err != nil {
				return err
			}

			source, err := corpus.LoadDir(dir)
			if err != nil {
				return err
			}
			onRetrain(bpe.Train(source, iterations, output, "", append(trainOpts(runID), bpe.WithContext(ctx))...))

			done := make(chan struct{})
			go func() {
				<-ctx.Done()
				close(done)
			}()
			return w.Watch(done)
		},
	})

	// ---- bpe encode <text> --------------------------------------------------
	var encodeJSON bool
	encodeCmd := &cobra.Command{
		Use:   "encode <text>",
		Short: "Encode text into vocabulary indices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bpe.Load(output)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			indices := bpe.Encode(m, text)
			if encodeJSON {
				j, err := json.Marshal(indices)
				if err != nil {
					return fmt.Errorf("marshal json: %w", err)
				}
				fmt.Println(string(j))
				return nil
			}
			for _, idx := range indices {
				fmt.Printf("%d ", idx)
			}
			fmt.Println()
			return nil
		},
	}
	encodeCmd.Flags().BoolVar(&encodeJSON, "json", false, "output indices as a JSON array")
	root.AddCommand(encodeCmd)

	// ---- bpe decode <index...> ----------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "decode <index> [index...]",
		Short: "Decode vocabulary indices back into text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bpe.Load(output)
			if err != nil {
				return err
			}
			indices := make([]int, len(args))
			for i, a := range args {
				var idx int
				if _, err := fmt.Sscanf(a, "%d", &idx); err != nil {
					return fmt.Errorf("parse index %q: %w", a, err)
				}
				indices[i] = idx
			}
			text, err := bpe.Decode(m, indices)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	})

	// ---- bpe inspect ---------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "inspect",
		Short: "Show model statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bpe.Load(output)
			if err != nil {
				return err
			}
			info, statErr := os.Stat(output)
			fmt.Printf("vocabulary size: %d\n", bpe.VocabSize(m))
			fmt.Printf("merge rules:     %d\n", len(bpe.MergeRules(m)))
			fmt.Printf("unknown token:   %q\n", m.Reserved().Unknown.Value)
			fmt.Printf("eos token:       %q\n", m.Reserved().EOS.Value)
			if statErr == nil {
				fmt.Printf("snapshot size:   %s\n", humanize.Bytes(uint64(info.Size())))
				fmt.Printf("last modified:   %s\n", humanize.Time(info.ModTime()))
			}
			return nil
		},
	})

	// ---- bpe tui ---------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive encode/decode playground",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bpe.Load(output)
			if err != nil {
				return err
			}
			p := tea.NewProgram(tui.New(m), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	})

	// ---- bpe bench ------------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "bench",
		Short: "Benchmark encode throughput on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bpe.Load(output)
			if err != nil {
				return err
			}
			samples := []struct {
				label string
				text  string
			}{
				{"9 words", "the quick brown fox jumps over the lazy dog"},
				{"200 words", strings.Repeat("the quick brown fox ", 50)},
				{"180 words", strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)},
			}
			fmt.Printf("%-20s  %12s  %14s\n", "text size", "elapsed", "tokens/sec")
			fmt.Println(strings.Repeat("─", 50))
			for _, s := range samples {
				start := time.Now()
				indices := bpe.Encode(m, s.text)
				elapsed := time.Since(start)
				rate := float64(len(indices)) / elapsed.Seconds()
				fmt.Printf("%-20s  %12s  %14s\n", s.label, elapsed.Round(time.Microsecond), humanize.Comma(int64(rate)))
			}
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSources concatenates every argument's content: directories are walked
// recursively via corpus.LoadDir, plain files are read directly.
func loadSources(args []string) (string, error) {
	var parts []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", a, err)
		}
		if info.IsDir() {
			text, err := corpus.LoadDir(a)
			if err != nil {
				return "", err
			}
			parts = append(parts, text)
			continue
		}
		data, err := os.ReadFile(a)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", a, err)
		}
		parts = append(parts, string(data))
	}
	return strings.Join(parts, " "), nil
}

// isInterrupted returns true if err indicates a context cancellation.
func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
