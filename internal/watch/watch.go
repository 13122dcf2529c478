// Package watch retrains a model whenever its corpus directory changes,
// directly adapted from sift's directory watcher but driving the trainer
// instead of an incremental index update.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/screenager/bpego/internal/corpus"
	"github.com/screenager/bpego/internal/model"
	"github.com/screenager/bpego/internal/trainer"
)

// Watcher retrains outputPath from rootDir whenever a file under rootDir
// changes, debouncing rapid bursts of writes into a single retrain.
type Watcher struct {
	fw         *fsnotify.Watcher
	rootDir    string
	outputPath string
	iterations int
	opts       []trainer.Option
	onRetrain  func(*model.Model, error)
}

// New creates a Watcher that retrains a fresh model from rootDir's corpus
// into outputPath for the given iteration count whenever the directory
// changes. onRetrain, if non-nil, is invoked after every retrain attempt.
func New(rootDir, outputPath string, iterations int, onRetrain func(*model.Model, error), opts ...trainer.Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	return &Watcher{
		fw:         fw,
		rootDir:    rootDir,
		outputPath: outputPath,
		iterations: iterations,
		opts:       opts,
		onRetrain:  onRetrain,
	}, nil
}

// Watch adds rootDir (and all subdirectories) to the watch list and blocks,
// retraining on every debounced change, until done is closed or the fsnotify
// watcher closes its channels. Errors fsnotify reports while watching are
// logged to stderr and watching continues.
func (w *Watcher) Watch(done <-chan struct{}) error {
	if err := w.addDirRecursive(w.rootDir); err != nil {
		return err
	}

	var pending *time.Timer

	retrain := func() {
		fmt.Fprintf(os.Stderr, "[watch] retraining from %s\n", w.rootDir)
		source, err := corpus.LoadDir(w.rootDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[watch] load error: %v\n", err)
			if w.onRetrain != nil {
				w.onRetrain(nil, err)
			}
			return
		}
		m, err := trainer.Train(source, w.iterations, w.outputPath, "", w.opts...)
		if w.onRetrain != nil {
			w.onRetrain(m, err)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "[watch] train error: %v\n", err)
		}
	}

	for {
		select {
		case <-done:
			return w.fw.Close()

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			path := event.Name

			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(path); err == nil && fi.IsDir() {
					_ = w.addDirRecursive(path)
				}
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(500*time.Millisecond, retrain)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "[watch] error: %v\n", err)
		}
	}
}

// addDirRecursive adds dir and all non-hidden subdirectories to the watcher.
func (w *Watcher) addDirRecursive(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			if err := w.addDirRecursive(filepath.Join(dir, e.Name())); err != nil {
				fmt.Fprintf(os.Stderr, "[watch] skip dir: %v\n", err)
			}
		}
	}
	return nil
}
