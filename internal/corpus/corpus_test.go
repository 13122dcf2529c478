package corpus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/screenager/bpego/internal/corpus"
)

func TestLoadDirConcatenatesFilesWithSpace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	writeFile(t, filepath.Join(dir, "b.txt"), "world")

	got, err := corpus.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("want %q, got %q", "hello world", got)
	}
}

func TestLoadDirSkipsHiddenEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "visible.txt"), "a")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "b")
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, ".git", "config"), "c")

	got, err := corpus.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if got != "a" {
		t.Fatalf("want only visible file content %q, got %q", "a", got)
	}
}

func TestLoadDirRecursesIntoSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writeFile(t, filepath.Join(sub, "nested.txt"), "nested")

	got, err := corpus.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if got != "nested" {
		t.Fatalf("want %q, got %q", "nested", got)
	}
}

func TestCleanCollapsesWhitespaceAndLowercases(t *testing.T) {
	got := corpus.Clean("  Hello\n\nWORLD   foo\tbar  ")
	want := "hello world foo bar"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
