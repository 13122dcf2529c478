// Package corpus loads training text from disk. It sits outside the core
// trainer/codec boundary: the core only ever sees a string.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// LoadDir walks rootDir recursively, skipping hidden entries, and
// concatenates every regular file's contents in directory-listing order,
// joined by a single space so no two files' text runs together.
func LoadDir(rootDir string) (string, error) {
	var paths []string
	if err := walkDir(rootDir, func(path string) error {
		paths = append(paths, path)
		return nil
	}); err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.Write(data)
	}
	return sb.String(), nil
}

// walkDir walks rootDir recursively, calling fn for each regular file.
// Hidden entries (dotfiles, dot-directories) are skipped.
func walkDir(rootDir string, fn func(string) error) error {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return fmt.Errorf("readdir %s: %w", rootDir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(rootDir, name)
		if entry.IsDir() {
			if err := walkDir(full, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(full); err != nil {
			return err
		}
	}
	return nil
}

// Clean lowercases s and collapses every run of whitespace to a single
// space, trimming leading and trailing whitespace. It is deliberately more
// aggressive than codec.CleanText: a corpus loader is preparing raw,
// possibly messy documents for training, not normalizing a single string
// the encoder is about to match against a trie.
func Clean(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	lastWasSpace := true // swallow leading whitespace
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				sb.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
		lastWasSpace = false
	}
	return strings.TrimRight(sb.String(), " ")
}
