// Package corpusstore caches loaded corpus files in a sqlite database keyed
// by path and modification time, so repeated training runs over a large,
// mostly-unchanged directory tree skip re-reading files the filesystem
// hasn't touched. This mirrors the query-cache table clipilot keeps
// alongside its handlers, applied here to file content instead of LLM
// responses.
package corpusstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store is a sqlite-backed cache of file content keyed by absolute path and
// modification time.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a corpus cache database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus store %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS file_cache (
			path       TEXT PRIMARY KEY,
			mtime_unix INTEGER NOT NULL,
			content    TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure corpus store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetOrLoad returns path's content, either from cache (if the file's
// modification time matches the cached entry) or by reading and caching it.
func (s *Store) GetOrLoad(path string) (string, error) {
	content, _, err := s.getOrLoad(path)
	return content, err
}

// getOrLoad is GetOrLoad plus whether the result came from cache, so callers
// that need both the content and a hit/miss count (LoadDir) don't have to
// re-stat the file and re-query the cache a second time to find out.
func (s *Store) getOrLoad(path string) (content string, hit bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", false, fmt.Errorf("stat %s: %w", abs, err)
	}
	mtime := info.ModTime().Unix()

	var cached string
	var cachedMtime int64
	err = s.db.QueryRow("SELECT content, mtime_unix FROM file_cache WHERE path = ?", abs).Scan(&cached, &cachedMtime)
	if err == nil && cachedMtime == mtime {
		return cached, true, nil
	}
	if err != nil && err != sql.ErrNoRows {
		return "", false, fmt.Errorf("query corpus store: %w", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", abs, err)
	}
	text := string(data)

	if _, err := s.db.Exec(
		"INSERT OR REPLACE INTO file_cache (path, mtime_unix, content) VALUES (?, ?, ?)",
		abs, mtime, text,
	); err != nil {
		return "", false, fmt.Errorf("cache %s: %w", abs, err)
	}
	return text, false, nil
}

// LoadDir walks rootDir like corpus.LoadDir but serves each file through the
// cache, and reports how many files were served from cache versus read
// fresh.
func (s *Store) LoadDir(rootDir string) (text string, cacheHits, cacheMisses int, err error) {
	var paths []string
	if err := walkDir(rootDir, func(path string) error {
		paths = append(paths, path)
		return nil
	}); err != nil {
		return "", 0, 0, err
	}

	var sb strings.Builder
	for i, path := range paths {
		content, hit, err := s.getOrLoad(path)
		if err != nil {
			return "", 0, 0, err
		}
		if hit {
			cacheHits++
		} else {
			cacheMisses++
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(content)
	}
	return sb.String(), cacheHits, cacheMisses, nil
}

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
