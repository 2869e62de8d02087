// Package filestore keeps the catalog and the ledger as line-oriented,
// append-only text files.
package filestore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MEKXH/achievebot/internal/achievement"
)

const (
	// CatalogFile holds one "<name> : <description>[ : <criteria>]" record per line.
	CatalogFile = "achievements"
	// LedgerFile holds one "<user> -> <achievement>" record per line.
	LedgerFile = "users"

	fileMode = 0644
	dirMode  = 0755
)

// Store is a file-backed store.Backend.
type Store struct {
	catalogPath string
	ledgerPath  string

	catalogMu sync.Mutex
	ledgerMu  sync.Mutex
}

// Open creates dir if needed and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		catalogPath: filepath.Join(dir, CatalogFile),
		ledgerPath:  filepath.Join(dir, LedgerFile),
	}, nil
}

// Close is a no-op; files are opened per operation.
func (s *Store) Close() error { return nil }

// LoadAchievements reads the catalog file. Unparsable lines are logged and skipped.
func (s *Store) LoadAchievements(ctx context.Context) ([]achievement.Achievement, error) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()

	var out []achievement.Achievement
	err := readLines(ctx, s.catalogPath, func(lineNo int, line string) {
		a, err := achievement.ParseAchievement(line)
		if err != nil {
			slog.Warn("skipping catalog record", "path", s.catalogPath, "line", lineNo, "error", err)
			return
		}
		out = append(out, a)
	})
	return out, err
}

// AppendAchievement appends one catalog record.
func (s *Store) AppendAchievement(ctx context.Context, a achievement.Achievement) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	return appendLine(ctx, s.catalogPath, achievement.FormatAchievement(a))
}

// LoadGrants reads the ledger file. Unparsable lines are logged and skipped.
func (s *Store) LoadGrants(ctx context.Context) ([]achievement.Grant, error) {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	var out []achievement.Grant
	err := readLines(ctx, s.ledgerPath, func(lineNo int, line string) {
		g, err := achievement.ParseGrant(line)
		if err != nil {
			slog.Warn("skipping ledger record", "path", s.ledgerPath, "line", lineNo, "error", err)
			return
		}
		out = append(out, g)
	})
	return out, err
}

// AppendGrant appends one ledger record.
func (s *Store) AppendGrant(ctx context.Context, g achievement.Grant) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()
	return appendLine(ctx, s.ledgerPath, achievement.FormatGrant(g))
}

// readLines calls fn for every non-blank line. A missing file reads as empty.
// bufio.Reader is used instead of Scanner so no line length limit applies.
func readLines(ctx context.Context, path string, fn func(lineNo int, line string)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	lineNo := 0
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lineNo++
			if trimmed := strings.TrimRight(line, " \t\r\n"); trimmed != "" {
				fn(lineNo, trimmed)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
	}
}

// appendLine writes line plus a newline with a single write and fsyncs it.
// If anything fails after the file was opened it is truncated back to its
// previous size, so a failed append never leaves a partial record behind.
func appendLine(ctx context.Context, path, line string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, fileMode)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	size := info.Size()

	record := line + "\n"
	if size > 0 {
		// a hand-edited file may lack the final newline
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return fmt.Errorf("read %s tail: %w", filepath.Base(path), err)
		}
		if last[0] != '\n' {
			record = "\n" + record
		}
	}

	defer func() {
		if err == nil {
			return
		}
		if truncErr := f.Truncate(size); truncErr != nil {
			slog.Error("rollback of partial append failed", "path", path, "error", truncErr)
		}
	}()

	n, err := f.WriteString(record)
	if err != nil {
		return fmt.Errorf("append %s: %w", filepath.Base(path), err)
	}
	if n != len(record) {
		return fmt.Errorf("append %s: %w", filepath.Base(path), io.ErrShortWrite)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	return nil
}
