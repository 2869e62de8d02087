// Package sqlite provides a SQLite-backed catalog and ledger backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MEKXH/achievebot/internal/achievement"
	"github.com/MEKXH/achievebot/internal/store/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// DefaultFileName is the database file created under the data dir.
const DefaultFileName = "achievebot.db"

// Store persists achievements and grants in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection keeps appends strictly ordered
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadAchievements returns the catalog in insertion order.
func (s *Store) LoadAchievements(ctx context.Context) ([]achievement.Achievement, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT name, description, criteria FROM achievements ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	var out []achievement.Achievement
	for rows.Next() {
		var a achievement.Achievement
		if err := rows.Scan(&a.Name, &a.Description, &a.Criteria); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate achievements: %w", err)
	}
	return out, nil
}

// AppendAchievement inserts one catalog row.
func (s *Store) AppendAchievement(ctx context.Context, a achievement.Achievement) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO achievements (name, name_key, description, criteria) VALUES (?, ?, ?, ?)`,
		a.Name, a.Key(), a.Description, a.Criteria,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return achievement.ErrAlreadyExists
		}
		return fmt.Errorf("insert achievement: %w", err)
	}
	return nil
}

// LoadGrants returns the ledger in insertion order.
func (s *Store) LoadGrants(ctx context.Context) ([]achievement.Grant, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT user, achievement FROM grants ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close()

	var out []achievement.Grant
	for rows.Next() {
		var g achievement.Grant
		if err := rows.Scan(&g.User, &g.Achievement); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	return out, nil
}

// AppendGrant inserts one ledger row.
func (s *Store) AppendGrant(ctx context.Context, g achievement.Grant) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO grants (user, achievement, achievement_key) VALUES (?, ?, ?)`,
		g.User, g.Achievement, achievement.NameKey(g.Achievement),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return achievement.ErrAlreadyGranted
		}
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
