// Package store holds the achievement catalog and the grant ledger.
//
// Both stores keep an in-memory index loaded from a durable Backend and
// serialize writers with a per-store lock: the uniqueness check and the
// durable append of Add and Grant run as one critical section, and the
// index only changes after the append succeeded.
package store

import (
	"context"

	"github.com/MEKXH/achievebot/internal/achievement"
)

// CatalogBackend is the durable medium behind a Catalog.
type CatalogBackend interface {
	// LoadAchievements returns every stored record in insertion order.
	LoadAchievements(ctx context.Context) ([]achievement.Achievement, error)
	// AppendAchievement durably appends one record. On error nothing is written.
	AppendAchievement(ctx context.Context, a achievement.Achievement) error
}

// LedgerBackend is the durable medium behind a Ledger.
type LedgerBackend interface {
	// LoadGrants returns every stored record in insertion order.
	LoadGrants(ctx context.Context) ([]achievement.Grant, error)
	// AppendGrant durably appends one record. On error nothing is written.
	AppendGrant(ctx context.Context, g achievement.Grant) error
}

// Backend serves both stores from one medium.
type Backend interface {
	CatalogBackend
	LedgerBackend
	Close() error
}
