package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MEKXH/achievebot/internal/achievement"
)

type grantKey struct {
	user string
	name string
}

// Ledger records which user earned which achievement.
type Ledger struct {
	backend LedgerBackend

	mu     sync.RWMutex
	byUser map[string][]string
	earned map[grantKey]struct{}
	total  int
}

// OpenLedger loads the ledger from backend.
// Repeated (user, achievement) records are ignored.
func OpenLedger(ctx context.Context, backend LedgerBackend) (*Ledger, error) {
	if backend == nil {
		return nil, fmt.Errorf("ledger backend is required")
	}
	records, err := backend.LoadGrants(ctx)
	if err != nil {
		return nil, &achievement.StorageError{Op: "load ledger", Err: err}
	}

	l := &Ledger{
		backend: backend,
		byUser:  make(map[string][]string),
		earned:  make(map[grantKey]struct{}, len(records)),
	}
	for _, g := range records {
		if !l.record(g) {
			slog.Warn("duplicate ledger record ignored", "user", g.User, "achievement", g.Achievement)
		}
	}
	return l, nil
}

// record indexes g and reports whether it was new. Callers hold mu or own l exclusively.
func (l *Ledger) record(g achievement.Grant) bool {
	key := grantKey{user: g.User, name: achievement.NameKey(g.Achievement)}
	if _, ok := l.earned[key]; ok {
		return false
	}
	l.earned[key] = struct{}{}
	l.byUser[g.User] = append(l.byUser[g.User], g.Achievement)
	l.total++
	return true
}

// HasEarned reports whether user holds the achievement. User matching is exact,
// achievement matching ignores case.
func (l *Ledger) HasEarned(_ context.Context, user, name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.earned[grantKey{user: user, name: achievement.NameKey(name)}]
	return ok
}

// Grant records that user earned name. It fails with achievement.ErrAlreadyGranted
// when the pair already exists.
func (l *Ledger) Grant(ctx context.Context, user, name string) error {
	g := achievement.Grant{User: user, Achievement: name}
	if err := g.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.earned[grantKey{user: user, name: achievement.NameKey(name)}]; ok {
		return achievement.ErrAlreadyGranted
	}
	if err := l.backend.AppendGrant(ctx, g); err != nil {
		return &achievement.StorageError{Op: "append grant", Err: err}
	}
	l.record(g)
	return nil
}

// ListEarned returns the achievements granted to user in grant order.
func (l *Ledger) ListEarned(_ context.Context, user string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := l.byUser[user]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Len returns the number of grants.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}
