package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MEKXH/achievebot/internal/achievement"
)

// Catalog is the ordered set of known achievements.
type Catalog struct {
	backend CatalogBackend

	mu      sync.RWMutex
	entries []achievement.Achievement
	index   map[string]int
}

// OpenCatalog loads the catalog from backend.
// Records whose name repeats an earlier one are ignored.
func OpenCatalog(ctx context.Context, backend CatalogBackend) (*Catalog, error) {
	if backend == nil {
		return nil, fmt.Errorf("catalog backend is required")
	}
	records, err := backend.LoadAchievements(ctx)
	if err != nil {
		return nil, &achievement.StorageError{Op: "load catalog", Err: err}
	}

	c := &Catalog{
		backend: backend,
		entries: make([]achievement.Achievement, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, a := range records {
		key := a.Key()
		if _, dup := c.index[key]; dup {
			slog.Warn("duplicate catalog record ignored", "name", a.Name)
			continue
		}
		c.index[key] = len(c.entries)
		c.entries = append(c.entries, a)
	}
	return c, nil
}

// FindByName returns the achievement whose name equals name ignoring case.
func (c *Catalog) FindByName(_ context.Context, name string) (achievement.Achievement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[achievement.NameKey(name)]
	if !ok {
		return achievement.Achievement{}, achievement.ErrNotFound
	}
	return c.entries[i], nil
}

// Add appends a new achievement. It fails with achievement.ErrAlreadyExists
// when the name is taken, case-insensitively.
func (c *Catalog) Add(ctx context.Context, a achievement.Achievement) error {
	if err := a.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := a.Key()
	if _, ok := c.index[key]; ok {
		return achievement.ErrAlreadyExists
	}
	if err := c.backend.AppendAchievement(ctx, a); err != nil {
		return &achievement.StorageError{Op: "append achievement", Err: err}
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, a)
	return nil
}

// List returns achievement names in insertion order.
func (c *Catalog) List(_ context.Context) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.entries))
	for i, a := range c.entries {
		names[i] = a.Name
	}
	return names
}

// All returns a copy of every catalog entry in insertion order.
func (c *Catalog) All(_ context.Context) []achievement.Achievement {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]achievement.Achievement, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
