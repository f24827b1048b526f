package datastore

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Cache loads each table at most once per generation pass and serves the
// rows from memory afterwards. It is keyed by table only; callers filter
// the returned rows themselves. A Cache belongs to a single pass and is not
// safe for concurrent use.
type Cache struct {
	logger *zap.Logger
	source Source
	store  *gocache.Cache
}

// NewCache creates an empty cache in front of source
func NewCache(source Source, logger *zap.Logger) *Cache {
	return &Cache{
		logger: logger.Named("data-cache"),
		source: source,
		store:  gocache.New(gocache.NoExpiration, 0),
	}
}

// Load returns the rows of table, querying the source on first use only.
// A query failure is returned as a *QueryError and nothing is cached.
func (c *Cache) Load(ctx context.Context, table Table) ([]Row, error) {
	if cached, ok := c.store.Get(string(table)); ok {
		return cached.([]Row), nil
	}

	rows, err := c.source.Query(ctx, table)
	if err != nil {
		return nil, &QueryError{Table: table, Err: err}
	}

	c.store.Set(string(table), rows, gocache.NoExpiration)
	c.logger.Debug("Cached table",
		zap.String("table", string(table)),
		zap.Int("rows", len(rows)))

	return rows, nil
}

// Loaded reports whether table is already cached
func (c *Cache) Loaded(table Table) bool {
	_, ok := c.store.Get(string(table))
	return ok
}

// Flush drops every cached table
func (c *Cache) Flush() {
	c.store.Flush()
}
