// Package dictcache remembers dictionary verdicts so repeated guesses of the
// same word skip the remote lookup.
//
// Only definitive answers are stored. Lookup errors pass straight through so
// a flaky dictionary never poisons the cache. Concurrent misses for the same
// word share one upstream call.
package dictcache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// upstreamTimeout bounds a shared lookup once it is detached from its callers.
const upstreamTimeout = 30 * time.Second

// Lookup is the upstream validator being cached.
type Lookup interface {
	IsWord(ctx context.Context, word string) (bool, error)
}

// Cache is a Lookup backed by SQLite.
type Cache struct {
	db    *sql.DB
	next  Lookup
	group singleflight.Group
}

// Open opens dsn, applies migrations and wraps next.
func Open(dsn string, next Lookup) (*Cache, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("dictcache: open: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dictcache: migrate: %w", err)
	}
	return &Cache{db: db, next: next}, nil
}

// Close releases the database.
func (c *Cache) Close() error { return c.db.Close() }

// IsWord answers from the cache or asks the upstream Lookup.
func (c *Cache) IsWord(ctx context.Context, word string) (bool, error) {
	known, hit, err := c.get(ctx, word)
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("dictcache read failed, asking upstream")
	} else if hit {
		return known, nil
	}

	ch := c.group.DoChan(word, func() (any, error) {
		// Shared by every waiter, so no single caller may cancel it.
		up, cancel := context.WithTimeout(context.WithoutCancel(ctx), upstreamTimeout)
		defer cancel()
		ok, err := c.next.IsWord(up, word)
		if err != nil {
			return false, err
		}
		if err := c.put(up, word, ok); err != nil {
			log.Warn().Err(err).Str("word", word).Msg("dictcache write failed")
		}
		return ok, nil
	})
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}

// Len returns the number of cached verdicts.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM verdicts`).Scan(&n)
	return n, err
}

func (c *Cache) get(ctx context.Context, word string) (known, hit bool, err error) {
	err = c.db.QueryRowContext(ctx, `SELECT known FROM verdicts WHERE word=?`, word).Scan(&known)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return known, true, nil
}

func (c *Cache) put(ctx context.Context, word string, known bool) error {
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO verdicts (word, known, checked_at)
        VALUES (?, ?, ?)
        ON CONFLICT(word) DO UPDATE SET known=excluded.known, checked_at=excluded.checked_at`,
		word, known, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
