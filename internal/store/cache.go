package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// QueryCache is the TTL/size-bounded cache for query responses (§4.5
// "Query result cache"); the HTTP server stores call-graph,
// hierarchical-graph and investigate payloads in it.
// It is backed by an in-memory modernc.org/sqlite table rather than the
// project graph's own on-disk store: the graph's durable layout is the
// flat-file format §6 mandates, so the cache is deliberately a separate,
// disposable, process-local table whose entries for a project are all
// dropped by InvalidateProject after that project is rebuilt.
type QueryCache struct {
	db              *sql.DB
	ttl             time.Duration
	maxEntries      int
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS query_cache (
	cache_key   TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL,
	payload     TEXT NOT NULL,
	stored_at   INTEGER NOT NULL,
	accessed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_query_cache_project ON query_cache(project_id);
CREATE INDEX IF NOT EXISTS idx_query_cache_lru ON query_cache(accessed_at);
`

// NewQueryCache opens the in-memory cache table. ttlSeconds <= 0 means
// entries never expire by age (still subject to LRU eviction);
// maxEntries <= 0 means no size bound.
func NewQueryCache(ttlSeconds, maxEntries int) (*QueryCache, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("store: open query cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init query cache schema: %w", err)
	}
	return &QueryCache{
		db:         db,
		ttl:        time.Duration(ttlSeconds) * time.Second,
		maxEntries: maxEntries,
	}, nil
}

// Close releases the cache's in-memory database.
func (c *QueryCache) Close() error {
	return c.db.Close()
}

// Get returns the cached payload for key, or ("", false) on a miss or
// expiry. A hit bumps accessed_at for LRU purposes.
func (c *QueryCache) Get(projectID, key string) (string, bool) {
	cacheKey := projectID + "\x00" + key

	var payload string
	var storedAt int64
	err := c.db.QueryRow(
		`SELECT payload, stored_at FROM query_cache WHERE cache_key = ?`, cacheKey,
	).Scan(&payload, &storedAt)
	if err != nil {
		return "", false
	}

	if c.ttl > 0 && time.Since(time.Unix(storedAt, 0)) > c.ttl {
		c.db.Exec(`DELETE FROM query_cache WHERE cache_key = ?`, cacheKey)
		return "", false
	}

	c.db.Exec(`UPDATE query_cache SET accessed_at = ? WHERE cache_key = ?`, time.Now().Unix(), cacheKey)
	return payload, true
}

// Put stores a payload under key, evicting the least-recently-used
// entry first when maxEntries would otherwise be exceeded.
func (c *QueryCache) Put(projectID, key, payload string) {
	cacheKey := projectID + "\x00" + key
	now := time.Now().Unix()

	c.db.Exec(
		`INSERT INTO query_cache (cache_key, project_id, payload, stored_at, accessed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at, accessed_at = excluded.accessed_at`,
		cacheKey, projectID, payload, now, now,
	)

	if c.maxEntries > 0 {
		c.evictOverflow()
	}
}

// InvalidateProject drops every cached entry for a project. Called
// after every successful build, since a build always supersedes any
// cached query result (§4.5).
func (c *QueryCache) InvalidateProject(projectID string) {
	c.db.Exec(`DELETE FROM query_cache WHERE project_id = ?`, projectID)
}

func (c *QueryCache) evictOverflow() {
	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM query_cache`).Scan(&count); err != nil {
		return
	}
	overflow := count - c.maxEntries
	if overflow <= 0 {
		return
	}
	c.db.Exec(
		`DELETE FROM query_cache WHERE cache_key IN (
			SELECT cache_key FROM query_cache ORDER BY accessed_at ASC LIMIT ?
		)`, overflow,
	)
}
