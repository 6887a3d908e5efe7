// Package cache persists parsed table results in a per-user directory,
// one file per key, expiring entries a fixed duration after they were
// written. All I/O failures degrade to a cache bypass.
package cache

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tablestruct/tablestruct/internal/source"
)

// DefaultMaxAge is the expiry threshold applied when none is configured.
const DefaultMaxAge = time.Hour

type entry struct {
	SavedAt time.Time          `json:"saved_at"`
	Result  source.TableResult `json:"result"`
}

type Cache struct {
	dir    string
	maxAge time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func New(dir string, maxAge time.Duration, log *zap.Logger) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache{dir: dir, maxAge: maxAge, log: log, now: time.Now}
}

// DefaultDir resolves the per-user cache directory.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(base, "tablestruct"), nil
}

// Key derives the cache key from the query parameters. Filter order is
// significant: a reordered filter addresses a different entry.
func Key(database, table string, columns []string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s", database, table)
	for _, c := range columns {
		fmt.Fprintf(h, "\x00%s", c)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Get returns the cached result for key, or a miss for absent, expired,
// or undecodable entries. An entry written without statistics cannot
// satisfy a request that wants them and counts as a miss.
func (c *Cache) Get(key string, wantStats bool) (*source.TableResult, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.log.Debug("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.now().Sub(e.SavedAt) >= c.maxAge {
		return nil, false
	}
	if wantStats && e.Result.Stats == nil {
		return nil, false
	}
	return &e.Result, true
}

// Put writes the result under key, creating the cache directory on first
// use and overwriting any stale entry. Failures are logged, never fatal.
func (c *Cache) Put(key string, res *source.TableResult) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.log.Warn("cannot create cache directory", zap.String("dir", c.dir), zap.Error(err))
		return
	}
	data, err := json.Marshal(entry{SavedAt: c.now(), Result: *res})
	if err != nil {
		c.log.Warn("cannot encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		c.log.Warn("cannot write cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".cache")
}
