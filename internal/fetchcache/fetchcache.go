// Package fetchcache is a Redis-backed cache for fetched marketplace
// pages. Search pages churn constantly and get a short TTL; detail
// pages barely change after publication and get a long one. A cache
// hit short-circuits the live fetch, nothing more: cached content is
// never treated as a fresh observation by the lifecycle machinery.
package fetchcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aaearon/i4-scout/internal/metrics"
)

// Class selects the TTL applied to a cached page.
type Class string

// Page classes.
const (
	// ClassSearch is a listing/search results page.
	ClassSearch Class = "search"
	// ClassDetail is an individual listing detail page.
	ClassDetail Class = "detail"
)

// Default TTLs per class.
const (
	DefaultSearchTTL = 1 * time.Hour
	DefaultDetailTTL = 24 * time.Hour
)

const keyPrefix = "i4scout:page:"

// redisClient is the slice of the go-redis API the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

// Cache stores fetched pages keyed by normalized request URL.
type Cache struct {
	rdb       redisClient
	searchTTL time.Duration
	detailTTL time.Duration
	bypass    bool
	log       *slog.Logger
}

// New connects to Redis at addr and returns a Cache.
func New(ctx context.Context, addr string, opts ...Option) (*Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewWithClient(rdb, opts...), nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(rdb redisClient, opts ...Option) *Cache {
	c := &Cache{
		rdb:       rdb,
		searchTTL: DefaultSearchTTL,
		detailTTL: DefaultDetailTTL,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the Cache.
type Option func(*Cache)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.log = l
	}
}

// WithSearchTTL overrides the search page TTL.
func WithSearchTTL(d time.Duration) Option {
	return func(c *Cache) {
		c.searchTTL = d
	}
}

// WithDetailTTL overrides the detail page TTL.
func WithDetailTTL(d time.Duration) Option {
	return func(c *Cache) {
		c.detailTTL = d
	}
}

// WithBypass makes every Get miss, forcing live fetches. Writes still
// happen, so a bypassed pass refreshes the cache as it goes.
func WithBypass(bypass bool) Option {
	return func(c *Cache) {
		c.bypass = bypass
	}
}

// Get returns the cached page for rawURL, reporting whether it was
// found. Expired and bypassed entries report a miss.
func (c *Cache) Get(ctx context.Context, class Class, rawURL string) ([]byte, bool, error) {
	if c.bypass {
		metrics.CacheMissesTotal.WithLabelValues(string(class)).Inc()
		return nil, false, nil
	}

	body, err := c.rdb.Get(ctx, Key(class, rawURL)).Bytes()
	if errors.Is(err, goredis.Nil) {
		metrics.CacheMissesTotal.WithLabelValues(string(class)).Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached page: %w", err)
	}

	metrics.CacheHitsTotal.WithLabelValues(string(class)).Inc()
	return body, true, nil
}

// Set stores a page under its class TTL.
func (c *Cache) Set(ctx context.Context, class Class, rawURL string, body []byte) error {
	if err := c.rdb.Set(ctx, Key(class, rawURL), body, c.ttl(class)).Err(); err != nil {
		return fmt.Errorf("caching page: %w", err)
	}
	return nil
}

// Invalidate drops the cached page for rawURL, if any.
func (c *Cache) Invalidate(ctx context.Context, class Class, rawURL string) error {
	if err := c.rdb.Del(ctx, Key(class, rawURL)).Err(); err != nil {
		return fmt.Errorf("invalidating cached page: %w", err)
	}
	return nil
}

func (c *Cache) ttl(class Class) time.Duration {
	if class == ClassDetail {
		return c.detailTTL
	}
	return c.searchTTL
}

// Key builds the storage key for a page.
func Key(class Class, rawURL string) string {
	return keyPrefix + string(class) + ":" + NormalizeURL(rawURL)
}

// NormalizeURL canonicalizes a request URL so equivalent spellings
// share one cache entry: scheme and host are lowercased, default ports
// and fragments dropped, query parameters sorted. Unparseable input is
// returned as-is; it still works as a key, just without coalescing.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimSpace(rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndex(u.Host, ":")]
	}

	if u.RawQuery != "" {
		q := u.Query()
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		for _, k := range keys {
			vals := q[k]
			sort.Strings(vals)
			for _, v := range vals {
				if b.Len() > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(k))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
		u.RawQuery = b.String()
	}

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}
