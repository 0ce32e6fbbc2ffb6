// Package breach checks passwords against a public breach database using
// the k-anonymity range protocol: only the first 5 hex characters of the
// password's SHA-1 digest ever leave the process, and the remaining 35
// are matched locally against the returned suffix list.
package breach

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const prefixLength = 5

type cacheEntry struct {
	fetchedAt time.Time
	count     int
}

// Checker queries the breach-database range endpoint. Results are cached
// per digest with the same staleness window as the other read queries.
type Checker struct {
	rc          *resty.Client
	staleness   time.Duration
	maxAttempts int
	now         func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// Option customizes a Checker.
type Option func(*Checker)

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		c.rc.SetTimeout(timeout)
	}
}

// New creates a Checker against the given range API origin, normally
// https://api.pwnedpasswords.com. The endpoint needs no authentication.
func New(baseURL string, opts ...Option) *Checker {
	checker := &Checker{
		rc:          resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
		staleness:   5 * time.Minute,
		maxAttempts: 3,
		now:         time.Now,
		cache:       map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(checker)
	}
	return checker
}

// Count returns how many times the password appears in known breaches,
// or 0 when it is absent. An empty password short-circuits to 0 without
// any network call.
func (c *Checker) Count(ctx context.Context, password string) (int, error) {
	if password == "" {
		return 0, nil
	}

	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:prefixLength], digest[prefixLength:]

	c.mu.Lock()
	entry, found := c.cache[digest]
	c.mu.Unlock()

	if found && c.now().Sub(entry.fetchedAt) < c.staleness {
		return entry.count, nil
	}

	body, err := c.fetchRange(ctx, prefix)
	if err != nil {
		return 0, err
	}

	count := scanSuffixes(body, suffix)

	c.mu.Lock()
	now := c.now()
	c.evictStale(now)
	c.cache[digest] = cacheEntry{fetchedAt: now, count: count}
	c.mu.Unlock()

	return count, nil
}

// evictStale drops entries past the staleness window. The endpoint is
// reachable without a session, so the cache must not grow with every
// digest ever submitted. Caller holds c.mu.
func (c *Checker) evictStale(now time.Time) {
	for digest, entry := range c.cache {
		if now.Sub(entry.fetchedAt) >= c.staleness {
			delete(c.cache, digest)
		}
	}
}

func (c *Checker) fetchRange(ctx context.Context, prefix string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		response, err := c.rc.R().SetContext(ctx).Get("/range/" + prefix)
		if err != nil {
			lastErr = err
			continue
		}
		if response.IsError() {
			lastErr = fmt.Errorf("range endpoint returned status %d", response.StatusCode())
			if response.StatusCode() == 401 {
				return "", lastErr
			}
			continue
		}

		return string(response.Body()), nil
	}

	return "", lastErr
}

// scanSuffixes walks the newline-delimited SUFFIX:COUNT lines looking for
// an exact suffix match.
func scanSuffixes(body, suffix string) int {
	for _, line := range strings.Split(body, "\n") {
		hashSuffix, countText, found := strings.Cut(strings.TrimRight(line, "\r"), ":")
		if !found {
			continue
		}
		if strings.EqualFold(hashSuffix, suffix) {
			count, err := strconv.Atoi(strings.TrimSpace(countText))
			if err != nil {
				return 0
			}
			return count
		}
	}

	return 0
}
