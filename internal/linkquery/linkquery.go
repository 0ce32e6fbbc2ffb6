// Package linkquery is the read-side adapter for the links collection.
// It builds the listing query with the documented defaults, requires a
// session token, and caches results per parameter tuple with a staleness
// window governing revalidation on access. Failed fetches are retried,
// except on 401 where the token is simply invalid.
package linkquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	funk "github.com/thoas/go-funk"

	"github.com/linkeunid/linkeun-dash/internal/apiclient"
	"github.com/linkeunid/linkeun-dash/internal/models"
)

const listPath = "/api/s/"

// ErrNoSession is returned when the listing is requested without a token.
var ErrNoSession = errors.New("links listing requires a session token")

var allowedSortFields = []string{
	"created_at",
	"updated_at",
	"clicks_count",
	"original_url",
	"short_code",
}

type gateway interface {
	Get(ctx context.Context, path string) (*apiclient.Response, error)
}

// Params is the listing parameter tuple. Zero values fall back to the
// defaults: sortBy=updated_at, sort=desc, page=1, per_page from config.
type Params struct {
	Search  string
	Page    int
	PerPage int
	SortBy  string
	Sort    string
}

func (p Params) normalized(defaultPerPage int) Params {
	if !funk.ContainsString(allowedSortFields, p.SortBy) {
		p.SortBy = "updated_at"
	}
	if p.Sort != "asc" && p.Sort != "desc" {
		p.Sort = "desc"
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	return p
}

func (p Params) queryString() string {
	query := url.Values{}
	if p.Search != "" {
		query.Set("search", p.Search)
	}
	query.Set("page", strconv.Itoa(p.Page))
	query.Set("per_page", strconv.Itoa(p.PerPage))
	query.Set("sortBy", p.SortBy)
	query.Set("sort", p.Sort)
	return query.Encode()
}

// Result is a fetched page of links plus the backend pagination block.
type Result struct {
	Links []models.Link
	Meta  *models.Meta
}

type cacheEntry struct {
	fetchedAt time.Time
	result    Result
}

// Service fetches and caches link listings.
type Service struct {
	newClient   func(token string) gateway
	perPage     int
	staleness   time.Duration
	maxAttempts int
	now         func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a listing service. perPage is the default page size.
func New(newClient func(token string) *apiclient.Client, perPage int, opts ...Option) *Service {
	service := &Service{
		newClient:   func(token string) gateway { return newClient(token) },
		perPage:     perPage,
		staleness:   5 * time.Minute,
		maxAttempts: 3,
		now:         time.Now,
		cache:       map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Fetch returns the listing for the given parameter tuple. An entry
// fetched within the staleness window is served from cache without a
// backend call; older entries are revalidated on access.
func (s *Service) Fetch(ctx context.Context, params Params, token string) (Result, error) {
	if token == "" {
		return Result{}, ErrNoSession
	}

	params = params.normalized(s.perPage)
	key := token + "|" + params.queryString()

	s.mu.Lock()
	entry, found := s.cache[key]
	s.mu.Unlock()

	if found && s.now().Sub(entry.fetchedAt) < s.staleness {
		return entry.result, nil
	}

	result, err := s.fetchWithRetry(ctx, params, token)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	now := s.now()
	s.evictStale(now)
	s.cache[key] = cacheEntry{fetchedAt: now, result: result}
	s.mu.Unlock()

	return result, nil
}

// evictStale drops entries past the staleness window so the cache stays
// bounded by the tuples requested within it. Caller holds s.mu.
func (s *Service) evictStale(now time.Time) {
	for key, entry := range s.cache {
		if now.Sub(entry.fetchedAt) >= s.staleness {
			delete(s.cache, key)
		}
	}
}

func (s *Service) fetchWithRetry(ctx context.Context, params Params, token string) (Result, error) {
	client := s.newClient(token)
	path := listPath + "?" + params.queryString()

	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		response, err := client.Get(ctx, path)
		if err != nil {
			lastErr = err
			if apiErr, ok := apiclient.AsError(err); ok && apiErr.StatusCode == http.StatusUnauthorized {
				return Result{}, err
			}
			continue
		}

		if response.Envelope.HasError() {
			lastErr = &apiclient.Error{StatusCode: response.StatusCode, Envelope: &response.Envelope}
			// A token rejection may arrive inside a 2xx reply; retrying
			// cannot fix the token either way.
			if response.Envelope.Code == http.StatusUnauthorized {
				return Result{}, lastErr
			}
			continue
		}

		var links []models.Link
		if _, err := response.Envelope.DecodeData(&links); err != nil {
			lastErr = fmt.Errorf("decoding links payload: %w", err)
			continue
		}

		return Result{Links: links, Meta: response.Envelope.Meta}, nil
	}

	return Result{}, lastErr
}
