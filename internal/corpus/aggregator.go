package corpus

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/lbview/internal/api"
	"github.com/verte-zerg/lbview/internal/model"
)

// Defaults for the assumed page range.
const (
	DefaultPages       = 10
	DefaultLimit       = 100
	DefaultConcurrency = 4
)

// Result is a best-effort corpus. FailedPages lists pages that could not be fetched.
type Result struct {
	Entries     []model.Entry
	FailedPages []int
}

// Partial reports whether any page was dropped.
func (r Result) Partial() bool {
	return len(r.FailedPages) > 0
}

// Warning returns a user-facing notice for partial results, or "".
func (r Result) Warning() string {
	if !r.Partial() {
		return ""
	}
	pages := make([]string, len(r.FailedPages))
	for i, p := range r.FailedPages {
		pages[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("Results may be incomplete (failed pages: %s)", strings.Join(pages, ", "))
}

// Aggregator fetches pages 1..Pages and concatenates them in page order.
type Aggregator struct {
	fetcher     api.PageFetcher
	pages       int
	limit       int
	concurrency int
	cache       *PageCache
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPages sets the number of pages in the corpus.
func WithPages(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.pages = n
		}
	}
}

// WithLimit sets the page size.
func WithLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithConcurrency bounds the number of in-flight page requests.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithCache reads pages through the session cache.
func WithCache(c *PageCache) Option {
	return func(a *Aggregator) {
		a.cache = c
	}
}

// New returns an Aggregator over fetcher.
func New(fetcher api.PageFetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:     fetcher,
		pages:       DefaultPages,
		limit:       DefaultLimit,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Pages returns the number of pages in the corpus.
func (a *Aggregator) Pages() int {
	return a.pages
}

// Limit returns the page size.
func (a *Aggregator) Limit() int {
	return a.limit
}

// Cache returns the session cache, if any.
func (a *Aggregator) Cache() *PageCache {
	return a.cache
}

// FetchPage fetches a single page through the cache. A cache hit skips the network.
func (a *Aggregator) FetchPage(ctx context.Context, page int) ([]model.Entry, error) {
	if a.cache != nil {
		if entries, ok := a.cache.Get(page); ok {
			return entries, nil
		}
	}
	return a.Refresh(ctx, page)
}

// Refresh fetches a page from the network and stores it in the cache.
func (a *Aggregator) Refresh(ctx context.Context, page int) ([]model.Entry, error) {
	entries, err := a.fetcher.FetchPage(ctx, page, a.limit)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.Set(page, entries)
	}
	return entries, nil
}

// Fetch builds the corpus. Failed pages are skipped and reported in the result;
// only cancellation of ctx aborts the aggregation.
func (a *Aggregator) Fetch(ctx context.Context) (Result, error) {
	slots := make([][]model.Entry, a.pages)
	var (
		mu     sync.Mutex
		failed []int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := 0; i < a.pages; i++ {
		page := i + 1
		idx := i
		g.Go(func() error {
			entries, err := a.FetchPage(gctx, page)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				failed = append(failed, page)
				mu.Unlock()
				return nil
			}
			slots[idx] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("aggregate pages: %w", err)
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}
	entries := make([]model.Entry, 0, total)
	for _, s := range slots {
		entries = append(entries, s...)
	}
	sort.Ints(failed)
	return Result{Entries: entries, FailedPages: failed}, nil
}
