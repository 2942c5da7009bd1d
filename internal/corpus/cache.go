// Package corpus aggregates leaderboard pages into one ordered corpus.
package corpus

import (
	"strconv"

	"github.com/patrickmn/go-cache"

	"github.com/verte-zerg/lbview/internal/model"
)

// PageCache keeps fetched pages for the lifetime of the session.
// Entries never expire; callers invalidate explicitly.
type PageCache struct {
	c *cache.Cache
}

// NewPageCache returns an empty session cache.
func NewPageCache() *PageCache {
	return &PageCache{c: cache.New(cache.NoExpiration, 0)}
}

// Get returns a copy of the cached page.
func (p *PageCache) Get(page int) ([]model.Entry, bool) {
	v, ok := p.c.Get(pageKey(page))
	if !ok {
		return nil, false
	}
	entries, ok := v.([]model.Entry)
	if !ok {
		return nil, false
	}
	return append([]model.Entry(nil), entries...), true
}

// Set stores a copy of the page.
func (p *PageCache) Set(page int, entries []model.Entry) {
	p.c.Set(pageKey(page), append([]model.Entry{}, entries...), cache.NoExpiration)
}

// Invalidate drops one page.
func (p *PageCache) Invalidate(page int) {
	p.c.Delete(pageKey(page))
}

// Flush drops every page.
func (p *PageCache) Flush() {
	p.c.Flush()
}

// Len returns the number of cached pages.
func (p *PageCache) Len() int {
	return p.c.ItemCount()
}

func pageKey(page int) string {
	return "page:" + strconv.Itoa(page)
}
