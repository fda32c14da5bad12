// Package cache holds rendered API responses keyed by the logical page they
// back. Operations that change data invalidate the affected pages.
package cache

import (
	"strconv"
	"sync"
	"unsafe"

	"github.com/coocood/freecache"
	"github.com/sirupsen/logrus"
)

// Logical page paths.
const (
	DashboardPage = "/"
	TrainingPage  = "/training"
)

// CollectionPage is the page of one video collection.
func CollectionPage(id string) string { return "/video/" + id }

// MonthPage is the page of one training month.
func MonthPage(id string) string { return "/training/" + id }

// Invalidator is told which pages went stale. Invalidation is best effort.
type Invalidator interface {
	Invalidate(pages ...string)
}

// Generation identifies a page's state between two invalidations.
type Generation uint64

// Pages caches response bodies per page. A page can hold several variants
// (e.g. different query strings); invalidating the page drops all of them.
//
// Get reports the page generation it looked at, hit or miss. Set stores the
// body only while the page is still at that generation, so a body loaded
// before an invalidation is never cached after it.
type Pages interface {
	Invalidator
	Get(page, variant string) ([]byte, Generation, bool)
	Set(page, variant string, gen Generation, body []byte)
}

// FreecachePages stores bodies in a freecache.Cache. Invalidation bumps a
// per-page generation that is part of every key, so stale variants become
// unreachable and age out of the cache on their own.
type FreecachePages struct {
	cache *freecache.Cache
	ttl   int
	log   logrus.FieldLogger

	mu   sync.RWMutex
	gens map[string]Generation
}

// NewPages returns a freecache backed page cache of sizeMB megabytes, or a
// no-op cache when disabled.
func NewPages(enabled bool, sizeMB, ttlSeconds int, logger logrus.FieldLogger) Pages {
	log := logger.WithField("component", "page_cache")
	if !enabled || sizeMB <= 0 {
		log.Info("Page cache disabled")
		return NoopPages{}
	}
	log.WithFields(logrus.Fields{"size_mb": sizeMB, "ttl_s": ttlSeconds}).Info("Page cache initialized")
	return &FreecachePages{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   ttlSeconds,
		log:   log,
		gens:  make(map[string]Generation),
	}
}

func key(page string, gen Generation, variant string) []byte {
	return unsafeStringToBytes(page + "#" + strconv.FormatUint(uint64(gen), 10) + "?" + variant)
}

// Get returns the cached body of a page variant together with the current
// generation of the page.
func (p *FreecachePages) Get(page, variant string) ([]byte, Generation, bool) {
	p.mu.RLock()
	gen := p.gens[page]
	p.mu.RUnlock()

	val, err := p.cache.Get(key(page, gen, variant))
	if err != nil {
		return nil, gen, false
	}
	return val, gen, true
}

// Set stores the body of a page variant if the page is still at gen.
func (p *FreecachePages) Set(page, variant string, gen Generation, body []byte) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.gens[page] != gen {
		p.log.WithField("page", page).Debug("Page invalidated while loading, not cached")
		return
	}
	if err := p.cache.Set(key(page, gen, variant), body, p.ttl); err != nil {
		p.log.WithError(err).WithField("page", page).Debug("Page not cached")
	}
}

// Invalidate drops every variant of the given pages.
func (p *FreecachePages) Invalidate(pages ...string) {
	p.mu.Lock()
	for _, page := range pages {
		p.gens[page]++
	}
	p.mu.Unlock()
	p.log.WithField("pages", pages).Debug("Pages invalidated")
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally and never modifies them.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// NoopPages caches nothing.
type NoopPages struct{}

func (NoopPages) Get(_, _ string) ([]byte, Generation, bool) { return nil, 0, false }
func (NoopPages) Set(_, _ string, _ Generation, _ []byte)    {}
func (NoopPages) Invalidate(_ ...string)                     {}
