package cache

import (
	"context"
	"log/slog"

	"harvest/internal/domain"
	"harvest/internal/port"
)

// CachedFetcher serves documents from a DocumentCache and falls back to the
// wrapped Fetcher on a miss, storing what it fetched.
type CachedFetcher struct {
	fetcher port.Fetcher
	cache   port.DocumentCache
	hits    int
	misses  int
}

func NewCachedFetcher(fetcher port.Fetcher, cache port.DocumentCache) *CachedFetcher {
	return &CachedFetcher{
		fetcher: fetcher,
		cache:   cache,
	}
}

func (f *CachedFetcher) Fetch(ctx context.Context, id string) (domain.Document, error) {
	doc, hit, err := f.cache.GetDoc(id)
	if err != nil {
		slog.WarnContext(ctx, "document cache read failed", "id", id, "err", err)
	} else if hit {
		f.hits++
		return doc, nil
	}
	f.misses++

	doc, err = f.fetcher.Fetch(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}

	if err := f.cache.PutDoc(doc); err != nil {
		slog.WarnContext(ctx, "document cache write failed", "id", id, "err", err)
	}

	return doc, nil
}

// Stats returns the number of cache hits and misses so far.
func (f *CachedFetcher) Stats() (hits, misses int) {
	return f.hits, f.misses
}
