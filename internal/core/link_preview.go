package core

import (
	"context"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"

	"github.com/baxromumarov/upfolio/internal/content"
	"github.com/baxromumarov/upfolio/internal/httpx"
	"github.com/baxromumarov/upfolio/internal/urlutil"
)

// previewFetchTimeout bounds a shared preview fetch once it is detached from
// the caller that started it.
const previewFetchTimeout = 20 * time.Second

// PreviewFunc fetches a preview for an already validated URL.
type PreviewFunc func(ctx context.Context, rawURL string) (content.LinkPreview, error)

type cachedPreview struct {
	preview content.LinkPreview
	expires time.Time
}

// LinkPreviewer fetches and caches previews of pages linked from chat
// messages. Concurrent requests for the same page share one fetch.
type LinkPreviewer struct {
	mu      sync.Mutex
	cache   *lru.Cache
	ttl     time.Duration
	group   singleflight.Group
	fetch   PreviewFunc
	blocked *urlutil.HostMatcher
	now     func() time.Time
}

func NewLinkPreviewer(fetcher *httpx.CollyFetcher, blocked *urlutil.HostMatcher, size int, ttl time.Duration) *LinkPreviewer {
	fetcher.GuardRedirects(blocked)
	return NewLinkPreviewerFunc(func(ctx context.Context, rawURL string) (content.LinkPreview, error) {
		return content.FetchPreview(ctx, fetcher, rawURL)
	}, blocked, size, ttl)
}

func NewLinkPreviewerFunc(fetch PreviewFunc, blocked *urlutil.HostMatcher, size int, ttl time.Duration) *LinkPreviewer {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LinkPreviewer{
		cache:   lru.New(size),
		ttl:     ttl,
		fetch:   fetch,
		blocked: blocked,
		now:     time.Now,
	}
}

func (p *LinkPreviewer) Preview(ctx context.Context, rawURL string) (content.LinkPreview, error) {
	target, err := urlutil.ValidateJobURL(rawURL)
	if err != nil {
		return content.LinkPreview{}, err
	}
	if p.blocked.Blocked(urlutil.Host(target)) {
		return content.LinkPreview{}, ErrBlockedHost
	}

	key, _, err := urlutil.Normalize(target)
	if err != nil {
		key = target
	}
	if preview, ok := p.lookup(key); ok {
		return preview, nil
	}

	// The fetch is shared, so one caller giving up must not fail the others.
	ch := p.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), previewFetchTimeout)
		defer cancel()
		if preview, ok := p.lookup(key); ok {
			return preview, nil
		}
		preview, err := p.fetch(fetchCtx, target)
		if err != nil {
			return content.LinkPreview{}, err
		}
		p.store(key, preview)
		return preview, nil
	})

	select {
	case <-ctx.Done():
		return content.LinkPreview{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return content.LinkPreview{}, res.Err
		}
		return res.Val.(content.LinkPreview), nil
	}
}

func (p *LinkPreviewer) lookup(key string) (content.LinkPreview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.cache.Get(key)
	if !ok {
		return content.LinkPreview{}, false
	}
	entry := v.(cachedPreview)
	if p.now().After(entry.expires) {
		p.cache.Remove(key)
		return content.LinkPreview{}, false
	}
	return entry.preview, true
}

func (p *LinkPreviewer) store(key string, preview content.LinkPreview) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.Add(key, cachedPreview{preview: preview, expires: p.now().Add(p.ttl)})
}
