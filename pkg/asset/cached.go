package asset

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/labelpress/pkg/cache"
	"github.com/matzehuels/labelpress/pkg/observability"
)

const cacheKeyType = "asset"

// CachedFetcher is a read-through cache in front of another fetcher.
// Encoded bytes are stored as fetched when the inner fetcher is a
// [ByteFetcher]; otherwise the decoded image is stored as PNG. Cache
// failures are logged and never fail a fetch.
type CachedFetcher struct {
	inner  Fetcher
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// NewCachedFetcher wraps inner. A nil keyer selects the default keyer.
func NewCachedFetcher(inner Fetcher, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *CachedFetcher {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CachedFetcher{inner: inner, cache: c, keyer: keyer, logger: logger}
}

// Fetch serves ref from the cache or the inner fetcher.
func (f *CachedFetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	key := f.keyer.AssetKey(ref)
	hooks := observability.Cache()

	if data, hit, err := f.cache.Get(ctx, key); err != nil {
		f.logger.Debug("asset cache read failed", "ref", ref, "err", err)
	} else if hit {
		if img, err := Decode(data); err == nil {
			hooks.OnCacheHit(ctx, cacheKeyType)
			return img, nil
		}
		_ = f.cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	var (
		img  image.Image
		data []byte
		err  error
	)
	if bf, ok := f.inner.(ByteFetcher); ok {
		if data, err = bf.FetchBytes(ctx, ref); err != nil {
			return nil, err
		}
		if img, err = Decode(data); err != nil {
			return nil, err
		}
	} else {
		if img, err = f.inner.Fetch(ctx, ref); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			f.logger.Debug("asset not cacheable", "ref", ref, "err", err)
			return img, nil
		}
		data = buf.Bytes()
	}

	if err := f.cache.Set(ctx, key, data, cache.AssetTTL); err != nil {
		f.logger.Debug("asset cache write failed", "ref", ref, "err", err)
	} else {
		hooks.OnCacheSet(ctx, cacheKeyType, len(data))
	}
	return img, nil
}

var _ Fetcher = (*CachedFetcher)(nil)
