// Package asset resolves image references on labels into rasters.
//
// A [Fetcher] turns a reference (URL, file path, test key) into a decoded
// image. The [Resolver] wraps a fetcher with a hard deadline and never
// fails: an empty reference, a timeout, a non-2xx response or an
// undecodable body all yield the gray "IMG" placeholder, sized to the
// element's box.
//
//	fetcher := asset.NewCachedFetcher(asset.NewHTTPFetcher(5*time.Second), c, keyer, logger)
//	resolver := asset.NewResolver(fetcher, 5*time.Second, logger)
//	img, ok := resolver.Resolve(ctx, "https://cdn.example.com/logo.png", 80, 40)
//
// Fetchers available:
//
//   - [HTTPFetcher]: http/https with retries inside the deadline
//   - [FileFetcher]: paths below a local asset root
//   - [MemoryFetcher]: in-process map, for tests and previews
//   - [CachedFetcher]: read-through byte cache in front of another fetcher
//   - [Router]: dispatches by scheme between a remote and a local fetcher
package asset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

// MaxDecodePixels caps the declared width×height of a decoded asset.
// Headers are checked before any pixel buffer is allocated.
const MaxDecodePixels = 50_000_000

// Fetcher retrieves and decodes an image by reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// ByteFetcher is implemented by fetchers that can return the encoded bytes
// of an asset. [CachedFetcher] stores those bytes as-is.
type ByteFetcher interface {
	FetchBytes(ctx context.Context, ref string) ([]byte, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, ref string) (image.Image, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, ref string) (image.Image, error) {
	return f(ctx, ref)
}

// Decode decodes PNG, JPEG, GIF, BMP or WebP bytes. Images declaring more
// than [MaxDecodePixels] pixels are refused.
func Decode(data []byte) (image.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDecodePixels/cfg.Height {
		return nil, lperrors.New(lperrors.ErrCodeResourceExhausted, "%s image %dx%d exceeds %d pixels",
			format, cfg.Width, cfg.Height, MaxDecodePixels)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
