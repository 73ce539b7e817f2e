package asset

import (
	"context"
	"image"
	"sync"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

// MemoryFetcher serves images from a map.
type MemoryFetcher struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewMemoryFetcher returns an empty fetcher.
func NewMemoryFetcher() *MemoryFetcher {
	return &MemoryFetcher{images: make(map[string]image.Image)}
}

// Add registers img under ref, replacing any previous entry.
func (f *MemoryFetcher) Add(ref string, img image.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[ref] = img
}

// Fetch returns the image registered under ref.
func (f *MemoryFetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	img, ok := f.images[ref]
	if !ok {
		return nil, lperrors.New(lperrors.ErrCodeNotFound, "asset %s", ref)
	}
	return img, nil
}

var _ Fetcher = (*MemoryFetcher)(nil)
