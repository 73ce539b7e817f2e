package asset

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

// FileFetcher reads images below a root directory. References are
// slash-separated relative paths, optionally prefixed with "file://".
type FileFetcher struct {
	Root string
}

// NewFileFetcher returns a fetcher rooted at root.
func NewFileFetcher(root string) *FileFetcher {
	return &FileFetcher{Root: root}
}

// Fetch reads and decodes ref.
func (f *FileFetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	data, err := f.FetchBytes(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// FetchBytes reads ref. Absolute paths and ".." segments are rejected.
func (f *FileFetcher) FetchBytes(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := strings.TrimPrefix(ref, "file://")
	if err := lperrors.ValidateAssetPath(rel); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(f.Root, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil, lperrors.Wrap(lperrors.ErrCodeNotFound, err, "asset %s", rel)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

var (
	_ Fetcher     = (*FileFetcher)(nil)
	_ ByteFetcher = (*FileFetcher)(nil)
)
