package asset

import (
	"context"
	"image"
	"strings"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

// Router sends http(s) references to Remote and everything else to Local.
// Either side may be nil, in which case those references fail.
type Router struct {
	Remote Fetcher
	Local  Fetcher
}

// Fetch dispatches ref by scheme.
func (r Router) Fetch(ctx context.Context, ref string) (image.Image, error) {
	target := r.Local
	if isRemote(ref) {
		target = r.Remote
	}
	if target == nil {
		return nil, lperrors.New(lperrors.ErrCodeInvalidInput, "no fetcher for %q", ref)
	}
	return target.Fetch(ctx, ref)
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

var _ Fetcher = Router{}
