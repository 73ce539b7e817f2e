package asset

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"time"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
	"github.com/matzehuels/labelpress/pkg/httputil"
	"github.com/matzehuels/labelpress/pkg/observability"
)

// HTTPFetcher defaults.
const (
	DefaultMaxBytes   = 20 << 20
	DefaultAttempts   = 3
	defaultRetryDelay = 200 * time.Millisecond
)

// HTTPFetcher downloads images over http or https.
type HTTPFetcher struct {
	Client   *http.Client
	Timeout  time.Duration // whole fetch including retries; zero means DefaultTimeout
	Attempts int           // zero means DefaultAttempts
	MaxBytes int64         // zero means DefaultMaxBytes
}

// NewHTTPFetcher returns a fetcher bounded by timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{}, Timeout: timeout}
}

// Fetch downloads and decodes ref.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	data, err := f.FetchBytes(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// FetchBytes downloads ref. Network failures and 5xx/429 responses are
// retried until the attempts or the deadline run out; other non-2xx
// responses fail immediately.
func (f *HTTPFetcher) FetchBytes(ctx context.Context, ref string) ([]byte, error) {
	if err := lperrors.ValidateURL(ref); err != nil {
		return nil, err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil, lperrors.Wrap(lperrors.ErrCodeInvalidInput, err, "parse url")
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attempts := f.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	var data []byte
	err = httputil.Retry(ctx, attempts, defaultRetryDelay, func() error {
		var err error
		data, err = f.get(ctx, u)
		return err
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, lperrors.Wrap(lperrors.ErrCodeTimeout, err, "fetch %s", u.Redacted())
		}
		if lperrors.GetCode(err) != "" {
			return nil, err
		}
		return nil, lperrors.Wrap(lperrors.ErrCodeNetwork, err, "fetch %s", u.Redacted())
	}
	return data, nil
}

func (f *HTTPFetcher) get(ctx context.Context, u *url.URL) ([]byte, error) {
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, lperrors.New(lperrors.ErrCodeNotFound, "asset %s not found", u.Redacted())
	case httputil.RetryableStatus(resp.StatusCode):
		return nil, &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, lperrors.New(lperrors.ErrCodeNetwork, "asset %s: status %d", u.Redacted(), resp.StatusCode)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: err}
	}
	if int64(len(data)) > limit {
		return nil, lperrors.New(lperrors.ErrCodeResourceExhausted, "asset %s exceeds %d bytes", u.Redacted(), limit)
	}
	return data, nil
}

var (
	_ Fetcher     = (*HTTPFetcher)(nil)
	_ ByteFetcher = (*HTTPFetcher)(nil)
)
