// Package httputil provides retry helpers for outbound HTTP calls.
//
// [Retry] re-runs an operation with exponential backoff as long as it fails
// with a [RetryableError] and the context is alive. Wrap transient
// failures (network errors, 5xx and 429 responses) so that only those are
// retried:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    if httputil.RetryableStatus(resp.StatusCode) {
//	        return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
//	    }
//	    ...
//	})
//
// The asset fetcher runs its retries inside the fetch deadline, so a slow
// host costs at most the configured timeout.
package httputil
