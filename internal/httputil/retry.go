// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the source adapters.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Policy bounds the retry behavior for one class of external call.
// The zero value means a single attempt with no wait.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Wait is the fixed pause between consecutive attempts.
	Wait time.Duration
}

// Single makes exactly one attempt.
var Single = Policy{MaxAttempts: 1}

// RetryOnce makes one best-effort re-attempt after a short fixed wait.
var RetryOnce = Policy{MaxAttempts: 2, Wait: 2 * time.Second}

// Do executes an HTTP request under the given retry policy. An attempt is
// retried when the transport fails or the server answers 429 or a 5xx
// status; any other response is returned as-is. Before a retry the
// response body is drained and closed. If the context is cancelled during
// a wait, Do returns ctx.Err(). After the last attempt the final response
// or transport error is returned so the caller can inspect it.
func Do(ctx context.Context, client *http.Client, req *http.Request, policy Policy) (*http.Response, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var resp *http.Response
	var err error
	for attempt := 1; ; attempt++ {
		resp, err = client.Do(req.Clone(ctx))
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= attempts {
			return resp, err
		}

		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.Wait):
		}
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
