package util

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/avast/retry-go/v4"
)

// StatusError is returned for a response with an unexpected status.
type StatusError struct {
	URL  string
	Code int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Code)
}

// Retryable reports whether a request that failed with this status is
// worth repeating.
func (e StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Fetch performs the request built by newRequest and returns the body
// of a 200 response. Transport errors and retryable statuses are retried
// as configured by options; a fresh request is built for every attempt.
func Fetch(ctx context.Context, client *http.Client, newRequest func(ctx context.Context) (*http.Request, error), options ...retry.Option) ([]byte, error) {
	var body []byte
	err := retry.Do(func() error {
		req, err := newRequest(ctx)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := StatusError{URL: req.URL.Redacted(), Code: resp.StatusCode}
			if !err.Retryable() {
				return retry.Unrecoverable(err)
			}
			return err
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}, append([]retry.Option{retry.Context(ctx), retry.LastErrorOnly(true)}, options...)...)
	return body, err
}
