// Package retry runs an operation again with exponential backoff when it fails.
//
// # Overview
//
// Do calls fn until it succeeds, the attempts are exhausted, fn returns an error
// marked with NonRetryable, or the context is done. DoWithResult does the same for
// functions that also produce a value.
//
// DefaultConfig allows 3 attempts with delays from 100ms up to 5s and jitter.
//
// # Usage
//
//	body, err := retry.DoWithResult(ctx, cfg, func() ([]byte, error) {
//	    body, err := fetchOnce(ctx)
//	    if err != nil && !errors.IsTransient(err) {
//	        return nil, retry.NonRetryable(err)
//	    }
//	    return body, err
//	})
//
// The caller decides what is worth another attempt. Wrapping an error with
// NonRetryable stops the loop at once; IsNonRetryable and errors.As with
// *NonRetryableError recover the marker and the underlying error.
//
// # Context Cancellation
//
// The context is checked before each attempt and during every backoff delay. When it
// is done, Do returns a wrapped context error.
package retry
