// Package errors provides the error classification used across the registry viewer.
//
// # Overview
//
// Errors fall into three classes: Transient (temporary, worth retrying), Invalid
// (bad input or data, never retried) and Fatal (configuration the process cannot
// work around). Components wrap errors with their name and operation so log lines
// read as "component.method: action failed: cause".
//
// The core layers degrade instead of failing: the dataset loader turns a failed
// fetch into an empty table, and a missing column becomes an empty synthesized one.
// Classified errors therefore mostly travel between a component and the code that
// logs, counts and reports them. Only the password gate returns errors to the user.
//
// # Usage
//
//	body, err := fetcher.Fetch(ctx, url)
//	if err != nil {
//	    return errors.WrapTransient(err, "Loader", "Load", "fetch")
//	}
//
//	if errors.IsTransient(err) {
//	    // retry with backoff, see RetryConfig.ToRetryConfig
//	}
//
// Standard sentinels (ErrSourceUnavailable, ErrAuthFailed, ErrMissingConfig, ...)
// keep working with Is through any number of wraps.
package errors
