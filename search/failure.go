package search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FailureKind labels one class of retrieval failure.
type FailureKind string

const (
	KindConnectionFailed FailureKind = "connection_failed"
	KindRateLimited      FailureKind = "rate_limited"
	KindInvalidResponse  FailureKind = "invalid_response"
	KindTimeout          FailureKind = "timeout"
	KindNoResults        FailureKind = "no_results"
)

// FallbackStrategy hints how the caller should recover from a failure.
type FallbackStrategy string

const (
	FallbackOfflineKnowledge FallbackStrategy = "use_offline_knowledge"
	FallbackCachedData       FallbackStrategy = "use_cached_data"
	FallbackNotifyUser       FallbackStrategy = "notify_user"
)

// Failure is the terminal value returned for a failed retrieval attempt.
// It is never retried internally; retry policy belongs to the caller.
type Failure struct {
	Kind     FailureKind
	Message  string
	Provider string
	Fallback FallbackStrategy
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure unwraps a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// fallbackFor maps each failure kind to its recovery hint.
func fallbackFor(kind FailureKind) FallbackStrategy {
	switch kind {
	case KindTimeout, KindRateLimited:
		return FallbackCachedData
	case KindConnectionFailed, KindNoResults:
		return FallbackOfflineKnowledge
	default:
		return FallbackNotifyUser
	}
}

func (c *Client) failure(kind FailureKind, message string, err error) *Failure {
	return &Failure{
		Kind:     kind,
		Message:  message,
		Provider: c.cfg.ProviderName,
		Fallback: fallbackFor(kind),
		Err:      err,
	}
}

// classify maps a transport error and HTTP status to a failure, first
// match wins: timeout, 429, >=500, anything else invalid_response.
func (c *Client) classify(err error, statusCode int) *Failure {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return c.failure(KindTimeout, "search request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.failure(KindTimeout, "search request timed out", err)
	}

	if statusCode == http.StatusTooManyRequests {
		return c.failure(KindRateLimited, "search provider rate limit exceeded", err)
	}
	if statusCode >= http.StatusInternalServerError {
		return c.failure(KindConnectionFailed, fmt.Sprintf("search provider returned status %d", statusCode), err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return c.failure(KindConnectionFailed, "could not reach search provider", err)
	}

	if statusCode >= http.StatusBadRequest {
		return c.failure(KindInvalidResponse, fmt.Sprintf("unexpected provider status %d", statusCode), err)
	}
	return c.failure(KindInvalidResponse, "malformed provider response", err)
}
