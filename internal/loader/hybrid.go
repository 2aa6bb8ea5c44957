// Package loader combines a remote accessor with a local fallback under a
// caller-supplied policy.
package loader

import (
	"context"
	"errors"
	"time"

	"github.com/esgtools/esgkeeper/internal/logging"
	"github.com/esgtools/esgkeeper/internal/remote"
)

// Policy selects the data source per invocation.
type Policy struct {
	RemoteEnabled      bool
	AllowLocalFallback bool
}

// Hybrid carries the shared loader configuration. The generic entry point
// is the package-level Load function.
type Hybrid struct {
	log           logging.Logger
	remoteTimeout time.Duration
}

func New(log logging.Logger, remoteTimeout time.Duration) *Hybrid {
	return &Hybrid{
		log:           log.With("component", "loader"),
		remoteTimeout: remoteTimeout,
	}
}

// Accessor produces one value of T from a single source.
type Accessor[T any] func(ctx context.Context) (T, error)

// Load returns data from the remote accessor when the policy enables it,
// falling back to the local accessor on a recoverable remote failure. The
// remote call is bounded by the configured timeout and must fully terminate
// before the fallback runs; the two are never raced. A local failure during
// fallback propagates as-is, so both sources failing never looks like an
// empty success.
func Load[T any](ctx context.Context, h *Hybrid, p Policy, remoteFn, localFn Accessor[T]) (T, error) {
	var zero T

	if !p.RemoteEnabled {
		return localFn(ctx)
	}

	rctx, cancel := context.WithTimeout(ctx, h.remoteTimeout)
	v, err := remoteFn(rctx)
	cancel()
	if err == nil {
		return v, nil
	}

	if !recoverable(err) || !p.AllowLocalFallback {
		return zero, err
	}

	h.log.Warn(ctx, "remote source failed, falling back to local", "err", err)
	return localFn(ctx)
}

// recoverable reports whether a remote failure is eligible for fallback:
// transient API errors and timeouts qualify, authentication and permission
// failures do not.
func recoverable(err error) bool {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Recoverable()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
