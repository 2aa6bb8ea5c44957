package loader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/logging"
	"github.com/esgtools/esgkeeper/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHybrid() *Hybrid {
	log := logging.New(io.Discard)
	return New(log, time.Second)
}

// countingAccessor counts invocations and returns canned results.
type countingAccessor struct {
	calls  int
	result []string
	err    error
}

func (a *countingAccessor) fn(ctx context.Context) ([]string, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

func recoverableErr() error {
	return &remote.APIError{Status: http.StatusServiceUnavailable, Endpoint: "/projects"}
}

func TestRemoteEnabledWorkingRemoteSkipsLocal(t *testing.T) {
	rem := &countingAccessor{result: []string{"remote"}}
	loc := &countingAccessor{result: []string{"local"}}

	got, err := Load(context.Background(), testHybrid(), Policy{RemoteEnabled: true, AllowLocalFallback: true}, rem.fn, loc.fn)
	require.NoError(t, err)

	assert.Equal(t, []string{"remote"}, got)
	assert.Equal(t, 1, rem.calls)
	assert.Equal(t, 0, loc.calls)
}

func TestRemoteDisabledGoesStraightToLocal(t *testing.T) {
	rem := &countingAccessor{result: []string{"remote"}}
	loc := &countingAccessor{result: []string{"local"}}

	got, err := Load(context.Background(), testHybrid(), Policy{RemoteEnabled: false}, rem.fn, loc.fn)
	require.NoError(t, err)

	assert.Equal(t, []string{"local"}, got)
	assert.Equal(t, 0, rem.calls)
	assert.Equal(t, 1, loc.calls)
}

func TestRecoverableRemoteFailureFallsBack(t *testing.T) {
	rem := &countingAccessor{err: recoverableErr()}
	loc := &countingAccessor{result: []string{"local"}}

	got, err := Load(context.Background(), testHybrid(), Policy{RemoteEnabled: true, AllowLocalFallback: true}, rem.fn, loc.fn)
	require.NoError(t, err)

	assert.Equal(t, []string{"local"}, got)
	assert.Equal(t, 1, rem.calls)
	assert.Equal(t, 1, loc.calls)
}

func TestFallbackDisabledPropagatesRemoteFailure(t *testing.T) {
	rem := &countingAccessor{err: recoverableErr()}
	loc := &countingAccessor{result: []string{"local"}}

	_, err := Load(context.Background(), testHybrid(), Policy{RemoteEnabled: true, AllowLocalFallback: false}, rem.fn, loc.fn)

	var apiErr *remote.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, rem.calls)
	assert.Equal(t, 0, loc.calls)
}

func TestTerminalRemoteFailureNeverFallsBack(t *testing.T) {
	for _, terminal := range []error{
		common.ErrReauthenticationRequired,
		common.ErrPermissionDenied,
		&remote.APIError{Status: http.StatusUnprocessableEntity, Endpoint: "/projects"},
	} {
		rem := &countingAccessor{err: terminal}
		loc := &countingAccessor{result: []string{"local"}}

		_, err := Load(context.Background(), testHybrid(), Policy{RemoteEnabled: true, AllowLocalFallback: true}, rem.fn, loc.fn)
		assert.Error(t, err)
		assert.Equal(t, 0, loc.calls, "terminal failure %v must not trigger fallback", terminal)
	}
}

func TestBothFailingPropagatesLocalError(t *testing.T) {
	localErr := errors.New("local store unavailable")
	rem := &countingAccessor{err: recoverableErr()}
	loc := &countingAccessor{err: localErr}

	got, err := Load(context.Background(), testHybrid(), Policy{RemoteEnabled: true, AllowLocalFallback: true}, rem.fn, loc.fn)

	assert.ErrorIs(t, err, localErr)
	assert.Nil(t, got, "both sources failing must never produce an empty success")
}

func TestRemoteTimeoutTriggersFallback(t *testing.T) {
	h := New(logging.New(io.Discard), 20*time.Millisecond)

	remoteDone := make(chan struct{})
	remoteFn := func(ctx context.Context) ([]string, error) {
		defer close(remoteDone)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	localFn := func(ctx context.Context) ([]string, error) {
		// the remote call has fully terminated before fallback starts
		select {
		case <-remoteDone:
		default:
			t.Error("fallback started while remote call was still in flight")
		}
		return []string{"local"}, nil
	}

	got, err := Load(context.Background(), h, Policy{RemoteEnabled: true, AllowLocalFallback: true}, remoteFn, localFn)
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, got)
}
