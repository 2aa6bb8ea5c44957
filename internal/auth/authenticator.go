// Package auth implements credential verification with a failed-attempt
// lockout state machine, and session lifetime enforcement.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/cryptox"
	"github.com/esgtools/esgkeeper/internal/logging"
	"github.com/esgtools/esgkeeper/internal/models"
)

// CredentialStore is the slice of the credential repository the
// authenticator needs. Only the authenticator mutates failure state.
type CredentialStore interface {
	GetByIdentity(ctx context.Context, identity string) (*models.Credential, error)
	UpdateFailureState(ctx context.Context, identity string, attempts int, lockedUntil *time.Time) error
	ResetFailures(ctx context.Context, identity string, lastLogin time.Time) error
}

// Authenticator validates credentials against the store, applying the
// lockout policy. Attempts for the same identity are serialized so N
// concurrent failures count exactly N.
type Authenticator struct {
	store     CredentialStore
	log       logging.Logger
	threshold int
	lockout   time.Duration
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAuthenticator(store CredentialStore, log logging.Logger, threshold int, lockout time.Duration) *Authenticator {
	return &Authenticator{
		store:     store,
		log:       log.With("component", "auth"),
		threshold: threshold,
		lockout:   lockout,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// identityLock returns the mutex serializing attempts for one identity.
func (a *Authenticator) identityLock(identity string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[identity]
	if !ok {
		l = &sync.Mutex{}
		a.locks[identity] = l
	}
	return l
}

// Authenticate verifies identity/password and returns the public view of
// the credential. Unknown identity and wrong password fail identically with
// common.ErrAuthenticationFailed; a locked account fails with *LockedError
// without consuming an attempt. Lockout expiry is evaluated lazily here,
// at the next attempt.
func (a *Authenticator) Authenticate(ctx context.Context, identity, password string) (*models.PublicCredential, error) {
	lock := a.identityLock(identity)
	lock.Lock()
	defer lock.Unlock()

	cred, err := a.store.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// indistinguishable from a wrong password
			return nil, common.ErrAuthenticationFailed
		}
		a.log.Error(ctx, "credential lookup failed", "err", err)
		return nil, common.ErrorInternal
	}

	now := a.now()

	if cred.Locked(now) {
		return nil, &LockedError{Remaining: cred.LockedUntil.Sub(now)}
	}

	// An expired lock transitions the identity back to Active; the counter
	// restarts from zero rather than compounding onto the pre-lockout value.
	attempts := cred.FailedAttempts
	if cred.LockedUntil != nil && !cred.Locked(now) {
		attempts = 0
	}

	if cryptox.VerifyPassword(password, cred.PasswordHash, cred.Salt) {
		if err := a.store.ResetFailures(ctx, identity, now); err != nil {
			a.log.Error(ctx, "failed to reset failure counter", "err", err)
			return nil, common.ErrorInternal
		}
		return cred.Public(), nil
	}

	attempts++
	var lockedUntil *time.Time
	if attempts >= a.threshold {
		t := now.Add(a.lockout)
		lockedUntil = &t
	}
	if err := a.store.UpdateFailureState(ctx, identity, attempts, lockedUntil); err != nil {
		a.log.Error(ctx, "failed to record failed attempt", "err", err)
		return nil, common.ErrorInternal
	}

	a.log.Warn(ctx, "authentication failed", "attempts", attempts, "locked", lockedUntil != nil)
	return nil, common.ErrAuthenticationFailed
}
