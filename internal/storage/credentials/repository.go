// Package credentials persists Credential rows through the closed statement
// catalog. Lockout bookkeeping lives in the store, not in per-call state, so
// it survives process restarts.
package credentials

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/esgtools/esgkeeper/internal/models"
	"github.com/esgtools/esgkeeper/internal/storage"
)

type Repository struct {
	exec *storage.Executor
}

func NewRepository(exec *storage.Executor) *Repository {
	return &Repository{exec: exec}
}

// GetByIdentity returns the full credential row, hash and salt included.
// A missing identity surfaces as common.ErrorNotFound.
func (r *Repository) GetByIdentity(ctx context.Context, identity string) (*models.Credential, error) {
	var (
		cred        models.Credential
		hashHex     string
		saltHex     string
		role        string
		lockedUntil sql.NullTime
		lastLogin   sql.NullTime
	)

	err := r.exec.QueryRow(ctx, storage.OpCredentialByIdentity, []any{identity},
		&cred.Identity, &cred.Email, &cred.DisplayName, &hashHex, &saltHex, &role,
		&cred.FailedAttempts, &lockedUntil, &lastLogin)
	if err != nil {
		return nil, err
	}

	if cred.PasswordHash, err = hex.DecodeString(hashHex); err != nil {
		return nil, fmt.Errorf("corrupt password hash for credential: %w", err)
	}
	if cred.Salt, err = hex.DecodeString(saltHex); err != nil {
		return nil, fmt.Errorf("corrupt salt for credential: %w", err)
	}

	cred.Role = models.Role(role)
	if lockedUntil.Valid {
		t := lockedUntil.Time
		cred.LockedUntil = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		cred.LastLogin = &t
	}
	return &cred, nil
}

// Create inserts a credential row. An existing identity is left untouched
// (bootstrap seeding must be idempotent).
func (r *Repository) Create(ctx context.Context, c *models.Credential) error {
	_, err := r.exec.Exec(ctx, storage.OpCredentialInsert,
		c.Identity, c.Email, c.DisplayName,
		hex.EncodeToString(c.PasswordHash), hex.EncodeToString(c.Salt), string(c.Role))
	return err
}

// UpdateFailureState stores the failure counter and, when the threshold was
// reached, the lockout deadline. A nil lockedUntil clears any stale lock.
func (r *Repository) UpdateFailureState(ctx context.Context, identity string, attempts int, lockedUntil *time.Time) error {
	var until any
	if lockedUntil != nil {
		until = *lockedUntil
	}
	_, err := r.exec.Exec(ctx, storage.OpCredentialUpdateFailureState, identity, attempts, until)
	return err
}

// ResetFailures zeroes the counter, clears the lock, and stamps last_login.
func (r *Repository) ResetFailures(ctx context.Context, identity string, lastLogin time.Time) error {
	_, err := r.exec.Exec(ctx, storage.OpCredentialResetFailures, identity, lastLogin)
	return err
}
