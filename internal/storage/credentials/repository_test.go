package credentials

import (
	"context"
	"encoding/hex"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/logging"
	"github.com/esgtools/esgkeeper/internal/models"
	"github.com/esgtools/esgkeeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialColumns = []string{
	"identity", "email", "display_name", "password_hash", "salt", "role",
	"failed_attempts", "locked_until", "last_login",
}

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	log := logging.New(io.Discard)
	return NewRepository(storage.NewExecutor(db, log)), mock
}

func TestGetByIdentity(t *testing.T) {
	repo, mock := newRepo(t)

	hash := []byte{0xde, 0xad}
	salt := []byte{0xbe, 0xef}
	locked := time.Now().Add(10 * time.Minute).UTC()

	rows := sqlmock.NewRows(credentialColumns).AddRow(
		"alice", "alice@example.com", "Alice",
		hex.EncodeToString(hash), hex.EncodeToString(salt), "user",
		2, locked, nil)
	mock.ExpectQuery("SELECT identity, email").WithArgs("alice").WillReturnRows(rows)

	cred, err := repo.GetByIdentity(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", cred.Identity)
	assert.Equal(t, hash, cred.PasswordHash)
	assert.Equal(t, salt, cred.Salt)
	assert.Equal(t, models.RoleUser, cred.Role)
	assert.Equal(t, 2, cred.FailedAttempts)
	require.NotNil(t, cred.LockedUntil)
	assert.True(t, cred.LockedUntil.Equal(locked))
	assert.Nil(t, cred.LastLogin)
}

func TestGetByIdentityNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("SELECT identity, email").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(credentialColumns))

	_, err := repo.GetByIdentity(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByIdentityCorruptHash(t *testing.T) {
	repo, mock := newRepo(t)

	rows := sqlmock.NewRows(credentialColumns).AddRow(
		"alice", "a@e.com", "Alice", "not-hex", "beef", "user", 0, nil, nil)
	mock.ExpectQuery("SELECT identity, email").WithArgs("alice").WillReturnRows(rows)

	_, err := repo.GetByIdentity(context.Background(), "alice")
	assert.Error(t, err)
}

func TestUpdateFailureState(t *testing.T) {
	repo, mock := newRepo(t)

	locked := time.Now().Add(15 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE credentials").
		WithArgs("alice", 3, locked).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateFailureState(context.Background(), "alice", 3, &locked)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetFailures(t *testing.T) {
	repo, mock := newRepo(t)

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE credentials").
		WithArgs("alice", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ResetFailures(context.Background(), "alice", now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStoresHashAndSaltTogether(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("bob", "bob@example.com", "Bob", "dead", "beef", "user").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.Credential{
		Identity:     "bob",
		Email:        "bob@example.com",
		DisplayName:  "Bob",
		PasswordHash: []byte{0xde, 0xad},
		Salt:         []byte{0xbe, 0xef},
		Role:         models.RoleUser,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
