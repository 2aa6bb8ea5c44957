package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockExecutor(t *testing.T) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	log := logging.New(io.Discard)
	return NewExecutor(db, log), mock
}

func TestQueryMapsRowsToRecords(t *testing.T) {
	e, mock := newMockExecutor(t)

	rows := sqlmock.NewRows([]string{"id", "name", "industry", "description"}).
		AddRow("org-1", "Acme", "energy", []byte("desc")).
		AddRow("org-2", "Globex", nil, nil)
	mock.ExpectQuery("SELECT id, name, industry, description FROM organisations").WillReturnRows(rows)

	recs, err := e.Query(context.Background(), OpOrganisationList)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "org-1", recs[0]["id"])
	assert.Equal(t, "desc", recs[0]["description"]) // []byte coerced to string
	assert.Nil(t, recs[1]["industry"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryWrapsBackendFault(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectQuery("SELECT p.id, p.name").WillReturnError(errors.New("connection reset by backend"))

	_, err := e.Query(context.Background(), OpProjectList)
	require.Error(t, err)

	var dbErr *DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, OpProjectList, dbErr.Op)
	// the caller-visible message names the operation, never the raw fault
	assert.Contains(t, err.Error(), "project_list")
	assert.NotContains(t, err.Error(), "connection reset")
}

func TestQueryRejectsUnknownOperation(t *testing.T) {
	e, mock := newMockExecutor(t)

	_, err := e.Query(context.Background(), Operation(9999))
	require.Error(t, err)

	var dbErr *DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.NoError(t, mock.ExpectationsWereMet(), "no statement may reach the backend")
}

func TestQueryRowNotFound(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectQuery("SELECT identity, email").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"identity"}))

	var identity string
	err := e.QueryRow(context.Background(), OpCredentialByIdentity, []any{"ghost"}, &identity)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestExecCommitsAndReturnsAffectedRows(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE projects").
		WithArgs("p-1", "New name", "desc", "active").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := e.Exec(context.Background(), OpProjectUpdate, "p-1", "New name", "desc", "active")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecRollsBackOnFailure(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM projects").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := e.Exec(context.Background(), OpProjectDelete, "p-1")
	require.Error(t, err)

	var dbErr *DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, OpProjectDelete, dbErr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogIsClosed(t *testing.T) {
	// every catalogued operation has a name and vice versa
	for op := range statements {
		name, ok := operationNames[op]
		assert.True(t, ok, "operation %d missing a name", int(op))
		assert.False(t, strings.ContainsAny(name, " $"), "name %q looks like statement text", name)
	}
	for op := range operationNames {
		_, err := statementFor(op)
		assert.NoError(t, err)
	}
}

func TestAssessmentOpsCoverAllFrameworks(t *testing.T) {
	for _, kind := range []FrameworkKind{FrameworkTCFD, FrameworkCSRD, FrameworkGRI, FrameworkSASB} {
		sel, err := AssessmentSelectOp(kind)
		require.NoError(t, err)
		ins, err := AssessmentInsertOp(kind)
		require.NoError(t, err)
		_, err = statementFor(sel)
		assert.NoError(t, err)
		_, err = statementFor(ins)
		assert.NoError(t, err)
	}

	_, err := AssessmentSelectOp(FrameworkKind("tcfd; DROP TABLE projects"))
	assert.Error(t, err)
	_, err = AssessmentInsertOp(FrameworkKind(""))
	assert.Error(t, err)
}
