package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/dbx"
	"github.com/esgtools/esgkeeper/internal/logging"
)

// Record is one result row keyed by column name.
type Record map[string]any

// DatabaseError wraps any backend-level fault leaving the executor. Its
// message carries only the operation name; the raw driver error is kept for
// the diagnostic log and errors.Is/As, never for end users.
type DatabaseError struct {
	Op  Operation
	err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database operation %s failed", e.Op)
}

func (e *DatabaseError) Unwrap() error { return e.err }

// Executor runs statements from the closed catalog over the pooled store.
// Connections are checked out per call by database/sql and returned on
// every exit path; a liveness ping precedes each use.
type Executor struct {
	db  *sql.DB
	log logging.Logger
}

func NewExecutor(db *sql.DB, log logging.Logger) *Executor {
	return &Executor{db: db, log: log.With("component", "storage")}
}

// DB exposes the underlying pool for lifecycle management (Close).
func (e *Executor) DB() *sql.DB { return e.db }

func (e *Executor) fail(ctx context.Context, op Operation, err error) *DatabaseError {
	// full context to the diagnostic log only
	e.log.Error(ctx, "statement failed", "op", op.String(), "err", err)
	return &DatabaseError{Op: op, err: err}
}

// Query executes a catalog select and maps every result row to a Record.
// Row order is the backend's natural result order.
func (e *Executor) Query(ctx context.Context, op Operation, args ...any) ([]Record, error) {
	stmt, err := statementFor(op)
	if err != nil {
		return nil, e.fail(ctx, op, err)
	}
	if err := e.db.PingContext(ctx); err != nil {
		return nil, e.fail(ctx, op, err)
	}

	rows, err := e.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, e.fail(ctx, op, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, e.fail(ctx, op, err)
	}

	var result []Record
	for rows.Next() {
		values := make([]any, len(cols))
		dests := make([]any, len(cols))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, e.fail(ctx, op, err)
		}
		rec := make(Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, e.fail(ctx, op, err)
	}
	return result, nil
}

// QueryRow executes a catalog select expected to yield at most one row and
// scans it into dest. A missing row is reported as common.ErrorNotFound.
func (e *Executor) QueryRow(ctx context.Context, op Operation, args []any, dest ...any) error {
	stmt, err := statementFor(op)
	if err != nil {
		return e.fail(ctx, op, err)
	}
	if err := e.db.PingContext(ctx); err != nil {
		return e.fail(ctx, op, err)
	}

	if err := e.db.QueryRowContext(ctx, stmt, args...).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return e.fail(ctx, op, err)
	}
	return nil
}

// Exec executes a catalog insert/update/delete inside a transaction:
// commit on success, rollback on failure. Returns the affected row count.
func (e *Executor) Exec(ctx context.Context, op Operation, args ...any) (int64, error) {
	stmt, err := statementFor(op)
	if err != nil {
		return 0, e.fail(ctx, op, err)
	}
	if err := e.db.PingContext(ctx); err != nil {
		return 0, e.fail(ctx, op, err)
	}

	var affected int64
	err = dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, e.fail(ctx, op, err)
	}
	return affected, nil
}
