package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

const maxPageSize = 100

// withTx runs fn inside a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db txProvider, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Storage(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Storage(err, "failed to commit transaction")
	}
	return nil
}

// notFoundOr maps a missing row to a 404 and anything else to a storage failure.
func notFoundOr(err error, notFound, storage string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Storage(err, storage)
}

// lostRace maps a compare-and-set that matched no row to a state conflict.
func lostRace(err error, conflict, storage string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrInvalidStateTransition, conflict)
	}
	return appErrors.Storage(err, storage)
}

func pageParams(page, size, fallback int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = fallback
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
