package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const maxPageSize = 100

func normalisePage(page, size, fallback int) (int, int) {
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

// requireAffected turns a short write into sql.ErrNoRows so callers can treat
// a lost compare-and-set the same way as a missing row.
func requireAffected(res sql.Result, want int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != want {
		return sql.ErrNoRows
	}
	return nil
}

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation = "23505"

func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
