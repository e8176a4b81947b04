package repository

import (
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestNormalisePage(t *testing.T) {
	page, size := normalisePage(0, 0, 10)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)

	page, size = normalisePage(3, 500, 10)
	assert.Equal(t, 3, page)
	assert.Equal(t, maxPageSize, size)
}

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, requireAffected(sqlmock.NewResult(0, 2), 2))
	assert.ErrorIs(t, requireAffected(sqlmock.NewResult(0, 0), 1), sql.ErrNoRows)
}

func TestTranslateUnique(t *testing.T) {
	assert.Equal(t, ErrDuplicate, translateUnique(&pq.Error{Code: "23505"}))
	other := &pq.Error{Code: "23503"}
	assert.Equal(t, error(other), translateUnique(other))
}
