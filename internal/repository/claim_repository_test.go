package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lostid-api/internal/models"
)

var claimCols = []string{"id", "lost_id_id", "claimant_student_id", "verification_details", "status", "claim_date", "admin_notes", "processed_by", "processed_at", "collection_date"}

func TestClaimCreateWithTxDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO claims").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	err = repo.CreateWithTx(context.Background(), tx, &models.Claim{LostItemID: "l1", ClaimantID: "s1", Status: models.ClaimPending})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimLockByIDsOrdersAndLocks(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM claims WHERE id = ANY($1) ORDER BY id FOR UPDATE")).
		WithArgs(pq.Array([]string{"b", "a"})).
		WillReturnRows(sqlmock.NewRows(claimCols).
			AddRow("a", "l1", "s1", "my student card", "pending", now, nil, nil, nil, nil).
			AddRow("b", "l2", "s2", "my passport", "pending", now, nil, nil, nil, nil))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	claims, err := repo.LockByIDs(context.Background(), tx, []string{"b", "a"})
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, "a", claims[0].ID)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimUpdateStatusCompareAndSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	notes := "ok"
	admin := "a1"
	at := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = $2")).
		WithArgs("c1", models.ClaimPending, models.ClaimApproved, &notes, &admin, &at, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	err = repo.UpdateStatusWithTx(context.Background(), tx, "c1", ClaimStatusUpdate{
		From: models.ClaimPending, To: models.ClaimApproved, AdminNotes: &notes, ProcessedBy: &admin, ProcessedAt: &at,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimBulkUpdateRequiresEveryRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = ANY($1) AND status = $2")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	err = repo.BulkUpdateStatusWithTx(context.Background(), tx, []string{"a", "b"}, ClaimStatusUpdate{From: models.ClaimPending, To: models.ClaimApproved})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimDeleteWithTxOnlyWhenStatusMatches(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM claims WHERE id = $1 AND status = $2")).
		WithArgs("c1", models.ClaimPending).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.DeleteWithTx(context.Background(), tx, "c1", models.ClaimPending))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimCountActiveForItemIncludesApproved(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM claims WHERE lost_id_id = $1 AND status IN ('pending', 'approved')")).
		WithArgs("l1").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	count, err := repo.CountActiveForItem(context.Background(), tx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimListScopesAndSorts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	status := models.ClaimPending
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND c.claimant_student_id = $1 AND c.status = $2 ORDER BY l.student_name ASC, c.id LIMIT 10 OFFSET 0")).
		WithArgs("s1", status).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "lost_student_name"}).AddRow("c1", "pending", "Jane Doe"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM claims c")).WithArgs("s1", status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	claims, total, err := repo.List(context.Background(), models.ClaimFilter{
		ClaimantID: "s1", Status: &status, SortBy: models.ClaimSortLostStudentName, SortOrder: "asc", PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "Jane Doe", claims[0].LostStudentName)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimListFallsBackOnUnknownSort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.claim_date DESC, c.id LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	claims, total, err := repo.List(context.Background(), models.ClaimFilter{SortBy: "password_hash; --"})
	require.NoError(t, err)
	assert.Empty(t, claims)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimFindDetailForClaimant(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id = $1 AND c.claimant_student_id = $2")).WithArgs("c1", "other").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindDetailForClaimant(context.Background(), "c1", "other")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
