// internal/picks/repository_test.go

package picks

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestTransitionWinsRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE pick_requests SET status").
		WithArgs(int64(1), StatusActive, StatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Transition(context.Background(), 1, StatusActive, StatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionLosesRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	// Zero rows: the request already left ACTIVE
	mock.ExpectExec("UPDATE pick_requests SET status").
		WithArgs(int64(1), StatusActive, StatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Transition(context.Background(), 1, StatusActive, StatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireBefore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectExec("UPDATE pick_requests").
		WithArgs(StatusExpired, StatusActive, now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := repo.ExpireBefore(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkMatchedInTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE pick_requests SET status").
		WithArgs(int64(5), StatusActive, StatusMatched).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	require.NoError(t, repo.MarkMatched(tx, 5))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkMatchedNotActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE pick_requests SET status").
		WithArgs(int64(5), StatusActive, StatusMatched).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.MarkMatched(tx, 5)
	assert.ErrorIs(t, err, ErrPickNotActive)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevertToActiveNotMatched(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE pick_requests SET status").
		WithArgs(int64(5), StatusMatched, StatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.RevertToActive(tx, 5)
	assert.ErrorIs(t, err, ErrPickNotMatched)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM pick_requests").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrPickNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindNearby(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "activity_type", "subject", "duration_minutes",
		"latitude", "longitude", "status", "expires_at", "created_at",
		"owner_id", "owner_name", "owner_age", "owner_bio", "owner_interests",
		"owner_safety_score", "owner_completed_meetups", "owner_is_verified",
	}).
		AddRow(int64(10), int64(1), "coffee", "morning espresso", 30,
			51.5010, -0.1420, StatusActive, now.Add(time.Hour), now,
			int64(1), "Owner One", 30, "hi", "{coffee}", 50, 2, true).
		AddRow(int64(11), int64(3), "walk", "park loop", 45,
			51.5100, -0.1300, StatusActive, now.Add(2*time.Hour), now,
			int64(3), "Owner Two", nil, nil, "{}", 60, 0, false)

	// ST_MakePoint takes longitude first; the caller passes (lat, lng)
	mock.ExpectQuery("SELECT (.+) FROM pick_requests pr").
		WithArgs(StatusActive, int64(2), -0.1419, 51.5007, 2000.0).
		WillReturnRows(rows)

	results, err := repo.FindNearby(context.Background(), 51.5007, -0.1419, 2000, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, int64(10), results[0].PickRequest.ID)
	assert.Equal(t, "Owner One", results[0].Owner.Name)
	assert.Equal(t, int64(3), results[1].Owner.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindNearbyEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM pick_requests pr").
		WithArgs(StatusActive, int64(2), -0.1419, 51.5007, 2000.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	results, err := repo.FindNearby(context.Background(), 51.5007, -0.1419, 2000, 2)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}
