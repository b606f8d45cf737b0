package matches

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oddoapp/pickme-backend/internal/meetups"
	"github.com/oddoapp/pickme-backend/internal/picks"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestProposeAtomicity(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db, picks.NewPostgresRepository(db))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("UPDATE pick_requests SET status").
		WithArgs(int64(10), picks.StatusActive, picks.StatusMatched).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO matches").
		WithArgs(int64(10), int64(2), StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
	mock.ExpectCommit()

	m := &Match{PickRequestID: 10, PickerUserID: 2}
	err := repo.Propose(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, StatusPending, m.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProposeRollsBackWhenPickNotActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db, picks.NewPostgresRepository(db))

	// The conditional update matches zero rows: no match row gets inserted
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("UPDATE pick_requests SET status").
		WithArgs(int64(10), picks.StatusActive, picks.StatusMatched).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Propose(context.Background(), &Match{PickRequestID: 10, PickerUserID: 2})
	assert.ErrorIs(t, err, picks.ErrPickNotActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProposeRepeatPickIsDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db, picks.NewPostgresRepository(db))

	// The picker already has a match on this request. Even though the
	// request is MATCHED by now, the failure reads as a duplicate pick,
	// not a state error, and the status update never runs.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Propose(context.Background(), &Match{PickRequestID: 10, PickerUserID: 2})
	assert.ErrorIs(t, err, ErrAlreadyPicked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProposeDuplicatePickerRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db, picks.NewPostgresRepository(db))

	// Two concurrent proposals from the same picker can both see no
	// existing match; the unique constraint catches the loser.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("UPDATE pick_requests SET status").
		WithArgs(int64(10), picks.StatusActive, picks.StatusMatched).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO matches").
		WithArgs(int64(10), int64(2), StatusPending).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_match_pick_picker"})
	mock.ExpectRollback()

	err := repo.Propose(context.Background(), &Match{PickRequestID: 10, PickerUserID: 2})
	assert.ErrorIs(t, err, ErrAlreadyPicked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveCreatesMeetup(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db, picks.NewPostgresRepository(db))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE matches SET status").
		WithArgs(int64(5), StatusPending, StatusAccepted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO meetups").
		WithArgs(int64(5), meetups.StatusNotStarted).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
	mock.ExpectCommit()

	meetupID, err := repo.Approve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(77), meetupID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveNotPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db, picks.NewPostgresRepository(db))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE matches SET status").
		WithArgs(int64(5), StatusPending, StatusAccepted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), 5)
	assert.ErrorIs(t, err, ErrMatchNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclineReactivatesPick(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db, picks.NewPostgresRepository(db))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE matches SET status").
		WithArgs(int64(5), StatusPending, StatusDeclined).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE pick_requests SET status").
		WithArgs(int64(10), picks.StatusMatched, picks.StatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Decline(context.Background(), 5, 10)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
