package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
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

func TestCreateAdjustsSafetyScore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(int64(1), int64(2), int64(3), 5, sqlmock.AnyArg(), true, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, time.Now()))
	mock.ExpectQuery("SELECT safety_score FROM users").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"safety_score"}).AddRow(50))
	mock.ExpectExec("UPDATE users SET safety_score").
		WithArgs(int64(3), 61).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	review := &Review{MeetupID: 1, ReviewerID: 2, ReviewedUserID: 3, Rating: 5, WouldMeetAgain: true}
	err := repo.Create(context.Background(), review, DefaultScoreAdjuster)
	require.NoError(t, err)

	assert.Equal(t, int64(9), review.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateReview(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reviews").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_review_meetup_reviewer"})
	mock.ExpectRollback()

	review := &Review{MeetupID: 1, ReviewerID: 2, ReviewedUserID: 3, Rating: 5}
	err := repo.Create(context.Background(), review, DefaultScoreAdjuster)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAverageRatingPresent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT AVG").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"average", "count"}).AddRow(4.5, 2))

	rating, err := repo.AverageRating(context.Background(), 3)
	require.NoError(t, err)

	assert.True(t, rating.Present)
	assert.InDelta(t, 4.5, rating.Average, 0.001)
	assert.Equal(t, int64(2), rating.Count)
}

func TestAverageRatingAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	// AVG over zero rows is NULL, which is "no rating yet", not 0.0
	mock.ExpectQuery("SELECT AVG").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"average", "count"}).AddRow(nil, 0))

	rating, err := repo.AverageRating(context.Background(), 3)
	require.NoError(t, err)

	assert.False(t, rating.Present)
	assert.Equal(t, 0.0, rating.Average)
	assert.Equal(t, int64(0), rating.Count)
}
