package reviews

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/oddoapp/pickme-backend/internal/common/database"
)

// uniqueMeetupReviewer makes a second review of the same meetup by the
// same user a conflict instead of a duplicate row
const uniqueMeetupReviewer = "uq_review_meetup_reviewer"

type Repository interface {
	// Create inserts the review and applies the safety-score adjustment to
	// the reviewed user in one transaction. The reviewed user's row is
	// locked so concurrent reviews serialize instead of clobbering each
	// other's adjustment.
	Create(ctx context.Context, review *Review, adjust ScoreAdjuster) error

	AverageRating(ctx context.Context, userID int64) (*AverageRating, error)
	ListForUser(ctx context.Context, userID int64) ([]*Review, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, review *Review, adjust ScoreAdjuster) error {
	err := database.WithTxRetry(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
            INSERT INTO reviews (
                meetup_id, reviewer_id, reviewed_user_id,
                rating, badges, would_meet_again, comment
            ) VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id, created_at
        `
		err := tx.QueryRowx(
			query,
			review.MeetupID, review.ReviewerID, review.ReviewedUserID,
			review.Rating, pq.Array(review.Badges), review.WouldMeetAgain, review.Comment,
		).Scan(&review.ID, &review.CreatedAt)
		if err != nil {
			return err
		}

		var current int
		err = tx.Get(&current,
			`SELECT safety_score FROM users WHERE id = $1 FOR UPDATE`,
			review.ReviewedUserID,
		)
		if err != nil {
			return err
		}

		next := adjust(current, review.Rating, review.WouldMeetAgain)
		_, err = tx.Exec(
			`UPDATE users SET safety_score = $2 WHERE id = $1`,
			review.ReviewedUserID, next,
		)
		return err
	})

	if database.IsUniqueViolation(err, uniqueMeetupReviewer) {
		return ErrAlreadyReviewed
	}
	return err
}

func (r *postgresRepository) AverageRating(ctx context.Context, userID int64) (*AverageRating, error) {
	var row struct {
		Average sql.NullFloat64 `db:"average"`
		Count   int64           `db:"count"`
	}

	query := `
        SELECT AVG(rating) AS average, COUNT(*) AS count
        FROM reviews
        WHERE reviewed_user_id = $1
    `
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, err
	}

	result := &AverageRating{UserID: userID, Count: row.Count}
	if row.Average.Valid {
		result.Average = row.Average.Float64
		result.Present = true
	}
	return result, nil
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID int64) ([]*Review, error) {
	var result []*Review
	query := `
        SELECT id, meetup_id, reviewer_id, reviewed_user_id,
               rating, badges, would_meet_again, comment, created_at
        FROM reviews
        WHERE reviewed_user_id = $1
        ORDER BY created_at DESC
    `

	err := r.db.SelectContext(ctx, &result, query, userID)
	return result, err
}
