package matches

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/oddoapp/pickme-backend/internal/common/database"
	"github.com/oddoapp/pickme-backend/internal/meetups"
	"github.com/oddoapp/pickme-backend/internal/picks"
	"github.com/oddoapp/pickme-backend/internal/users"
)

// uniquePickPicker is the constraint that makes a second pick of the same
// request by the same user a conflict instead of a duplicate row
const uniquePickPicker = "uq_match_pick_picker"

type Repository interface {
	// Propose atomically moves the pick request from ACTIVE to MATCHED and
	// inserts the PENDING match. Either both happen or neither does.
	Propose(ctx context.Context, m *Match) error

	// Approve atomically moves the match from PENDING to ACCEPTED, stamps
	// approved_at, and creates the NOT_STARTED meetup. Returns the new
	// meetup's ID.
	Approve(ctx context.Context, matchID int64) (int64, error)

	// Decline atomically moves the match from PENDING to DECLINED and puts
	// the pick request back to ACTIVE so other users can pick it.
	Decline(ctx context.Context, matchID, pickRequestID int64) error

	GetByID(ctx context.Context, id int64) (*Match, error)

	// ListForUser returns matches where the user is either side, newest
	// first, optionally filtered by status
	ListForUser(ctx context.Context, userID int64, status Status) ([]*Match, error)
}

type postgresRepository struct {
	db       *sqlx.DB
	pickTxns picks.TxStore
}

func NewPostgresRepository(db *sqlx.DB, pickTxns picks.TxStore) Repository {
	return &postgresRepository{db: db, pickTxns: pickTxns}
}

func (r *postgresRepository) Propose(ctx context.Context, m *Match) error {
	err := database.WithTxRetry(ctx, r.db, func(tx *sqlx.Tx) error {
		// A picker gets one proposal per request, ever. Checked before the
		// status transition so a repeat pick on an already-matched request
		// still reads as a duplicate rather than a state error.
		var exists bool
		err := tx.Get(&exists,
			`SELECT EXISTS (SELECT 1 FROM matches WHERE pick_request_id = $1 AND picker_user_id = $2)`,
			m.PickRequestID, m.PickerUserID,
		)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyPicked
		}

		if err := r.pickTxns.MarkMatched(tx, m.PickRequestID); err != nil {
			return err
		}

		query := `
            INSERT INTO matches (pick_request_id, picker_user_id, status)
            VALUES ($1, $2, $3)
            RETURNING id, created_at
        `
		return tx.QueryRowx(query, m.PickRequestID, m.PickerUserID, StatusPending).
			Scan(&m.ID, &m.CreatedAt)
	})

	if database.IsUniqueViolation(err, uniquePickPicker) {
		return ErrAlreadyPicked
	}
	if err != nil {
		return err
	}

	m.Status = StatusPending
	return nil
}

func (r *postgresRepository) Approve(ctx context.Context, matchID int64) (int64, error) {
	var meetupID int64

	err := database.WithTxRetry(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.Exec(
			`UPDATE matches SET status = $3, approved_at = $4 WHERE id = $1 AND status = $2`,
			matchID, StatusPending, StatusAccepted, time.Now(),
		)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrMatchNotPending
		}

		return tx.QueryRowx(
			`INSERT INTO meetups (match_id, status) VALUES ($1, $2) RETURNING id`,
			matchID, meetups.StatusNotStarted,
		).Scan(&meetupID)
	})

	return meetupID, err
}

func (r *postgresRepository) Decline(ctx context.Context, matchID, pickRequestID int64) error {
	return database.WithTxRetry(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.Exec(
			`UPDATE matches SET status = $3 WHERE id = $1 AND status = $2`,
			matchID, StatusPending, StatusDeclined,
		)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrMatchNotPending
		}

		return r.pickTxns.RevertToActive(tx, pickRequestID)
	})
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Match, error) {
	var m Match
	query := `
        SELECT m.id, m.pick_request_id, m.picker_user_id, m.status,
               m.approved_at, m.created_at,
               pr.user_id AS requester_user_id
        FROM matches m
        JOIN pick_requests pr ON m.pick_request_id = pr.id
        WHERE m.id = $1
    `

	err := r.db.GetContext(ctx, &m, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID int64, status Status) ([]*Match, error) {
	query := `
        SELECT m.id, m.pick_request_id, m.picker_user_id, m.status,
               m.approved_at, m.created_at,
               pr.user_id AS requester_user_id,
               pk.id AS picker_id, pk.name AS picker_name, pk.age AS picker_age,
               pk.bio AS picker_bio, pk.interests AS picker_interests,
               pk.safety_score AS picker_safety_score,
               pk.completed_meetups AS picker_completed_meetups,
               pk.is_verified AS picker_is_verified,
               rq.id AS requester_id, rq.name AS requester_name, rq.age AS requester_age,
               rq.bio AS requester_bio, rq.interests AS requester_interests,
               rq.safety_score AS requester_safety_score,
               rq.completed_meetups AS requester_completed_meetups,
               rq.is_verified AS requester_is_verified
        FROM matches m
        JOIN pick_requests pr ON m.pick_request_id = pr.id
        JOIN users pk ON m.picker_user_id = pk.id
        JOIN users rq ON pr.user_id = rq.id
        WHERE (m.picker_user_id = $1 OR pr.user_id = $1)
          AND ($2 = '' OR m.status = $2)
        ORDER BY m.created_at DESC
    `

	rows, err := r.db.QueryxContext(ctx, query, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Match
	for rows.Next() {
		var m Match
		var picker, requester users.Profile

		err := rows.Scan(
			&m.ID, &m.PickRequestID, &m.PickerUserID, &m.Status,
			&m.ApprovedAt, &m.CreatedAt, &m.RequesterUserID,
			&picker.ID, &picker.Name, &picker.Age, &picker.Bio,
			&picker.Interests, &picker.SafetyScore, &picker.CompletedMeetups,
			&picker.IsVerified,
			&requester.ID, &requester.Name, &requester.Age, &requester.Bio,
			&requester.Interests, &requester.SafetyScore, &requester.CompletedMeetups,
			&requester.IsVerified,
		)
		if err != nil {
			return nil, err
		}

		m.Picker = &picker
		m.Requester = &requester
		result = append(result, &m)
	}

	return result, rows.Err()
}
