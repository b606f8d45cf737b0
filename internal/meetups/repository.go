package meetups

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/oddoapp/pickme-backend/internal/common/database"
	"github.com/oddoapp/pickme-backend/internal/picks"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Meetup, error)
	ListForUser(ctx context.Context, userID int64) ([]*Meetup, error)

	// ConfirmStart sets the caller's start flag under a row lock. When the
	// second flag lands the meetup moves to IN_PROGRESS and startedAt is
	// stamped. Confirming again after the flag is set is a no-op.
	ConfirmStart(ctx context.Context, id int64, asPicker bool) (*Meetup, error)

	// ConfirmEnd is symmetric to ConfirmStart for the end flags. The second
	// end confirmation completes the meetup and, in the same transaction,
	// completes the match and the pick request and bumps both users'
	// completed_meetups counters.
	ConfirmEnd(ctx context.Context, id int64, asPicker bool) (*Meetup, error)

	// Cancel moves a NOT_STARTED meetup to CANCELLED
	Cancel(ctx context.Context, id int64) (bool, error)
}

type postgresRepository struct {
	db       *sqlx.DB
	pickTxns picks.TxStore
}

func NewPostgresRepository(db *sqlx.DB, pickTxns picks.TxStore) Repository {
	return &postgresRepository{db: db, pickTxns: pickTxns}
}

const meetupColumns = `
    mu.id, mu.match_id, mu.status,
    mu.picker_confirmed_start, mu.requester_confirmed_start,
    mu.picker_confirmed_end, mu.requester_confirmed_end,
    mu.started_at, mu.ended_at, mu.created_at,
    m.pick_request_id, m.picker_user_id,
    pr.user_id AS requester_user_id
`

const meetupJoins = `
    FROM meetups mu
    JOIN matches m ON mu.match_id = m.id
    JOIN pick_requests pr ON m.pick_request_id = pr.id
`

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Meetup, error) {
	var mu Meetup
	query := `SELECT ` + meetupColumns + meetupJoins + ` WHERE mu.id = $1`

	err := r.db.GetContext(ctx, &mu, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrMeetupNotFound
	}
	if err != nil {
		return nil, err
	}

	return &mu, nil
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID int64) ([]*Meetup, error) {
	var result []*Meetup
	query := `
        SELECT ` + meetupColumns + meetupJoins + `
        WHERE m.picker_user_id = $1 OR pr.user_id = $1
        ORDER BY mu.created_at DESC
    `

	err := r.db.SelectContext(ctx, &result, query, userID)
	return result, err
}

// lockForUpdate loads the meetup row with FOR UPDATE so both confirmation
// flags are read and written under the same lock
func lockForUpdate(tx *sqlx.Tx, id int64) (*Meetup, error) {
	var mu Meetup
	query := `SELECT ` + meetupColumns + meetupJoins + ` WHERE mu.id = $1 FOR UPDATE OF mu`

	err := tx.Get(&mu, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrMeetupNotFound
	}
	if err != nil {
		return nil, err
	}

	return &mu, nil
}

func saveFlags(tx *sqlx.Tx, mu *Meetup) error {
	_, err := tx.Exec(`
        UPDATE meetups
        SET status = $2,
            picker_confirmed_start = $3, requester_confirmed_start = $4,
            picker_confirmed_end = $5, requester_confirmed_end = $6,
            started_at = $7, ended_at = $8
        WHERE id = $1
    `,
		mu.ID, mu.Status,
		mu.PickerConfirmedStart, mu.RequesterConfirmedStart,
		mu.PickerConfirmedEnd, mu.RequesterConfirmedEnd,
		mu.StartedAt, mu.EndedAt,
	)
	return err
}

func (r *postgresRepository) ConfirmStart(ctx context.Context, id int64, asPicker bool) (*Meetup, error) {
	var result *Meetup

	err := database.WithTxRetry(ctx, r.db, func(tx *sqlx.Tx) error {
		mu, err := lockForUpdate(tx, id)
		if err != nil {
			return err
		}

		flag := &mu.RequesterConfirmedStart
		if asPicker {
			flag = &mu.PickerConfirmedStart
		}

		if mu.Status != StatusNotStarted {
			// Flags never reset, so a set flag on an advanced meetup means
			// this caller already confirmed: repeat calls succeed quietly.
			if *flag {
				result = mu
				return nil
			}
			return ErrCannotConfirmStart
		}

		if *flag {
			result = mu
			return nil
		}
		*flag = true

		if mu.BothConfirmedStart() {
			now := time.Now()
			mu.Status = StatusInProgress
			mu.StartedAt = &now
		}

		if err := saveFlags(tx, mu); err != nil {
			return err
		}
		result = mu
		return nil
	})

	return result, err
}

func (r *postgresRepository) ConfirmEnd(ctx context.Context, id int64, asPicker bool) (*Meetup, error) {
	var result *Meetup

	err := database.WithTxRetry(ctx, r.db, func(tx *sqlx.Tx) error {
		mu, err := lockForUpdate(tx, id)
		if err != nil {
			return err
		}

		flag := &mu.RequesterConfirmedEnd
		if asPicker {
			flag = &mu.PickerConfirmedEnd
		}

		if mu.Status != StatusInProgress {
			if mu.Status == StatusCompleted && *flag {
				result = mu
				return nil
			}
			return ErrCannotConfirmEnd
		}

		if *flag {
			result = mu
			return nil
		}
		*flag = true

		if mu.BothConfirmedEnd() {
			now := time.Now()
			mu.Status = StatusCompleted
			mu.EndedAt = &now

			if err := r.completeCascade(tx, mu); err != nil {
				return err
			}
		}

		if err := saveFlags(tx, mu); err != nil {
			return err
		}
		result = mu
		return nil
	})

	return result, err
}

// completeCascade finishes everything tied to a completed meetup inside
// the caller's transaction: the match, the pick request, and both users'
// completed-meetup counters
func (r *postgresRepository) completeCascade(tx *sqlx.Tx, mu *Meetup) error {
	res, err := tx.Exec(
		`UPDATE matches SET status = 'COMPLETED' WHERE id = $1 AND status = 'ACCEPTED'`,
		mu.MatchID,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMatchNotAccepted
	}

	if err := r.pickTxns.Complete(tx, mu.PickRequestID); err != nil {
		return err
	}

	_, err = tx.Exec(
		`UPDATE users SET completed_meetups = completed_meetups + 1 WHERE id IN ($1, $2)`,
		mu.PickerUserID, mu.RequesterUserID,
	)
	return err
}

func (r *postgresRepository) Cancel(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE meetups SET status = $2 WHERE id = $1 AND status = $3`,
		id, StatusCancelled, StatusNotStarted,
	)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
