package picks

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/oddoapp/pickme-backend/internal/users"
)

type Repository interface {
	Create(ctx context.Context, req *PickRequest) error
	GetByID(ctx context.Context, id int64) (*PickRequest, error)
	GetByUser(ctx context.Context, userID int64) ([]*PickRequest, error)

	// Transition flips status from one state to another in a single
	// conditional UPDATE. It returns false when the request was not in the
	// expected source state (someone else won the race, or the caller's
	// precondition no longer holds).
	Transition(ctx context.Context, id int64, from, to Status) (bool, error)

	// ExpireBefore marks every ACTIVE request whose TTL passed before now
	// as EXPIRED and returns how many rows changed
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)

	FindNearby(ctx context.Context, lat, lng, radiusMeters float64, excludeUserID int64) ([]*NearbyPick, error)
}

// TxStore exposes the named cross-entity transitions other lifecycles fold
// into their own transactions: propose marks a request MATCHED, a decline
// reactivates it, and a finished meetup completes it.
type TxStore interface {
	MarkMatched(tx *sqlx.Tx, id int64) error
	RevertToActive(tx *sqlx.Tx, id int64) error
	Complete(tx *sqlx.Tx, id int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *postgresRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, req *PickRequest) error {
	query := `
        INSERT INTO pick_requests (
            user_id, activity_type, subject, duration_minutes,
            latitude, longitude, location, status, expires_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6,
            ST_SetSRID(ST_MakePoint($6, $5), 4326)::geography,
            $7, $8
        )
        RETURNING id, created_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		req.UserID, req.ActivityType, req.Subject, req.DurationMinutes,
		req.Latitude, req.Longitude, req.Status, req.ExpiresAt,
	).Scan(&req.ID, &req.CreatedAt)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*PickRequest, error) {
	var req PickRequest
	query := `
        SELECT id, user_id, activity_type, subject, duration_minutes,
               latitude, longitude, status, expires_at, created_at
        FROM pick_requests
        WHERE id = $1
    `

	err := r.db.GetContext(ctx, &req, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrPickNotFound
	}
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func (r *postgresRepository) GetByUser(ctx context.Context, userID int64) ([]*PickRequest, error) {
	var requests []*PickRequest
	query := `
        SELECT id, user_id, activity_type, subject, duration_minutes,
               latitude, longitude, status, expires_at, created_at
        FROM pick_requests
        WHERE user_id = $1
        ORDER BY created_at DESC
    `

	err := r.db.SelectContext(ctx, &requests, query, userID)
	return requests, err
}

func (r *postgresRepository) Transition(ctx context.Context, id int64, from, to Status) (bool, error) {
	query := `UPDATE pick_requests SET status = $3 WHERE id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *postgresRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	query := `
        UPDATE pick_requests
        SET status = $1
        WHERE status = $2 AND expires_at < $3
    `

	res, err := r.db.ExecContext(ctx, query, StatusExpired, StatusActive, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindNearby delegates the coarse radius filter to the PostGIS geography
// index (ST_DWithin) and orders by index distance. The caller reports the
// haversine distance instead; when the two disagree near the boundary the
// index's inclusion decision wins.
func (r *postgresRepository) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, excludeUserID int64) ([]*NearbyPick, error) {
	query := `
        SELECT pr.id, pr.user_id, pr.activity_type, pr.subject,
               pr.duration_minutes, pr.latitude, pr.longitude,
               pr.status, pr.expires_at, pr.created_at,
               u.id AS owner_id, u.name AS owner_name, u.age AS owner_age,
               u.bio AS owner_bio, u.interests AS owner_interests,
               u.safety_score AS owner_safety_score,
               u.completed_meetups AS owner_completed_meetups,
               u.is_verified AS owner_is_verified
        FROM pick_requests pr
        JOIN users u ON pr.user_id = u.id
        WHERE pr.status = $1
          AND pr.user_id <> $2
          AND pr.expires_at > NOW()
          AND ST_DWithin(
              pr.location,
              ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography,
              $5
          )
        ORDER BY ST_Distance(
            pr.location,
            ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography
        )
    `

	rows, err := r.db.QueryxContext(ctx, query, StatusActive, excludeUserID, lng, lat, radiusMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*NearbyPick
	for rows.Next() {
		var np NearbyPick
		var owner users.Profile

		err := rows.Scan(
			&np.PickRequest.ID, &np.PickRequest.UserID, &np.PickRequest.ActivityType,
			&np.PickRequest.Subject, &np.PickRequest.DurationMinutes,
			&np.PickRequest.Latitude, &np.PickRequest.Longitude,
			&np.PickRequest.Status, &np.PickRequest.ExpiresAt, &np.PickRequest.CreatedAt,
			&owner.ID, &owner.Name, &owner.Age, &owner.Bio, &owner.Interests,
			&owner.SafetyScore, &owner.CompletedMeetups, &owner.IsVerified,
		)
		if err != nil {
			return nil, err
		}

		np.Owner = owner
		results = append(results, &np)
	}

	return results, rows.Err()
}

// Tx-scoped transitions used by the match and meetup lifecycles.

func (r *postgresRepository) MarkMatched(tx *sqlx.Tx, id int64) error {
	return transitionTx(tx, id, StatusActive, StatusMatched, ErrPickNotActive)
}

func (r *postgresRepository) RevertToActive(tx *sqlx.Tx, id int64) error {
	return transitionTx(tx, id, StatusMatched, StatusActive, ErrPickNotMatched)
}

func (r *postgresRepository) Complete(tx *sqlx.Tx, id int64) error {
	return transitionTx(tx, id, StatusMatched, StatusCompleted, ErrPickNotMatched)
}

func transitionTx(tx *sqlx.Tx, id int64, from, to Status, stateErr error) error {
	res, err := tx.Exec(`UPDATE pick_requests SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return stateErr
	}
	return nil
}
