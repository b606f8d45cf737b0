package matches

import (
	"time"

	"github.com/oddoapp/pickme-backend/internal/users"
)

// Status is the match lifecycle state
type Status string

const (
	StatusPending   Status = "PENDING"   // picker proposed, waiting on the requester
	StatusAccepted  Status = "ACCEPTED"  // requester approved, a meetup exists
	StatusDeclined  Status = "DECLINED"  // requester declined, request went back to ACTIVE
	StatusCompleted Status = "COMPLETED" // meetup ended with both confirmations
)

// IsTerminal reports whether no further transition can leave this status
func (s Status) IsTerminal() bool {
	return s == StatusDeclined || s == StatusCompleted
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Repository mutations re-check the source state inside the UPDATE; this
// predicate exists for pre-checks and tests.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusAccepted || next == StatusDeclined
	case StatusAccepted:
		return next == StatusCompleted
	}
	return false
}

// Match records that one user picked another user's open request. The
// requester is the request's owner; the picker is the user who responded.
type Match struct {
	ID            int64      `json:"id" db:"id"`
	PickRequestID int64      `json:"pick_request_id" db:"pick_request_id"`
	PickerUserID  int64      `json:"picker_user_id" db:"picker_user_id"`
	Status        Status     `json:"status" db:"status"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	// Joined from pick_requests
	RequesterUserID int64 `json:"requester_user_id" db:"requester_user_id"`

	// Joined profiles, populated on list endpoints
	Picker    *users.Profile `json:"picker,omitempty"`
	Requester *users.Profile `json:"requester,omitempty"`
}

// InvolvesUser reports whether the user is either side of the match
func (m *Match) InvolvesUser(userID int64) bool {
	return m.PickerUserID == userID || m.RequesterUserID == userID
}
