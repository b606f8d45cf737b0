package meetups

import (
	"time"
)

// Status is the meetup lifecycle state
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED" // waiting for both start confirmations
	StatusInProgress Status = "IN_PROGRESS" // both confirmed they met
	StatusCompleted  Status = "COMPLETED"   // both confirmed it ended
	StatusCancelled  Status = "CANCELLED"   // called off before it started
)

// IsTerminal reports whether no further transition can leave this status
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Meetup is the physical encounter behind an accepted match. Both sides
// independently confirm that it started and that it ended; the status only
// advances once both flags agree. Flags are monotone: once set they are
// never cleared.
type Meetup struct {
	ID                      int64      `json:"id" db:"id"`
	MatchID                 int64      `json:"match_id" db:"match_id"`
	Status                  Status     `json:"status" db:"status"`
	PickerConfirmedStart    bool       `json:"picker_confirmed_start" db:"picker_confirmed_start"`
	RequesterConfirmedStart bool       `json:"requester_confirmed_start" db:"requester_confirmed_start"`
	PickerConfirmedEnd      bool       `json:"picker_confirmed_end" db:"picker_confirmed_end"`
	RequesterConfirmedEnd   bool       `json:"requester_confirmed_end" db:"requester_confirmed_end"`
	StartedAt               *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt                 *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`

	// Joined from matches / pick_requests
	PickRequestID   int64 `json:"pick_request_id" db:"pick_request_id"`
	PickerUserID    int64 `json:"picker_user_id" db:"picker_user_id"`
	RequesterUserID int64 `json:"requester_user_id" db:"requester_user_id"`
}

// IsParticipant reports whether the user is either side of the meetup
func (m *Meetup) IsParticipant(userID int64) bool {
	return m.PickerUserID == userID || m.RequesterUserID == userID
}

// BothConfirmedStart reports whether both sides have confirmed the start
func (m *Meetup) BothConfirmedStart() bool {
	return m.PickerConfirmedStart && m.RequesterConfirmedStart
}

// BothConfirmedEnd reports whether both sides have confirmed the end
func (m *Meetup) BothConfirmedEnd() bool {
	return m.PickerConfirmedEnd && m.RequesterConfirmedEnd
}

// DurationMinutes returns how long the meetup lasted, or zero before both
// timestamps exist
func (m *Meetup) DurationMinutes() int {
	if m.StartedAt == nil || m.EndedAt == nil {
		return 0
	}
	return int(m.EndedAt.Sub(*m.StartedAt).Minutes())
}
