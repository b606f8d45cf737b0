package picks

import (
	"time"

	"github.com/oddoapp/pickme-backend/internal/users"
)

// Status is the pick request lifecycle state
type Status string

const (
	StatusActive    Status = "ACTIVE"    // visible on map, waiting to be picked
	StatusMatched   Status = "MATCHED"   // a pending match references this request
	StatusCompleted Status = "COMPLETED" // meetup finished successfully
	StatusExpired   Status = "EXPIRED"   // TTL passed without a completed match
	StatusCancelled Status = "CANCELLED" // owner cancelled before being picked
)

// IsTerminal reports whether no further transition can leave this status
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Every mutation in the repository re-checks the source state inside the
// UPDATE itself; this predicate exists for pre-checks and tests.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusMatched || next == StatusExpired || next == StatusCancelled
	case StatusMatched:
		return next == StatusActive || next == StatusCompleted
	}
	return false
}

// ActivityType is the kind of company the requester is looking for
type ActivityType string

const (
	ActivityCoffee ActivityType = "coffee"
	ActivityWalk   ActivityType = "walk"
	ActivityFood   ActivityType = "food"
	ActivityGaming ActivityType = "gaming"
	ActivityStudy  ActivityType = "study"
	ActivityMovie  ActivityType = "movie"
	ActivityGym    ActivityType = "gym"
	ActivityOther  ActivityType = "other"
)

// IsValid reports whether the activity type is one of the known values
func (a ActivityType) IsValid() bool {
	switch a {
	case ActivityCoffee, ActivityWalk, ActivityFood, ActivityGaming,
		ActivityStudy, ActivityMovie, ActivityGym, ActivityOther:
		return true
	}
	return false
}

// PickRequest is one open "I want company" post
type PickRequest struct {
	ID              int64        `json:"id" db:"id"`
	UserID          int64        `json:"user_id" db:"user_id"`
	ActivityType    ActivityType `json:"activity_type" db:"activity_type"`
	Subject         string       `json:"subject" db:"subject"`
	DurationMinutes int          `json:"duration_minutes" db:"duration_minutes"`
	Latitude        float64      `json:"latitude" db:"latitude"`
	Longitude       float64      `json:"longitude" db:"longitude"`
	Status          Status       `json:"status" db:"status"`
	ExpiresAt       time.Time    `json:"expires_at" db:"expires_at"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`

	// Joined fields
	Owner *users.Profile `json:"owner,omitempty"`
}

// IsExpired reports whether the request's TTL has passed
func (p *PickRequest) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// NearbyPick is one proximity search result: a pickable request, the
// haversine distance from the search origin, and the owner's public profile
type NearbyPick struct {
	PickRequest    PickRequest   `json:"pick_request"`
	DistanceMeters float64       `json:"distance_meters"`
	Owner          users.Profile `json:"owner"`
}
