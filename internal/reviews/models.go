package reviews

import (
	"time"

	"github.com/lib/pq"
)

// Review is one participant's take on a completed meetup. The reviewed
// user is always the other participant, derived server-side.
type Review struct {
	ID             int64          `json:"id" db:"id"`
	MeetupID       int64          `json:"meetup_id" db:"meetup_id"`
	ReviewerID     int64          `json:"reviewer_id" db:"reviewer_id"`
	ReviewedUserID int64          `json:"reviewed_user_id" db:"reviewed_user_id"`
	Rating         int            `json:"rating" db:"rating"`
	Badges         pq.StringArray `json:"badges" db:"badges"`
	WouldMeetAgain bool           `json:"would_meet_again" db:"would_meet_again"`
	Comment        *string        `json:"comment,omitempty" db:"comment"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

type SubmitReviewDTO struct {
	Rating         int      `json:"rating" validate:"required,min=1,max=5"`
	Badges         []string `json:"badges,omitempty" validate:"omitempty,max=5,dive,oneof=punctual friendly great_conversation safe_meetup fun"`
	WouldMeetAgain bool     `json:"would_meet_again"`
	Comment        *string  `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

// AverageRating is the aggregate exposed on profiles. Present is false
// when the user has no reviews yet, which is different from a zero average.
type AverageRating struct {
	UserID  int64   `json:"user_id"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
	Present bool    `json:"present"`
}
