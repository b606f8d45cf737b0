package users

import (
	"time"

	"github.com/lib/pq"
)

// User is the account row. The lifecycle packages only read these fields
// and bump safety_score / completed_meetups inside their own transactions.
type User struct {
	ID               int64          `json:"id" db:"id"`
	Email            string         `json:"email" db:"email"`
	PasswordHash     string         `json:"-" db:"password_hash"`
	Name             string         `json:"name" db:"name"`
	PhoneNumber      *string        `json:"phone_number,omitempty" db:"phone_number"`
	Age              *int           `json:"age,omitempty" db:"age"`
	Bio              *string        `json:"bio,omitempty" db:"bio"`
	Interests        pq.StringArray `json:"interests" db:"interests"`
	SafetyScore      int            `json:"safety_score" db:"safety_score"`
	CompletedMeetups int            `json:"completed_meetups" db:"completed_meetups"`
	IsVerified       bool           `json:"is_verified" db:"is_verified"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

// Profile is the public view of a user that shows up in nearby results
// and match listings
type Profile struct {
	ID               int64          `json:"id" db:"id"`
	Name             string         `json:"name" db:"name"`
	Age              *int           `json:"age,omitempty" db:"age"`
	Bio              *string        `json:"bio,omitempty" db:"bio"`
	Interests        pq.StringArray `json:"interests" db:"interests"`
	SafetyScore      int            `json:"safety_score" db:"safety_score"`
	CompletedMeetups int            `json:"completed_meetups" db:"completed_meetups"`
	IsVerified       bool           `json:"is_verified" db:"is_verified"`
}

type UpdateProfileDTO struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	PhoneNumber *string  `json:"phone_number,omitempty" validate:"omitempty,e164"`
	Age         *int     `json:"age,omitempty" validate:"omitempty,min=18,max=120"`
	Bio         *string  `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Interests   []string `json:"interests,omitempty" validate:"omitempty,max=10,dive,min=1,max=50"`
}
