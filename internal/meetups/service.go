package meetups

import (
	"context"
	"errors"
)

var (
	ErrMeetupNotFound     = errors.New("meetup not found")
	ErrNotParticipant     = errors.New("you are not part of this meetup")
	ErrCannotConfirmStart = errors.New("meetup is not awaiting start confirmations")
	ErrCannotConfirmEnd   = errors.New("meetup is not in progress")
	ErrAlreadyStarted     = errors.New("meetup already started or was cancelled")
	ErrMatchNotAccepted   = errors.New("match is not in an accepted state")
)

type Service interface {
	GetMeetup(ctx context.Context, meetupID, userID int64) (*Meetup, error)
	ListForUser(ctx context.Context, userID int64) ([]*Meetup, error)
	ConfirmStart(ctx context.Context, meetupID, userID int64) (*Meetup, error)
	ConfirmEnd(ctx context.Context, meetupID, userID int64) (*Meetup, error)
	Cancel(ctx context.Context, meetupID, userID int64) (*Meetup, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// load fetches the meetup and resolves which side the caller is on
func (s *service) load(ctx context.Context, meetupID, userID int64) (*Meetup, bool, error) {
	mu, err := s.repo.GetByID(ctx, meetupID)
	if err != nil {
		return nil, false, err
	}
	if !mu.IsParticipant(userID) {
		return nil, false, ErrNotParticipant
	}
	return mu, mu.PickerUserID == userID, nil
}

func (s *service) GetMeetup(ctx context.Context, meetupID, userID int64) (*Meetup, error) {
	mu, _, err := s.load(ctx, meetupID, userID)
	return mu, err
}

func (s *service) ListForUser(ctx context.Context, userID int64) ([]*Meetup, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *service) ConfirmStart(ctx context.Context, meetupID, userID int64) (*Meetup, error) {
	before, asPicker, err := s.load(ctx, meetupID, userID)
	if err != nil {
		return nil, err
	}

	mu, err := s.repo.ConfirmStart(ctx, meetupID, asPicker)
	if err != nil {
		return nil, err
	}

	// Count only the call that actually flipped the status
	if before.Status != StatusInProgress && mu.Status == StatusInProgress {
		RecordMeetupStarted()
	}
	return mu, nil
}

func (s *service) ConfirmEnd(ctx context.Context, meetupID, userID int64) (*Meetup, error) {
	before, asPicker, err := s.load(ctx, meetupID, userID)
	if err != nil {
		return nil, err
	}

	mu, err := s.repo.ConfirmEnd(ctx, meetupID, asPicker)
	if err != nil {
		return nil, err
	}

	if before.Status != StatusCompleted && mu.Status == StatusCompleted {
		RecordMeetupCompleted(mu.DurationMinutes())
	}
	return mu, nil
}

func (s *service) Cancel(ctx context.Context, meetupID, userID int64) (*Meetup, error) {
	mu, _, err := s.load(ctx, meetupID, userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.Cancel(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyStarted
	}

	mu.Status = StatusCancelled
	RecordMeetupCancelled()
	return mu, nil
}
