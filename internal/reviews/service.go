package reviews

import (
	"context"
	"errors"

	"github.com/oddoapp/pickme-backend/internal/meetups"
)

var (
	ErrAlreadyReviewed    = errors.New("you already reviewed this meetup")
	ErrMeetupNotCompleted = errors.New("only completed meetups can be reviewed")
)

type Service interface {
	// Submit records the reviewer's take on a completed meetup. The
	// reviewed user is the other participant, never client-supplied.
	Submit(ctx context.Context, meetupID, reviewerID int64, dto *SubmitReviewDTO) (*Review, error)

	GetAverageRating(ctx context.Context, userID int64) (*AverageRating, error)
	ListForUser(ctx context.Context, userID int64) ([]*Review, error)
}

type service struct {
	repo       Repository
	meetupRepo meetups.Repository
	adjust     ScoreAdjuster
}

func NewService(repo Repository, meetupRepo meetups.Repository, adjust ScoreAdjuster) Service {
	if adjust == nil {
		adjust = DefaultScoreAdjuster
	}
	return &service{repo: repo, meetupRepo: meetupRepo, adjust: adjust}
}

func (s *service) Submit(ctx context.Context, meetupID, reviewerID int64, dto *SubmitReviewDTO) (*Review, error) {
	mu, err := s.meetupRepo.GetByID(ctx, meetupID)
	if err != nil {
		return nil, err
	}

	if !mu.IsParticipant(reviewerID) {
		return nil, meetups.ErrNotParticipant
	}
	if mu.Status != meetups.StatusCompleted {
		return nil, ErrMeetupNotCompleted
	}

	reviewedUserID := mu.PickerUserID
	if reviewerID == mu.PickerUserID {
		reviewedUserID = mu.RequesterUserID
	}

	review := &Review{
		MeetupID:       meetupID,
		ReviewerID:     reviewerID,
		ReviewedUserID: reviewedUserID,
		Rating:         dto.Rating,
		Badges:         dto.Badges,
		WouldMeetAgain: dto.WouldMeetAgain,
		Comment:        dto.Comment,
	}

	if err := s.repo.Create(ctx, review, s.adjust); err != nil {
		return nil, err
	}

	RecordReviewSubmitted(review.Rating)
	return review, nil
}

func (s *service) GetAverageRating(ctx context.Context, userID int64) (*AverageRating, error) {
	return s.repo.AverageRating(ctx, userID)
}

func (s *service) ListForUser(ctx context.Context, userID int64) ([]*Review, error) {
	return s.repo.ListForUser(ctx, userID)
}
