package matches

import (
	"context"
	"errors"
	"time"

	"github.com/oddoapp/pickme-backend/internal/picks"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchNotPending  = errors.New("match is not pending")
	ErrNotYourMatch     = errors.New("only the request owner can respond to this match")
	ErrCannotPickOwn    = errors.New("you cannot pick your own request")
	ErrAlreadyPicked    = errors.New("you already picked this request")
	ErrPickExpired      = errors.New("pick request has expired")
	ErrTooManyProposals = errors.New("proposal limit reached, try again later")

	ErrInvalidStatusFilter = errors.New("invalid status filter")
)

// ProposalLimiter bounds how many picks a user can propose per window.
// Allow returns false when the user is over the limit.
type ProposalLimiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}

// Notifier delivers best-effort notifications to the other side of a
// match. Implementations must not block the request path.
type Notifier interface {
	PickProposed(ctx context.Context, requesterUserID, pickerUserID, matchID int64)
	MatchAccepted(ctx context.Context, pickerUserID, requesterUserID, matchID int64)
}

type Service interface {
	// Propose creates the PENDING match for an ACTIVE pick request
	Propose(ctx context.Context, pickerUserID, pickRequestID int64) (*Match, error)

	// Approve accepts the PENDING match and returns the match plus the ID
	// of the meetup created for it
	Approve(ctx context.Context, matchID, userID int64) (*Match, int64, error)

	// Decline rejects the PENDING match and reactivates the pick request
	Decline(ctx context.Context, matchID, userID int64) (*Match, error)

	GetMatch(ctx context.Context, matchID, userID int64) (*Match, error)
	ListForUser(ctx context.Context, userID int64, status Status) ([]*Match, error)
}

type service struct {
	repo     Repository
	pickRepo picks.Repository
	limiter  ProposalLimiter
	notifier Notifier
}

func NewService(repo Repository, pickRepo picks.Repository, limiter ProposalLimiter, notifier Notifier) Service {
	return &service{repo: repo, pickRepo: pickRepo, limiter: limiter, notifier: notifier}
}

func (s *service) Propose(ctx context.Context, pickerUserID, pickRequestID int64) (*Match, error) {
	req, err := s.pickRepo.GetByID(ctx, pickRequestID)
	if err != nil {
		return nil, err
	}

	if req.UserID == pickerUserID {
		return nil, ErrCannotPickOwn
	}
	if req.IsExpired(time.Now()) {
		// The sweeper may not have flipped it yet; reject rather than
		// matching against a request the owner no longer expects.
		return nil, ErrPickExpired
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, pickerUserID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrTooManyProposals
		}
	}

	m := &Match{
		PickRequestID:   pickRequestID,
		PickerUserID:    pickerUserID,
		RequesterUserID: req.UserID,
	}
	if err := s.repo.Propose(ctx, m); err != nil {
		return nil, err
	}

	RecordMatchProposed()
	if s.notifier != nil {
		s.notifier.PickProposed(ctx, req.UserID, pickerUserID, m.ID)
	}
	return m, nil
}

func (s *service) Approve(ctx context.Context, matchID, userID int64) (*Match, int64, error) {
	m, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, 0, err
	}

	if m.RequesterUserID != userID {
		return nil, 0, ErrNotYourMatch
	}

	meetupID, err := s.repo.Approve(ctx, matchID)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	m.Status = StatusAccepted
	m.ApprovedAt = &now

	RecordMatchResolved("accepted")
	if s.notifier != nil {
		s.notifier.MatchAccepted(ctx, m.PickerUserID, userID, m.ID)
	}
	return m, meetupID, nil
}

func (s *service) Decline(ctx context.Context, matchID, userID int64) (*Match, error) {
	m, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if m.RequesterUserID != userID {
		return nil, ErrNotYourMatch
	}

	if err := s.repo.Decline(ctx, matchID, m.PickRequestID); err != nil {
		return nil, err
	}

	m.Status = StatusDeclined
	RecordMatchResolved("declined")
	return m, nil
}

func (s *service) GetMatch(ctx context.Context, matchID, userID int64) (*Match, error) {
	m, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.InvolvesUser(userID) {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

func (s *service) ListForUser(ctx context.Context, userID int64, status Status) ([]*Match, error) {
	if status != "" {
		switch status {
		case StatusPending, StatusAccepted, StatusDeclined, StatusCompleted:
		default:
			return nil, ErrInvalidStatusFilter
		}
	}
	return s.repo.ListForUser(ctx, userID, status)
}
