// internal/picks/service.go

package picks

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/oddoapp/pickme-backend/internal/geo"
)

var (
	ErrPickNotFound   = errors.New("pick request not found")
	ErrNotYourRequest = errors.New("you can only manage your own pick requests")
	ErrPickNotActive  = errors.New("pick request is not active")
	ErrPickNotMatched = errors.New("pick request is not matched")
	ErrInvalidRadius  = errors.New("search radius is out of range")
)

type Service interface {
	Create(ctx context.Context, userID int64, dto *CreatePickRequestDTO) (*PickRequest, error)
	Cancel(ctx context.Context, requestID, userID int64) (*PickRequest, error)
	ListOwn(ctx context.Context, userID int64) ([]*PickRequest, error)
	FindNearby(ctx context.Context, userID int64, q *NearbyQuery) ([]*NearbyPick, error)

	// ExpireSweep transitions every ACTIVE request past its TTL to EXPIRED.
	// Safe to run repeatedly and concurrently.
	ExpireSweep(ctx context.Context) (int64, error)
}

type Config struct {
	TTL                 time.Duration
	MaxSearchRadius     float64
	DefaultSearchRadius float64
}

type service struct {
	repo Repository
	cfg  Config
}

func NewService(repo Repository, cfg Config) Service {
	return &service{repo: repo, cfg: cfg}
}

func (s *service) Create(ctx context.Context, userID int64, dto *CreatePickRequestDTO) (*PickRequest, error) {
	point := geo.Point{Latitude: dto.Latitude, Longitude: dto.Longitude}
	if err := point.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	req := &PickRequest{
		UserID:          userID,
		ActivityType:    ActivityType(dto.ActivityType),
		Subject:         dto.Subject,
		DurationMinutes: dto.DurationMinutes,
		Latitude:        dto.Latitude,
		Longitude:       dto.Longitude,
		Status:          StatusActive,
		ExpiresAt:       now.Add(s.cfg.TTL),
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	RecordPickCreated(string(req.ActivityType))
	return req, nil
}

func (s *service) Cancel(ctx context.Context, requestID, userID int64) (*PickRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.UserID != userID {
		return nil, ErrNotYourRequest
	}

	ok, err := s.repo.Transition(ctx, requestID, StatusActive, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race or the request already left ACTIVE
		return nil, ErrPickNotActive
	}

	req.Status = StatusCancelled
	RecordPickCancelled()
	return req, nil
}

func (s *service) ListOwn(ctx context.Context, userID int64) ([]*PickRequest, error) {
	return s.repo.GetByUser(ctx, userID)
}

func (s *service) FindNearby(ctx context.Context, userID int64, q *NearbyQuery) ([]*NearbyPick, error) {
	origin := geo.Point{Latitude: q.Latitude, Longitude: q.Longitude}
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	radius := q.RadiusMeters
	if radius <= 0 {
		radius = s.cfg.DefaultSearchRadius
	}
	if radius > s.cfg.MaxSearchRadius {
		return nil, ErrInvalidRadius
	}

	results, err := s.repo.FindNearby(ctx, q.Latitude, q.Longitude, radius, userID)
	if err != nil {
		return nil, err
	}

	// The index decided inclusion; the reported distance is haversine.
	for _, np := range results {
		np.DistanceMeters = geo.HaversineDistance(
			q.Latitude, q.Longitude,
			np.PickRequest.Latitude, np.PickRequest.Longitude,
		)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMeters < results[j].DistanceMeters
	})

	RecordNearbySearch(len(results))
	return results, nil
}

func (s *service) ExpireSweep(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpireBefore(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		RecordPicksExpired(count)
	}
	return count, nil
}
