package matches

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oddoapp/pickme-backend/internal/picks"
)

type mockPickRepo struct {
	byID map[int64]*picks.PickRequest
}

func (m *mockPickRepo) Create(ctx context.Context, req *picks.PickRequest) error { return nil }

func (m *mockPickRepo) GetByID(ctx context.Context, id int64) (*picks.PickRequest, error) {
	req, ok := m.byID[id]
	if !ok {
		return nil, picks.ErrPickNotFound
	}
	return req, nil
}

func (m *mockPickRepo) GetByUser(ctx context.Context, userID int64) ([]*picks.PickRequest, error) {
	return nil, nil
}

func (m *mockPickRepo) Transition(ctx context.Context, id int64, from, to picks.Status) (bool, error) {
	return true, nil
}

func (m *mockPickRepo) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (m *mockPickRepo) FindNearby(ctx context.Context, lat, lng, radius float64, excludeUserID int64) ([]*picks.NearbyPick, error) {
	return nil, nil
}

type mockMatchRepo struct {
	byID       map[int64]*Match
	proposeErr error
	approveErr error
	declineErr error
	meetupID   int64
	declined   []int64
}

func (m *mockMatchRepo) Propose(ctx context.Context, match *Match) error {
	if m.proposeErr != nil {
		return m.proposeErr
	}
	match.ID = 1
	match.Status = StatusPending
	match.CreatedAt = time.Now()
	return nil
}

func (m *mockMatchRepo) Approve(ctx context.Context, matchID int64) (int64, error) {
	if m.approveErr != nil {
		return 0, m.approveErr
	}
	return m.meetupID, nil
}

func (m *mockMatchRepo) Decline(ctx context.Context, matchID, pickRequestID int64) error {
	if m.declineErr != nil {
		return m.declineErr
	}
	m.declined = append(m.declined, matchID)
	return nil
}

func (m *mockMatchRepo) GetByID(ctx context.Context, id int64) (*Match, error) {
	match, ok := m.byID[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

func (m *mockMatchRepo) ListForUser(ctx context.Context, userID int64, status Status) ([]*Match, error) {
	return nil, nil
}

type stubLimiter struct {
	allow bool
}

func (l *stubLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	return l.allow, nil
}

type recordingNotifier struct {
	proposed []int64
	accepted []int64
}

func (n *recordingNotifier) PickProposed(ctx context.Context, requesterUserID, pickerUserID, matchID int64) {
	n.proposed = append(n.proposed, matchID)
}

func (n *recordingNotifier) MatchAccepted(ctx context.Context, pickerUserID, requesterUserID, matchID int64) {
	n.accepted = append(n.accepted, matchID)
}

func activePick(id, ownerID int64) *picks.PickRequest {
	return &picks.PickRequest{
		ID:        id,
		UserID:    ownerID,
		Status:    picks.StatusActive,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestProposePick(t *testing.T) {
	pickRepo := &mockPickRepo{byID: map[int64]*picks.PickRequest{10: activePick(10, 1)}}
	repo := &mockMatchRepo{byID: map[int64]*Match{}}
	notifier := &recordingNotifier{}
	svc := NewService(repo, pickRepo, &stubLimiter{allow: true}, notifier)

	match, err := svc.Propose(context.Background(), 2, 10)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, match.Status)
	assert.Equal(t, int64(2), match.PickerUserID)
	assert.Equal(t, int64(1), match.RequesterUserID)
	assert.Equal(t, []int64{match.ID}, notifier.proposed)
}

func TestProposeOwnPick(t *testing.T) {
	pickRepo := &mockPickRepo{byID: map[int64]*picks.PickRequest{10: activePick(10, 1)}}
	svc := NewService(&mockMatchRepo{}, pickRepo, nil, nil)

	_, err := svc.Propose(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrCannotPickOwn)
}

func TestProposeExpiredPick(t *testing.T) {
	expired := activePick(10, 1)
	expired.ExpiresAt = time.Now().Add(-time.Minute)

	pickRepo := &mockPickRepo{byID: map[int64]*picks.PickRequest{10: expired}}
	svc := NewService(&mockMatchRepo{}, pickRepo, nil, nil)

	_, err := svc.Propose(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrPickExpired)
}

func TestProposeRateLimited(t *testing.T) {
	pickRepo := &mockPickRepo{byID: map[int64]*picks.PickRequest{10: activePick(10, 1)}}
	svc := NewService(&mockMatchRepo{}, pickRepo, &stubLimiter{allow: false}, nil)

	_, err := svc.Propose(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrTooManyProposals)
}

func TestProposePickNotFound(t *testing.T) {
	pickRepo := &mockPickRepo{byID: map[int64]*picks.PickRequest{}}
	svc := NewService(&mockMatchRepo{}, pickRepo, nil, nil)

	_, err := svc.Propose(context.Background(), 2, 99)
	assert.ErrorIs(t, err, picks.ErrPickNotFound)
}

func TestProposeTwiceOnSameRequest(t *testing.T) {
	// The first proposal moved the request to MATCHED; an immediate
	// repeat from the same picker must read as a duplicate pick
	matched := activePick(10, 1)
	matched.Status = picks.StatusMatched

	pickRepo := &mockPickRepo{byID: map[int64]*picks.PickRequest{10: matched}}
	repo := &mockMatchRepo{proposeErr: ErrAlreadyPicked}
	svc := NewService(repo, pickRepo, nil, nil)

	_, err := svc.Propose(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrAlreadyPicked)
}

func TestProposeLostRace(t *testing.T) {
	// Two pickers race; the second one finds the request no longer ACTIVE
	pickRepo := &mockPickRepo{byID: map[int64]*picks.PickRequest{10: activePick(10, 1)}}
	repo := &mockMatchRepo{proposeErr: picks.ErrPickNotActive}
	svc := NewService(repo, pickRepo, nil, nil)

	_, err := svc.Propose(context.Background(), 2, 10)
	assert.ErrorIs(t, err, picks.ErrPickNotActive)
}

func TestApproveMatch(t *testing.T) {
	repo := &mockMatchRepo{
		byID: map[int64]*Match{
			5: {ID: 5, PickRequestID: 10, PickerUserID: 2, RequesterUserID: 1, Status: StatusPending},
		},
		meetupID: 77,
	}
	notifier := &recordingNotifier{}
	svc := NewService(repo, &mockPickRepo{}, nil, notifier)

	match, meetupID, err := svc.Approve(context.Background(), 5, 1)
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, match.Status)
	assert.NotNil(t, match.ApprovedAt)
	assert.Equal(t, int64(77), meetupID)
	assert.Equal(t, []int64{5}, notifier.accepted)
}

func TestApproveMatchNotOwner(t *testing.T) {
	repo := &mockMatchRepo{
		byID: map[int64]*Match{
			5: {ID: 5, PickerUserID: 2, RequesterUserID: 1, Status: StatusPending},
		},
	}
	svc := NewService(repo, &mockPickRepo{}, nil, nil)

	// The picker cannot approve their own proposal
	_, _, err := svc.Approve(context.Background(), 5, 2)
	assert.ErrorIs(t, err, ErrNotYourMatch)
}

func TestDeclineMatch(t *testing.T) {
	repo := &mockMatchRepo{
		byID: map[int64]*Match{
			5: {ID: 5, PickRequestID: 10, PickerUserID: 2, RequesterUserID: 1, Status: StatusPending},
		},
	}
	svc := NewService(repo, &mockPickRepo{}, nil, nil)

	match, err := svc.Decline(context.Background(), 5, 1)
	require.NoError(t, err)

	assert.Equal(t, StatusDeclined, match.Status)
	assert.Equal(t, []int64{5}, repo.declined)
}

func TestDeclineAlreadyResolved(t *testing.T) {
	repo := &mockMatchRepo{
		byID: map[int64]*Match{
			5: {ID: 5, PickerUserID: 2, RequesterUserID: 1, Status: StatusAccepted},
		},
		declineErr: ErrMatchNotPending,
	}
	svc := NewService(repo, &mockPickRepo{}, nil, nil)

	_, err := svc.Decline(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrMatchNotPending)
}

func TestGetMatchHiddenFromOutsiders(t *testing.T) {
	repo := &mockMatchRepo{
		byID: map[int64]*Match{
			5: {ID: 5, PickerUserID: 2, RequesterUserID: 1, Status: StatusPending},
		},
	}
	svc := NewService(repo, &mockPickRepo{}, nil, nil)

	_, err := svc.GetMatch(context.Background(), 5, 3)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	m, err := svc.GetMatch(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), m.ID)
}
