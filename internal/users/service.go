package users

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

type Service interface {
	GetUser(ctx context.Context, userID int64) (*User, error)
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, dto *UpdateProfileDTO) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, dto *UpdateProfileDTO) (*User, error) {
	return s.repo.UpdateProfile(ctx, userID, dto)
}
