package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/oddoapp/pickme-backend/internal/common/utils"
	"github.com/oddoapp/pickme-backend/internal/users"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Config struct {
	JWTSecret          string
	BCryptCost         int
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type Service interface {
	Signup(ctx context.Context, dto *SignupDTO) (*users.User, *TokenPair, error)
	Signin(ctx context.Context, dto *SigninDTO) (*users.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

type service struct {
	repo Repository
	cfg  Config
}

func NewService(repo Repository, cfg Config) Service {
	return &service{repo: repo, cfg: cfg}
}

func (s *service) Signup(ctx context.Context, dto *SignupDTO) (*users.User, *TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &users.User{
		Email:        dto.Email,
		PasswordHash: string(hash),
		Name:         dto.Name,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *service) Signin(ctx context.Context, dto *SigninDTO) (*users.User, *TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.ValidateJWT(refreshToken, s.cfg.JWTSecret)
	if err != nil || claims.Type != "refresh" {
		return nil, ErrInvalidToken
	}
	if time.Now().Unix() >= claims.ExpiresAt {
		return nil, ErrInvalidToken
	}

	return s.issueTokens(&users.User{ID: claims.UserID, Email: claims.Email})
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().Unix() >= claims.ExpiresAt {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *service) issueTokens(user *users.User) (*TokenPair, error) {
	now := time.Now()

	access, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Type:      "access",
		ExpiresAt: now.Add(s.cfg.AccessTokenExpiry).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    "pickme-api",
		Subject:   uuid.New().String(),
	}, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	refresh, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Type:      "refresh",
		ExpiresAt: now.Add(s.cfg.RefreshTokenExpiry).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    "pickme-api",
		Subject:   uuid.New().String(),
	}, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenExpiry.Seconds()),
	}, nil
}
