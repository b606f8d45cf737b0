package auth

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/oddoapp/pickme-backend/internal/common/database"
	"github.com/oddoapp/pickme-backend/internal/users"
)

type Repository interface {
	CreateUser(ctx context.Context, user *users.User) error
	GetUserByEmail(ctx context.Context, email string) (*users.User, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, user *users.User) error {
	query := `
        INSERT INTO users (email, password_hash, name)
        VALUES ($1, $2, $3)
        RETURNING id, safety_score, completed_meetups, created_at
    `

	err := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash, user.Name).
		Scan(&user.ID, &user.SafetyScore, &user.CompletedMeetups, &user.CreatedAt)

	if database.IsUniqueViolation(err, "") {
		return ErrEmailTaken
	}
	return err
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	query := `
        SELECT id, email, password_hash, name, phone_number, age, bio, interests,
               safety_score, completed_meetups, is_verified, created_at
        FROM users
        WHERE email = $1
    `

	err := r.db.GetContext(ctx, &user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
