package users

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetProfile(ctx context.Context, id int64) (*Profile, error)
	UpdateProfile(ctx context.Context, id int64, dto *UpdateProfileDTO) (*User, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := `
        SELECT id, email, password_hash, name, phone_number, age, bio, interests,
               safety_score, completed_meetups, is_verified, created_at
        FROM users WHERE id = $1
    `

	err := r.db.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresRepository) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	var profile Profile
	query := `
        SELECT id, name, age, bio, interests, safety_score,
               completed_meetups, is_verified
        FROM users WHERE id = $1
    `

	err := r.db.GetContext(ctx, &profile, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, id int64, dto *UpdateProfileDTO) (*User, error) {
	query := `
        UPDATE users
        SET name         = COALESCE($2, name),
            phone_number = COALESCE($3, phone_number),
            age          = COALESCE($4, age),
            bio          = COALESCE($5, bio),
            interests    = COALESCE($6, interests)
        WHERE id = $1
        RETURNING id, email, password_hash, name, phone_number, age, bio, interests,
                  safety_score, completed_meetups, is_verified, created_at
    `

	var interests interface{}
	if dto.Interests != nil {
		interests = pq.Array(dto.Interests)
	}

	var user User
	err := r.db.QueryRowxContext(ctx, query, id, dto.Name, dto.PhoneNumber, dto.Age, dto.Bio, interests).StructScan(&user)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
