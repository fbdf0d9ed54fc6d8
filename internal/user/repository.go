package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, email, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, email, passwordHash, role string) (*User, error) {
	var u User
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	INSERT INTO users (email, password_hash, role)
	VALUES ($1, $2, $3)
	RETURNING id, email, password_hash, role, created_at
	`, email, passwordHash, role).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		logger.FromCtx(ctx).Error("db: failed to insert user",
			zap.String("layer", "repository"),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// FindByEmail matches case-insensitively and returns nil, nil when no user
// has the email.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	SELECT id, email, password_hash, role, created_at
	FROM users
	WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}
