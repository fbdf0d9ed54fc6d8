package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 8

// TokenIssuer is satisfied by *auth.Tokens.
type TokenIssuer interface {
	Issue(userID uuid.UUID, role string) (string, error)
}

type Service interface {
	Register(ctx context.Context, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.Create(ctx, email, hashed, utils.RoleUser)
	if err != nil {
		if !errors.Is(err, ErrEmailExists) {
			log.Error("failed to create user", zap.Error(err))
		}
		return nil, err
	}

	sess, err := s.session(u)
	if err != nil {
		log.Error("failed to issue token", zap.String("user_id", u.ID.String()), zap.Error(err))
		return nil, err
	}

	log.Info("user registered", zap.String("user_id", u.ID.String()))
	return sess, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		log.Error("failed to load user", zap.Error(err))
		return nil, err
	}
	if u == nil || !CheckPasswordHash(password, u.PasswordHash) {
		log.Warn("login rejected")
		return nil, ErrInvalidCredentials
	}

	return s.session(u)
}

func (s *service) session(u *User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: *u}, nil
}
