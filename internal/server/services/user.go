// Package services contains server-side business logic. UserService handles
// registration, login and access-token refresh.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/cryptox"
	"github.com/dmitrijs2005/jobmarket/internal/dbx"
	"github.com/dmitrijs2005/jobmarket/internal/server/auth"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
	"github.com/dmitrijs2005/jobmarket/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TokenIssuer is the part of auth.TokenService the user service needs.
type TokenIssuer interface {
	IssuePair(subject, role string) (*auth.TokenPair, error)
	Refresh(refreshToken string) (*auth.Token, error)
}

type registration struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=8,max=128"`
	Role     string `validate:"required,oneof=jobseeker employer"`
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	validate    *validator.Validate
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		validate:    validator.New(),
	}
}

// Register creates an account. Only self-service roles are accepted; a taken
// email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	in := registration{Email: normalizeEmail(email), Password: password, Role: role}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	salt := cryptox.NewSalt()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: cryptox.HashPassword([]byte(password), salt),
		Salt:         salt,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if _, err := repo.GetByEmail(ctx, user.Email); err == nil {
			return common.ErrorAlreadyExists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		_, err := repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Login checks credentials and returns a fresh token pair. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same argon2 cost as a real check
			cryptox.HashPassword([]byte(password), cryptox.NewSalt())
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword(user.PasswordHash, user.Salt, []byte(password)) {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token. Token errors are
// returned as is; an account that no longer exists is unauthorized.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*auth.Token, error) {
	tok, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Users(s.db).GetByID(ctx, tok.Subject); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return tok, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
