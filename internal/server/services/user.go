// Package services contains server-side business logic. This file implements
// UserService, which handles registration and login and issues session
// tokens.
package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/server/auth"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipehub/internal/server/validation"
)

// UserService provides authentication-related operations:
// - Register: create users and sign them in
// - Login: verify credentials and mint a token
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenIssuer
	validator   *validation.Validator
	// dummyHash is compared against when the email is unknown so that both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewUserService constructs a UserService. The token issuer carries the
// signing key.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenIssuer, v *validation.Validator) (*UserService, error) {
	dummy, err := auth.HashPassword(hex.EncodeToString(common.GenerateRandByteArray(16)))
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		validator:   v,
		dummyHash:   dummy,
	}, nil
}

// Register creates an account and returns a session for it. A taken
// username or email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	exists, err := repo.ExistsByUserNameOrEmail(ctx, in.UserName, in.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user: %w", err)
	}
	if exists {
		return nil, common.ErrorAlreadyExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := repo.Create(ctx, &models.User{UserName: in.UserName, Email: in.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.issue(user)
}

// Login checks email and password. Unknown email and wrong password are
// both reported as common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, in models.LoginInput) (*models.AuthResult, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.CheckPassword(s.dummyHash, in.Password)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, common.ErrorUnauthorized
	}

	return s.issue(user)
}

func (s *UserService) issue(user *models.User) (*models.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &models.AuthResult{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.UserName,
		ExpiresAt: expiresAt,
	}, nil
}
