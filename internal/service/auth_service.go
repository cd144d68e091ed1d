package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// AuthService handles registration, login and token verification
type AuthService struct {
	store       store.Repository
	tokens      *auth.TokenManager
	credentials auth.CredentialVerifier
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store store.Repository, tokens *auth.TokenManager, credentials auth.CredentialVerifier) *AuthService {
	return &AuthService{
		store:       store,
		tokens:      tokens,
		credentials: credentials,
		logger:      util.GetLogger(),
	}
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register creates a user with a unique username
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	stored, err := s.credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Password: stored}
	err = s.store.WithTx(ctx, func(tx store.Repository) error {
		_, err := tx.GetUserByUsername(ctx, username)
		if err == nil {
			return ErrDuplicateUsername
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to look up user: %w", err)
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and issues an access token for username
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !s.credentials.Verify(user.Password, password) {
		util.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	util.LoginsTotal.WithLabelValues("ok").Inc()
	return s.issue(user.Username)
}

// Refresh re-issues a token for the subject of a still valid token
func (s *AuthService) Refresh(ctx context.Context, token string) (*TokenResponse, error) {
	_, span := util.StartSpan(ctx, "AuthService.Refresh")
	defer span.End()

	subject, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.issue(subject)
}

// Authenticate resolves a bearer token to its user. A token whose subject
// no longer exists is reported as ErrInvalidToken.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Authenticate")
	defer span.End()

	subject, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(subject string) (*TokenResponse, error) {
	token, expiresAt, err := s.tokens.Issue(subject)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
