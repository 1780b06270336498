package v1

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/openflappy/leaderboard-service/internal/core/domain"
)

const maxNameLength = 15

// AuthService implements account registration, login, and bearer-token
// authentication. It depends on repository interfaces injected via the
// constructor and never touches SQL directly.
type AuthService struct {
	users  domain.UserRepository
	tokens domain.TokenRepository
	ttl    time.Duration
	clock  func() time.Time
}

// NewAuthService creates an AuthService. ttl is the lifetime stamped on
// issued tokens; zero or negative means tokens never expire.
func NewAuthService(users domain.UserRepository, tokens domain.TokenRepository, ttl time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		ttl:    ttl,
		clock:  time.Now,
	}
}

// Register creates a new account and logs it straight in, issuing a token
// with signup provenance.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("register user %q: %w", req.Name, ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Name, string(hash))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID, domain.SourceSignup)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user", user.Name).Msg("user signed up")

	return &domain.AuthResponse{
		User:   user.Public(),
		Token:  token.Value,
		Source: token.Source.String(),
	}, nil
}

// Login verifies credentials and issues a fresh token with login
// provenance. Tokens are never refreshed in place.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.users.GetByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("query user %q: %w", req.Name, err)
	}
	if user == nil {
		return nil, fmt.Errorf("authenticate user %q: %w", req.Name, ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("authenticate user %q: %w", req.Name, ErrInvalidCredentials)
	}

	token, err := s.issueToken(ctx, user.ID, domain.SourceLogin)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user", user.Name).Msg("user logged in")

	return &domain.AuthResponse{
		User:   user.Public(),
		Token:  token.Value,
		Source: token.Source.String(),
	}, nil
}

// Authenticate resolves a presented bearer value to its owning user.
// Missing, unknown, and expired tokens all collapse to ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, value string) (*domain.User, error) {
	if value == "" {
		return nil, fmt.Errorf("empty token: %w", ErrUnauthenticated)
	}

	token, err := s.tokens.GetByValue(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("query token: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("unknown token: %w", ErrUnauthenticated)
	}
	if !token.IsValid(s.clock()) {
		return nil, fmt.Errorf("token expired at %v: %w", token.ExpiresAt, ErrUnauthenticated)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve token owner: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("token owner missing: %w", ErrUnauthenticated)
	}

	return user, nil
}

// issueToken mints and persists a bearer token: 16 random bytes,
// base64-encoded, stamped with the configured TTL.
func (s *AuthService) issueToken(ctx context.Context, userID uuid.UUID, source domain.SessionSource) (*domain.Token, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate token value: %w", err)
	}

	now := s.clock()
	token := &domain.Token{
		ID:        uuid.New(),
		UserID:    userID,
		Value:     base64.StdEncoding.EncodeToString(raw),
		Source:    source,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		expiresAt := now.Add(s.ttl)
		token.ExpiresAt = &expiresAt
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	return token, nil
}

func validateRegistration(req domain.RegisterRequest) error {
	if req.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(req.Name) > maxNameLength {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("may not be longer than %d characters", maxNameLength)}
	}
	if len(req.Password) < 8 {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	if !isAlphanumeric(req.Password) {
		return &ValidationError{Field: "password", Reason: "must be alphanumeric"}
	}
	if req.Password != req.ConfirmPassword {
		return &ValidationError{Field: "confirmPassword", Reason: "passwords did not match"}
	}
	return nil
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
