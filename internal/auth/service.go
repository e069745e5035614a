package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service provides account registration and the credential issuance flows
// built on top of the TokenService and an injected UserStore.
type Service struct {
	users  UserStore
	tokens *TokenService
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithServiceClock overrides the time source (useful for tests).
func WithServiceClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewService constructs a Service.
func NewService(users UserStore, tokens *TokenService, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("auth: user store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	svc := &Service{users: users, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// Registration carries the fields required to create an account.
type Registration struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        Role
	Location    Location
}

// Register validates and creates an account, then issues its first token
// pair. The location must be populated deep enough for the requested role.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, TokenPair, error) {
	email := strings.TrimSpace(strings.ToLower(reg.Email))
	if email == "" {
		return nil, TokenPair{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(reg.FirstName) == "" || strings.TrimSpace(reg.LastName) == "" {
		return nil, TokenPair{}, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	if !reg.Role.Valid() {
		return nil, TokenPair{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, reg.Role)
	}
	location := reg.Location.Normalize()
	if err := location.ValidateForRole(reg.Role); err != nil {
		return nil, TokenPair{}, err
	}
	if problems := ValidatePasswordStrength(reg.Password); len(problems) > 0 {
		return nil, TokenPair{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, TokenPair{}, fmt.Errorf("%w: email is already registered", ErrAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, TokenPair{}, err
	}

	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		PhoneNumber:  strings.TrimSpace(reg.PhoneNumber),
		Role:         reg.Role,
		Location:     location,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, TokenPair{}, fmt.Errorf("%w: email is already registered", ErrAlreadyExists)
		}
		return nil, TokenPair{}, err
	}

	pair, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Login authenticates credentials and issues a token pair. Every failure mode
// collapses to ErrUnauthorized so callers cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*User, TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, TokenPair{}, ErrUnauthorized
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, TokenPair{}, ErrUnauthorized
		}
		return nil, TokenPair{}, err
	}
	if !user.IsActive {
		return nil, TokenPair{}, ErrUnauthorized
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, TokenPair{}, ErrUnauthorized
	}

	now := s.now().UTC()
	_ = s.users.RecordLogin(ctx, user.ID, now)
	user.LastLogin = now

	pair, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh credential for a fresh token pair. The
// account is re-confirmed against the store so a deactivated user cannot keep
// a session alive through refreshes.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*User, TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrUnauthorized
	}
	user, err := s.users.FindActiveByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, TokenPair{}, ErrUnauthorized
		}
		return nil, TokenPair{}, err
	}
	pair, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}
