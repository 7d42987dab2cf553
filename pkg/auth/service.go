package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/pkg/jwt"
	"github.com/taskhive/taskhive/pkg/logger"
)

// Service is the auth facade: the only component the web layer calls
// directly. It orchestrates credential verification, token issuance, the
// OAuth2 flow engine and identity reconciliation.
type Service struct {
	store      UserStore
	tokens     *jwt.Service
	flow       *FlowEngine
	reconciler *Reconciler
	bcryptCost int
	logger     *slog.Logger
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// NewService creates the auth facade.
func NewService(store UserStore, tokens *jwt.Service, flow *FlowEngine, opts ...Option) *Service {
	s := &Service{
		store:      store,
		tokens:     tokens,
		flow:       flow,
		bcryptCost: bcrypt.DefaultCost,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reconciler = NewReconciler(store, s.logger)
	return s
}

// Flow exposes the OAuth2 flow engine for callers that drive the
// authorization-code steps themselves.
func (s *Service) Flow() *FlowEngine { return s.flow }

// Register creates a new user with email and password.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := HashPasswordCost(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID.String()),
		logger.Component("auth"),
	)
	return user, nil
}

// Login verifies email and password and issues a session. Unknown email,
// wrong password and inactive account all fail with the same
// ErrInvalidCredentials so they are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(user)
}

// CurrentUser resolves the authenticated subject to a live user record.
// Missing and inactive accounts are both reported as ErrUserNotFound.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Refresh issues a fresh session token for a live user, applying the same
// liveness gate as CurrentUser.
func (s *Service) Refresh(ctx context.Context, userID uuid.UUID) (*Session, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.newSession(user)
}

// UpdateProfile changes the mutable profile fields of a live user.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName string) (*User, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FullName = fullName
	if err := s.store.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// DeactivateAccount soft-deletes an account: the row stays for audit and
// identity integrity, but every liveness gate rejects it from now on.
// Already-deactivated accounts report ErrUserNotFound like any dead account.
func (s *Service) DeactivateAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	user.IsActive = false
	if err := s.store.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	s.logger.InfoContext(ctx, "account deactivated",
		logger.UserID(user.ID.String()),
		logger.Component("auth"),
	)
	return nil
}

// OAuthLogin reconciles a normalized provider identity and issues a session.
// The provider has verified the identity, so no is_active gate applies here;
// this asymmetry with password login is deliberate.
func (s *Service) OAuthLogin(ctx context.Context, info UserInfo) (*Session, bool, error) {
	user, created, err := s.reconciler.Reconcile(ctx, info)
	if err != nil {
		return nil, false, err
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, false, err
	}
	return session, created, nil
}

// LinkOAuth attaches an external identity to the given user account.
func (s *Service) LinkOAuth(ctx context.Context, userID uuid.UUID, info UserInfo) (*User, error) {
	return s.reconciler.Link(ctx, userID, info)
}

// UnlinkOAuth detaches a provider from the given user account.
func (s *Service) UnlinkOAuth(ctx context.Context, userID uuid.UUID, provider string) (*User, error) {
	return s.reconciler.Unlink(ctx, userID, provider)
}

// ChangePassword replaces a user's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, updated string) error {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !user.HasPassword() || !VerifyPassword(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := HashPasswordCost(updated, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.store.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *Service) newSession(user *User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return &Session{
		User:        user,
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
