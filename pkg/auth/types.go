package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OAuth2 provider identifiers used across the auth system.
const (
	ProviderGoogle    = "google"
	ProviderGitHub    = "github"
	ProviderMicrosoft = "microsoft"
)

// User represents a user account. A user may authenticate with a password,
// an OAuth provider, or both; at most one provider is linked at a time.
type User struct {
	ID            uuid.UUID
	Email         string
	FullName      string
	PasswordHash  string // empty for OAuth-only accounts
	IsActive      bool
	IsSuperuser   bool
	OAuthProvider string // empty when no provider is linked
	OAuthID       string // provider's external user ID
	AvatarURL     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// UserInfo is the provider-agnostic shape produced from disparate upstream
// user-info payloads. The ID is always a string regardless of the provider's
// native type.
type UserInfo struct {
	ID       string
	Email    string
	Name     string
	Picture  string
	Provider string
}

// Session is the result of a successful authentication: the resolved user and
// a freshly issued bearer token.
type Session struct {
	User        *User
	AccessToken string
	TokenType   string // always "bearer"
	ExpiresIn   int64  // seconds until the token expires
}

// UserStore is the persistence collaborator consumed by this package.
// Every call is a single round trip; no transactional coupling across calls
// is assumed. Implementations map "no rows" to ErrUserNotFound and unique
// constraint violations on email and (oauth_provider, oauth_id) to
// ErrEmailAlreadyExists and ErrAlreadyLinkedElsewhere respectively.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByOAuth(ctx context.Context, provider, oauthID string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}
