package auth

import "errors"

// General authentication errors
var (
	// ErrInvalidCredentials covers every password login failure: unknown email,
	// wrong password, inactive account. Deliberately generic so callers cannot
	// enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// OAuth2 configuration errors
var (
	ErrUnknownProvider       = errors.New("unknown OAuth2 provider")
	ErrProviderNotConfigured = errors.New("OAuth2 credentials not configured for provider")
	ErrUnsupportedProvider   = errors.New("unsupported OAuth2 provider")
)

// OAuth2 flow errors
var (
	ErrTokenExchangeFailed = errors.New("OAuth2 code exchange failed")
	ErrUserInfoFetchFailed = errors.New("failed to fetch user info from provider")
	ErrNoProviderEmail     = errors.New("no email address available from provider")
)

// Account linking errors
var (
	ErrAlreadyLinkedElsewhere = errors.New("OAuth account already linked to another user")
	ErrProviderNotLinked      = errors.New("OAuth provider not linked to this account")
	ErrNoPasswordSet          = errors.New("cannot unlink OAuth account without a password set")
)
