package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/pkg/logger"
)

// Reconciler maps a verified external identity to exactly one local user
// record: find by provider ID, fall back to find-by-email with auto-link, or
// create a new account.
type Reconciler struct {
	store  UserStore
	logger *slog.Logger
}

// NewReconciler creates an identity reconciler over the given store.
func NewReconciler(store UserStore, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconciler{store: store, logger: log}
}

// Reconcile resolves a normalized provider identity to a local user.
// The second return value reports whether a new account was created.
func (r *Reconciler) Reconcile(ctx context.Context, info UserInfo) (*User, bool, error) {
	user, err := r.store.FindByOAuth(ctx, info.Provider, info.ID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to look up oauth identity: %w", err)
	}

	// Same email, different sign-in method: link the provider to the
	// existing account instead of creating a duplicate.
	if info.Email != "" {
		user, err = r.store.FindByEmail(ctx, info.Email)
		if err == nil {
			user.OAuthProvider = info.Provider
			user.OAuthID = info.ID
			if info.Picture != "" {
				user.AvatarURL = info.Picture
			}
			if err := r.store.Update(ctx, user); err != nil {
				return nil, false, fmt.Errorf("failed to link oauth identity: %w", err)
			}
			r.logger.InfoContext(ctx, "linked oauth identity to existing account",
				logger.UserID(user.ID.String()),
				logger.Provider(info.Provider),
				logger.Component("reconciler"),
			)
			return user, false, nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return nil, false, fmt.Errorf("failed to look up user by email: %w", err)
		}
	}

	user = &User{
		ID:            uuid.New(),
		Email:         info.Email,
		FullName:      info.Name,
		OAuthProvider: info.Provider,
		OAuthID:       info.ID,
		AvatarURL:     info.Picture,
		IsActive:      true,
		IsSuperuser:   false,
	}
	if err := r.store.Create(ctx, user); err != nil {
		// Two simultaneous callbacks for the same external identity race on
		// the (oauth_provider, oauth_id) unique constraint. The loser treats
		// the violation as "found by provider id" and retries the lookup once.
		if errors.Is(err, ErrAlreadyLinkedElsewhere) || errors.Is(err, ErrEmailAlreadyExists) {
			existing, lookupErr := r.store.FindByOAuth(ctx, info.Provider, info.ID)
			if lookupErr == nil {
				return existing, false, nil
			}
			return nil, false, fmt.Errorf("failed to resolve concurrent oauth signup: %w", lookupErr)
		}
		return nil, false, fmt.Errorf("failed to create oauth user: %w", err)
	}

	r.logger.InfoContext(ctx, "created user from oauth identity",
		logger.UserID(user.ID.String()),
		logger.Provider(info.Provider),
		logger.Component("reconciler"),
	)
	return user, true, nil
}

// Link attaches an external identity to an existing user. A provider pair
// held by a different user fails with ErrAlreadyLinkedElsewhere; linking never
// silently reassigns an identity. A new link overwrites any previous one on
// the same user.
func (r *Reconciler) Link(ctx context.Context, userID uuid.UUID, info UserInfo) (*User, error) {
	user, err := r.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	existing, err := r.store.FindByOAuth(ctx, info.Provider, info.ID)
	if err == nil && existing.ID != userID {
		return nil, ErrAlreadyLinkedElsewhere
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing oauth link: %w", err)
	}

	user.OAuthProvider = info.Provider
	user.OAuthID = info.ID
	if info.Picture != "" {
		user.AvatarURL = info.Picture
	}
	if err := r.store.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to link oauth account: %w", err)
	}

	return user, nil
}

// Unlink detaches the given provider from a user. It is refused with
// ErrNoPasswordSet when the account has no password credential, which would
// otherwise strand the account with no login path. The avatar is left as is.
func (r *Reconciler) Unlink(ctx context.Context, userID uuid.UUID, provider string) (*User, error) {
	user, err := r.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.OAuthProvider != provider {
		return nil, ErrProviderNotLinked
	}
	if !user.HasPassword() {
		return nil, ErrNoPasswordSet
	}

	user.OAuthProvider = ""
	user.OAuthID = ""
	if err := r.store.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to unlink oauth account: %w", err)
	}

	return user, nil
}
