package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/pkg/jwt"
)

func testService(t *testing.T, store UserStore) *Service {
	t.Helper()
	tokens, err := jwt.New(jwt.Config{SigningKey: "test-signing-key", AccessTTL: time.Hour})
	require.NoError(t, err)
	registry := NewRegistryWithProviders(map[string]ProviderConfig{})
	return NewService(store, tokens, NewFlowEngine(registry), WithBcryptCost(bcrypt.MinCost))
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := HashPasswordCost(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates a user with a hashed password", func(t *testing.T) {
		t.Parallel()

		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, ErrUserNotFound)
		store.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return u.Email == "new@example.com" &&
				u.FullName == "New User" &&
				u.IsActive &&
				u.PasswordHash != "" &&
				u.PasswordHash != "secret123"
		})).Return(nil)

		user, err := testService(t, store).Register(context.Background(), "new@example.com", "secret123", "New User")
		require.NoError(t, err)
		assert.True(t, VerifyPassword("secret123", user.PasswordHash))
		store.AssertExpectations(t)
	})

	t.Run("taken email is refused", func(t *testing.T) {
		t.Parallel()

		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "taken@example.com").Return(&User{ID: uuid.New()}, nil)

		_, err := testService(t, store).Register(context.Background(), "taken@example.com", "secret123", "")
		require.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	passwordHash := mustHash(t, "correct horse")
	activeUser := func() *User {
		return &User{
			ID:           uuid.New(),
			Email:        "jane@example.com",
			PasswordHash: passwordHash,
			IsActive:     true,
		}
	}

	t.Run("valid credentials issue a bearer session", func(t *testing.T) {
		t.Parallel()

		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "jane@example.com").Return(activeUser(), nil)

		session, err := testService(t, store).Login(context.Background(), "jane@example.com", "correct horse")
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.Equal(t, "bearer", session.TokenType)
		assert.Equal(t, int64(3600), session.ExpiresIn)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()

		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, ErrUserNotFound)
		store.On("FindByEmail", mock.Anything, "jane@example.com").Return(activeUser(), nil)

		svc := testService(t, store)
		_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "whatever")
		_, wrongErr := svc.Login(context.Background(), "jane@example.com", "wrong password")

		require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("inactive account cannot log in", func(t *testing.T) {
		t.Parallel()

		user := activeUser()
		user.IsActive = false
		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "jane@example.com").Return(user, nil)

		_, err := testService(t, store).Login(context.Background(), "jane@example.com", "correct horse")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("oauth-only account has no password login", func(t *testing.T) {
		t.Parallel()

		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "oauth@example.com").Return(&User{
			ID:            uuid.New(),
			Email:         "oauth@example.com",
			IsActive:      true,
			OAuthProvider: ProviderGoogle,
			OAuthID:       "g-1",
		}, nil)

		_, err := testService(t, store).Login(context.Background(), "oauth@example.com", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_CurrentUser(t *testing.T) {
	t.Parallel()

	t.Run("returns a live user", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, IsActive: true}, nil)

		user, err := testService(t, store).CurrentUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("inactive account reads as missing", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, IsActive: false}, nil)

		_, err := testService(t, store).CurrentUser(context.Background(), userID)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("issues a fresh token for a live user", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, IsActive: true}, nil)

		session, err := testService(t, store).Refresh(context.Background(), userID)
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
	})

	t.Run("deactivated user cannot refresh", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, IsActive: false}, nil)

		_, err := testService(t, store).Refresh(context.Background(), userID)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_OAuthLogin(t *testing.T) {
	t.Parallel()

	info := UserInfo{ID: "g-9", Email: "oauth@example.com", Name: "OAuth User", Provider: ProviderGoogle}

	t.Run("first sign-in creates the account and reports it", func(t *testing.T) {
		t.Parallel()

		store := new(MockUserStore)
		store.On("FindByOAuth", mock.Anything, ProviderGoogle, "g-9").Return(nil, ErrUserNotFound)
		store.On("FindByEmail", mock.Anything, "oauth@example.com").Return(nil, ErrUserNotFound)
		store.On("Create", mock.Anything, mock.Anything).Return(nil)

		session, created, err := testService(t, store).OAuthLogin(context.Background(), info)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, session.AccessToken)
	})

	t.Run("returning identity reuses the account", func(t *testing.T) {
		t.Parallel()

		store := new(MockUserStore)
		store.On("FindByOAuth", mock.Anything, ProviderGoogle, "g-9").Return(&User{
			ID: uuid.New(), Email: "oauth@example.com", OAuthProvider: ProviderGoogle, OAuthID: "g-9",
		}, nil)

		_, created, err := testService(t, store).OAuthLogin(context.Background(), info)
		require.NoError(t, err)
		assert.False(t, created)
	})
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("replaces the hash after verifying the current password", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		oldHash := mustHash(t, "old password")
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, IsActive: true, PasswordHash: oldHash}, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return u.PasswordHash != oldHash && VerifyPassword("new password", u.PasswordHash)
		})).Return(nil)

		err := testService(t, store).ChangePassword(context.Background(), userID, "old password", "new password")
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("wrong current password", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, PasswordHash: mustHash(t, "old password")}, nil)

		err := testService(t, store).ChangePassword(context.Background(), userID, "guess", "new password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("oauth-only account has no password to change", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, OAuthProvider: ProviderGoogle}, nil)

		err := testService(t, store).ChangePassword(context.Background(), userID, "", "new password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("persists the new full name", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{
			ID: userID, Email: "jane@example.com", FullName: "Jane", IsActive: true,
		}, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return u.ID == userID && u.FullName == "Jane Q. Public"
		})).Return(nil)

		svc := testService(t, store)
		user, err := svc.UpdateProfile(context.Background(), userID, "Jane Q. Public")
		require.NoError(t, err)
		assert.Equal(t, "Jane Q. Public", user.FullName)
		store.AssertExpectations(t)
	})

	t.Run("inactive account reads as missing", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, IsActive: false}, nil)

		svc := testService(t, store)
		_, err := svc.UpdateProfile(context.Background(), userID, "Jane")
		require.ErrorIs(t, err, ErrUserNotFound)
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestService_DeactivateAccount(t *testing.T) {
	t.Parallel()

	t.Run("flips the liveness flag off", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{
			ID: userID, Email: "jane@example.com", IsActive: true,
		}, nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return u.ID == userID && !u.IsActive
		})).Return(nil)

		svc := testService(t, store)
		require.NoError(t, svc.DeactivateAccount(context.Background(), userID))
		store.AssertExpectations(t)
	})

	t.Run("deactivation is not repeatable", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, userID).Return(&User{ID: userID, IsActive: false}, nil)

		svc := testService(t, store)
		err := svc.DeactivateAccount(context.Background(), userID)
		require.ErrorIs(t, err, ErrUserNotFound)
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
