package binder_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/pkg/binder"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes a valid body", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"jane@example.com","password":"secret"}`))
		r.Header.Set("Content-Type", "application/json")

		var req loginRequest
		require.NoError(t, binder.JSON(r, &req))
		assert.Equal(t, "jane@example.com", req.Email)
		assert.Equal(t, "secret", req.Password)
	})

	t.Run("accepts a charset parameter", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")

		var req loginRequest
		require.NoError(t, binder.JSON(r, &req))
	})

	t.Run("missing content type", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
		var req loginRequest
		require.ErrorIs(t, binder.JSON(r, &req), binder.ErrMissingContentType)
	})

	t.Run("wrong media type", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader("email=jane"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var req loginRequest
		require.ErrorIs(t, binder.JSON(r, &req), binder.ErrUnsupportedMediaType)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","is_superuser":true}`))
		r.Header.Set("Content-Type", "application/json")

		var req loginRequest
		require.ErrorIs(t, binder.JSON(r, &req), binder.ErrMalformedBody)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(""))
		r.Header.Set("Content-Type", "application/json")

		var req loginRequest
		require.ErrorIs(t, binder.JSON(r, &req), binder.ErrMalformedBody)
	})

	t.Run("trailing data", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co"}{"email":"c@d.co"}`))
		r.Header.Set("Content-Type", "application/json")

		var req loginRequest
		require.ErrorIs(t, binder.JSON(r, &req), binder.ErrMalformedBody)
	})
}
