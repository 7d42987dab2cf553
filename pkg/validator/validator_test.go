package validator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(
			validator.RequiredString("email", "jane@example.com"),
			validator.ValidEmail("email", "jane@example.com"),
			validator.MinLenString("password", "secret123", 8),
		)
		require.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(
			validator.RequiredString("email", "  "),
			validator.MinLenString("password", "short", 8),
		)
		require.Error(t, err)

		ve := validator.Extract(err)
		require.Len(t, ve, 2)
		assert.True(t, ve.Has("email"))
		assert.True(t, ve.Has("password"))
		assert.Equal(t, []string{"email", "password"}, ve.Fields())
	})

	t.Run("is detectable through wrapping", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(validator.RequiredString("name", ""))
		wrapped := errors.Join(errors.New("request rejected"), err)
		assert.True(t, validator.IsValidationError(wrapped))
		assert.False(t, validator.IsValidationError(errors.New("other")))
	})
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"jane@example.com", "a.b+tag@sub.domain.org"}
	for _, email := range valid {
		assert.True(t, validator.ValidEmail("email", email).Check(), email)
	}

	invalid := []string{"", "plainstring", "@example.com", "user@nodot", "user@.com", "Jane <jane@example.com>"}
	for _, email := range invalid {
		assert.False(t, validator.ValidEmail("email", email).Check(), email)
	}
}

func TestInList(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.InList("status", "pending", []string{"pending", "completed"}).Check())
	assert.False(t, validator.InList("status", "archived", []string{"pending", "completed"}).Check())
}

func TestMaxLenString(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.MaxLenString("title", "ok", 5).Check())
	assert.False(t, validator.MaxLenString("title", "too long", 5).Check())
}
