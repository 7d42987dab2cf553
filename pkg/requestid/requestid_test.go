package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	echo := func() (http.Handler, *string) {
		var seen string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestid.FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
		return h, &seen
	}

	t.Run("mints an id when none is supplied", func(t *testing.T) {
		t.Parallel()

		h, seen := echo()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		id := rec.Header().Get(requestid.Header)
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, *seen)
	})

	t.Run("keeps a well-formed client id", func(t *testing.T) {
		t.Parallel()

		h, seen := echo()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(requestid.Header, "client-id_123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "client-id_123", rec.Header().Get(requestid.Header))
		assert.Equal(t, "client-id_123", *seen)
	})

	t.Run("replaces an unsafe client id", func(t *testing.T) {
		t.Parallel()

		h, _ := echo()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(requestid.Header, "bad id\nwith newline")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		id := rec.Header().Get(requestid.Header)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("replaces an oversized client id", func(t *testing.T) {
		t.Parallel()

		h, _ := echo()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(requestid.Header, strings.Repeat("a", 200))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Len(t, rec.Header().Get(requestid.Header), 36)
	})
}

func TestFromContext_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, requestid.FromContext(httptest.NewRequest("GET", "/", nil).Context()))
}
