package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/taskhive/taskhive/pkg/auth"
	"github.com/taskhive/taskhive/pkg/binder"
	"github.com/taskhive/taskhive/pkg/logger"
	"github.com/taskhive/taskhive/pkg/validator"
)

type userResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name,omitempty"`
	IsActive      bool      `json:"is_active"`
	OAuthProvider string    `json:"oauth_provider,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type sessionResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        userResponse `json:"user"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		FullName:      u.FullName,
		IsActive:      u.IsActive,
		OAuthProvider: u.OAuthProvider,
		AvatarURL:     u.AvatarURL,
		CreatedAt:     u.CreatedAt,
	}
}

func toSessionResponse(sess *auth.Session) sessionResponse {
	return sessionResponse{
		AccessToken: sess.AccessToken,
		TokenType:   sess.TokenType,
		ExpiresIn:   sess.ExpiresIn,
		User:        toUserResponse(sess.User),
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// respondError maps domain errors to status codes: credential and token
// failures are 401, client mistakes 400, provider failures 502, everything
// else an opaque 500. Internal detail never reaches the response body.
func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if ve := validator.Extract(err); ve != nil {
		fields := make(map[string][]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field] = append(fields[fe.Field], fe.Message)
		}
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
		return
	}

	switch {
	case errors.Is(err, binder.ErrMalformedBody),
		errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})

	case errors.Is(err, auth.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})

	// Token verification failures never reach this mapper: the bearer
	// middleware terminates them with a 401 before the handler runs.
	case errors.Is(err, auth.ErrUserNotFound):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})

	case errors.Is(err, auth.ErrUnknownProvider),
		errors.Is(err, auth.ErrProviderNotConfigured),
		errors.Is(err, auth.ErrUnsupportedProvider):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported provider"})

	case errors.Is(err, ErrInvalidState):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid or expired state"})

	case errors.Is(err, auth.ErrEmailAlreadyExists):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "email already registered"})

	case errors.Is(err, auth.ErrAlreadyLinkedElsewhere):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "identity already linked to another account"})

	case errors.Is(err, auth.ErrProviderNotLinked):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "provider is not linked"})

	case errors.Is(err, auth.ErrNoPasswordSet):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "set a password before unlinking the provider"})

	case errors.Is(err, auth.ErrNoProviderEmail):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "provider account has no email"})

	case errors.Is(err, auth.ErrTokenExchangeFailed),
		errors.Is(err, auth.ErrUserInfoFetchFailed):
		s.log.ErrorContext(r.Context(), "oauth provider call failed",
			logger.Error(err), logger.Component("account"))
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: "provider request failed"})

	default:
		s.log.ErrorContext(r.Context(), "unhandled error",
			logger.Error(err), logger.Component("account"))
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
