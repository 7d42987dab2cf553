package account

import (
	"context"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/pkg/auth"
	"github.com/taskhive/taskhive/pkg/binder"
	"github.com/taskhive/taskhive/pkg/jwt"
	"github.com/taskhive/taskhive/pkg/logger"
	"github.com/taskhive/taskhive/pkg/validator"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (s *Service) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validator.Apply(
		validator.RequiredString("email", req.Email),
		validator.ValidEmail("email", req.Email),
		validator.MinLenString("password", req.Password, 8),
		validator.MaxLenString("full_name", req.FullName, 255),
	); err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.log.InfoContext(r.Context(), "user registered",
		logger.UserID(user.ID.String()), logger.Component("account"))
	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validator.Apply(
		validator.RequiredString("email", req.Email),
		validator.RequiredString("password", req.Password),
	); err != nil {
		s.respondError(w, r, err)
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Service) me(w http.ResponseWriter, r *http.Request) {
	userID, err := s.subjectID(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Service) refresh(w http.ResponseWriter, r *http.Request) {
	userID, err := s.subjectID(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	session, err := s.auth.Refresh(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
}

func (s *Service) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := s.subjectID(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req updateProfileRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	// Absent fields stay untouched; an omitted full_name echoes the profile.
	if req.FullName == nil {
		user, err := s.auth.CurrentUser(r.Context(), userID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, toUserResponse(user))
		return
	}

	if err := validator.Apply(
		validator.MaxLenString("full_name", *req.FullName, 255),
	); err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), userID, *req.FullName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Service) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := s.subjectID(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.auth.DeactivateAccount(r.Context(), userID); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.log.InfoContext(r.Context(), "account deleted",
		logger.UserID(userID.String()), logger.Component("account"))
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Service) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := s.subjectID(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req changePasswordRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validator.Apply(
		validator.RequiredString("current_password", req.CurrentPassword),
		validator.MinLenString("new_password", req.NewPassword, 8),
	); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type providerInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Enabled     bool   `json:"enabled"`
}

type providersResponse struct {
	Providers []providerInfo `json:"providers"`
}

var providerDisplayNames = map[string]string{
	auth.ProviderGoogle:    "Google",
	auth.ProviderGitHub:    "GitHub",
	auth.ProviderMicrosoft: "Microsoft",
}

// oauthProviders lists the providers a client can start a flow with. Only
// providers carrying credentials are listed.
func (s *Service) oauthProviders(w http.ResponseWriter, r *http.Request) {
	registry := s.auth.Flow().Registry()

	names := registry.Providers()
	sort.Strings(names)

	providers := make([]providerInfo, 0, len(names))
	for _, name := range names {
		if _, err := registry.Config(name); err != nil {
			continue
		}
		display, ok := providerDisplayNames[name]
		if !ok {
			display = name
		}
		providers = append(providers, providerInfo{Name: name, DisplayName: display, Enabled: true})
	}

	respondJSON(w, http.StatusOK, providersResponse{Providers: providers})
}

type authorizeRequest struct {
	Provider string `json:"provider"`
}

type authorizeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

func (s *Service) oauthAuthorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validator.Apply(validator.RequiredString("provider", req.Provider)); err != nil {
		s.respondError(w, r, err)
		return
	}

	url, state, err := s.auth.Flow().AuthorizationURL(req.Provider, "")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.states.Save(r.Context(), state, req.Provider); err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, authorizeResponse{AuthorizationURL: url, State: state})
}

type callbackRequest struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
	State    string `json:"state"`
}

func (s *Service) oauthCallback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	info, err := s.externalIdentity(r.Context(), req.Provider, req.Code, req.State)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	session, created, err := s.auth.OAuthLogin(r.Context(), info)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if created {
		s.log.InfoContext(r.Context(), "user signed up via oauth",
			logger.UserID(session.User.ID.String()),
			logger.Provider(req.Provider),
			logger.Component("account"))
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Service) oauthLink(w http.ResponseWriter, r *http.Request) {
	userID, err := s.subjectID(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req callbackRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	info, err := s.externalIdentity(r.Context(), req.Provider, req.Code, req.State)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.auth.LinkOAuth(r.Context(), userID, info)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

type unlinkRequest struct {
	Provider string `json:"provider"`
}

func (s *Service) oauthUnlink(w http.ResponseWriter, r *http.Request) {
	userID, err := s.subjectID(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req unlinkRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validator.Apply(validator.RequiredString("provider", req.Provider)); err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.auth.UnlinkOAuth(r.Context(), userID, req.Provider)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// externalIdentity runs the callback half of the flow: consume the one-time
// state, exchange the code, fetch and normalize the profile. The state must
// have been issued for the same provider the callback names.
func (s *Service) externalIdentity(ctx context.Context, provider, code, state string) (auth.UserInfo, error) {
	if err := validator.Apply(
		validator.RequiredString("provider", provider),
		validator.RequiredString("code", code),
		validator.RequiredString("state", state),
	); err != nil {
		return auth.UserInfo{}, err
	}

	issuedFor, err := s.states.Consume(ctx, state)
	if err != nil {
		return auth.UserInfo{}, err
	}
	if issuedFor != provider {
		return auth.UserInfo{}, ErrInvalidState
	}

	accessToken, err := s.auth.Flow().ExchangeCode(ctx, provider, code, "")
	if err != nil {
		return auth.UserInfo{}, err
	}
	return s.auth.Flow().FetchUserInfo(ctx, provider, accessToken)
}

// subjectID resolves the authenticated subject set by the bearer middleware.
func (s *Service) subjectID(ctx context.Context) (uuid.UUID, error) {
	subject, ok := jwt.SubjectFromContext(ctx)
	if !ok {
		return uuid.Nil, auth.ErrUserNotFound
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, auth.ErrUserNotFound
	}
	return userID, nil
}
