package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// FlowEngine drives the two-step OAuth2 authorization-code flow:
// authorization URL generation, then code exchange plus user-info
// normalization. The engine holds no per-flow state; all continuity between
// the steps is carried by the caller via the state value and the code.
type FlowEngine struct {
	registry   *Registry
	httpClient *http.Client
}

// FlowOption configures a FlowEngine during construction.
type FlowOption func(*FlowEngine)

// WithHTTPClient replaces the outbound HTTP client used for provider calls.
func WithHTTPClient(c *http.Client) FlowOption {
	return func(e *FlowEngine) {
		if c != nil {
			e.httpClient = c
		}
	}
}

// NewFlowEngine creates a flow engine over the given provider registry.
// Outbound provider calls carry a 10s timeout by default.
func NewFlowEngine(registry *Registry, opts ...FlowOption) *FlowEngine {
	e := &FlowEngine{
		registry:   registry,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the provider table backing the engine.
func (e *FlowEngine) Registry() *Registry { return e.registry }

// AuthorizationURL builds the provider's authorization URL and returns it
// together with the CSRF state bound to it. When state is empty a fresh
// random token is generated. The caller is responsible for storing the state
// and matching it on callback; the engine does not keep it.
func (e *FlowEngine) AuthorizationURL(provider, state string) (string, string, error) {
	cfg, err := e.registry.Config(provider)
	if err != nil {
		return "", "", err
	}

	if state == "" {
		state, err = generateState()
		if err != nil {
			return "", "", fmt.Errorf("failed to generate state: %w", err)
		}
	}

	var opts []oauth2.AuthCodeOption
	if provider == ProviderMicrosoft {
		// Microsoft requires an explicit response mode; without it the
		// authority may deliver the code in a URL fragment the backend
		// callback never sees.
		opts = append(opts, oauth2.SetAuthURLParam("response_mode", "query"))
	}

	return e.oauth2Config(cfg).AuthCodeURL(state, opts...), state, nil
}

// ExchangeCode exchanges an authorization code for the provider's access
// token. An empty redirectURI uses the configured default. Any non-success
// response surfaces as ErrTokenExchangeFailed with the provider's error body
// preserved for diagnostics.
func (e *FlowEngine) ExchangeCode(ctx context.Context, provider, code, redirectURI string) (string, error) {
	cfg, err := e.registry.Config(provider)
	if err != nil {
		return "", err
	}

	conf := e.oauth2Config(cfg)
	if redirectURI != "" {
		conf.RedirectURL = redirectURI
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", fmt.Errorf("%w: provider returned status %d: %s",
				ErrTokenExchangeFailed, retrieveErr.Response.StatusCode, string(retrieveErr.Body))
		}
		return "", errors.Join(ErrTokenExchangeFailed, err)
	}

	return tok.AccessToken, nil
}

// FetchUserInfo calls the provider's user-info endpoint with a bearer header
// and normalizes the provider-specific payload into UserInfo. Providers
// without a normalizer fail with ErrUnsupportedProvider.
func (e *FlowEngine) FetchUserInfo(ctx context.Context, provider, accessToken string) (UserInfo, error) {
	normalize, ok := normalizers[provider]
	if !ok {
		return UserInfo{}, ErrUnsupportedProvider
	}

	cfg, err := e.registry.Config(provider)
	if err != nil {
		return UserInfo{}, err
	}

	payload, err := e.getJSON(ctx, cfg.UserInfoURL, accessToken)
	if err != nil {
		return UserInfo{}, err
	}

	return normalize(ctx, e, cfg, accessToken, payload)
}

func (e *FlowEngine) oauth2Config(cfg ProviderConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       strings.Split(cfg.Scope, " "),
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthorizeURL,
			TokenURL: cfg.TokenURL,
		},
	}
}

// getJSON performs a bearer-authenticated GET and returns the response body.
// Non-200 responses surface as ErrUserInfoFetchFailed with the upstream
// status and body preserved.
func (e *FlowEngine) getJSON(ctx context.Context, url, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Join(ErrUserInfoFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrUserInfoFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrUserInfoFetchFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d: %s",
			ErrUserInfoFetchFailed, resp.StatusCode, string(body))
	}

	return body, nil
}

// generateState returns a fresh CSRF state token: 32 bytes of entropy,
// URL-safe encoded.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// normalizerFunc converts one provider's user-info payload into UserInfo.
// Normalizers are dispatched through this table so adding a provider is a
// pure extension: one endpoints entry, one normalizer.
type normalizerFunc func(ctx context.Context, e *FlowEngine, cfg ProviderConfig, accessToken string, payload []byte) (UserInfo, error)

var normalizers = map[string]normalizerFunc{
	ProviderGoogle:    normalizeGoogleUser,
	ProviderGitHub:    normalizeGitHubUser,
	ProviderMicrosoft: normalizeMicrosoftUser,
}

func normalizeGoogleUser(_ context.Context, _ *FlowEngine, _ ProviderConfig, _ string, payload []byte) (UserInfo, error) {
	var u struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(payload, &u); err != nil {
		return UserInfo{}, errors.Join(ErrUserInfoFetchFailed, err)
	}
	return UserInfo{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Picture:  u.Picture,
		Provider: ProviderGoogle,
	}, nil
}

func normalizeGitHubUser(ctx context.Context, e *FlowEngine, cfg ProviderConfig, accessToken string, payload []byte) (UserInfo, error) {
	var u struct {
		ID        int64  `json:"id"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.Unmarshal(payload, &u); err != nil {
		return UserInfo{}, errors.Join(ErrUserInfoFetchFailed, err)
	}

	email := u.Email
	if email == "" {
		// GitHub omits the email from /user when it is private; the
		// emails endpoint lives one path segment below the user endpoint.
		body, err := e.getJSON(ctx, cfg.UserInfoURL+"/emails", accessToken)
		if err != nil {
			return UserInfo{}, err
		}
		var emails []struct {
			Email   string `json:"email"`
			Primary bool   `json:"primary"`
		}
		if err := json.Unmarshal(body, &emails); err != nil {
			return UserInfo{}, errors.Join(ErrUserInfoFetchFailed, err)
		}
		for _, entry := range emails {
			if entry.Primary {
				email = entry.Email
				break
			}
		}
		if email == "" && len(emails) > 0 {
			email = emails[0].Email
		}
		if email == "" {
			return UserInfo{}, ErrNoProviderEmail
		}
	}

	return UserInfo{
		ID:       strconv.FormatInt(u.ID, 10),
		Email:    email,
		Name:     u.Name,
		Picture:  u.AvatarURL,
		Provider: ProviderGitHub,
	}, nil
}

func normalizeMicrosoftUser(_ context.Context, _ *FlowEngine, _ ProviderConfig, _ string, payload []byte) (UserInfo, error) {
	var u struct {
		ID                string `json:"id"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		DisplayName       string `json:"displayName"`
	}
	if err := json.Unmarshal(payload, &u); err != nil {
		return UserInfo{}, errors.Join(ErrUserInfoFetchFailed, err)
	}

	email := u.Mail
	if email == "" {
		email = u.UserPrincipalName
	}

	return UserInfo{
		ID:    u.ID,
		Email: email,
		Name:  u.DisplayName,
		// Microsoft Graph requires a separate photo call; no picture here.
		Provider: ProviderMicrosoft,
	}, nil
}
