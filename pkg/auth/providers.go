package auth

// ProviderEndpoints names the OAuth2 endpoints and requested scope of a
// provider. The set of supported providers is closed at design time; adding
// one means adding a table entry and a normalizer, nothing else.
type ProviderEndpoints struct {
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	Scope        string
}

// defaultEndpoints is the static endpoint table for the supported providers.
var defaultEndpoints = map[string]ProviderEndpoints{
	ProviderGoogle: {
		AuthorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:     "https://oauth2.googleapis.com/token",
		UserInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
		Scope:        "openid email profile",
	},
	ProviderGitHub: {
		AuthorizeURL: "https://github.com/login/oauth/authorize",
		TokenURL:     "https://github.com/login/oauth/access_token",
		UserInfoURL:  "https://api.github.com/user",
		Scope:        "user:email",
	},
	ProviderMicrosoft: {
		AuthorizeURL: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		TokenURL:     "https://login.microsoftonline.com/common/oauth2/v2.0/token",
		UserInfoURL:  "https://graph.microsoft.com/v1.0/me",
		Scope:        "openid email profile",
	},
}

// ProviderConfig is a registry entry: endpoints plus application credentials.
type ProviderConfig struct {
	ProviderEndpoints
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// GoogleConfig holds Google OAuth2 credentials. A provider with an empty
// client ID or secret is registered but disabled.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `env:"GOOGLE_REDIRECT_URI" envDefault:"http://localhost:4200/auth/callback/google"`
}

// GitHubConfig holds GitHub OAuth2 credentials.
type GitHubConfig struct {
	ClientID     string `env:"GITHUB_CLIENT_ID"`
	ClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	RedirectURI  string `env:"GITHUB_REDIRECT_URI" envDefault:"http://localhost:4200/auth/callback/github"`
}

// MicrosoftConfig holds Microsoft OAuth2 credentials.
type MicrosoftConfig struct {
	ClientID     string `env:"MICROSOFT_CLIENT_ID"`
	ClientSecret string `env:"MICROSOFT_CLIENT_SECRET"`
	RedirectURI  string `env:"MICROSOFT_REDIRECT_URI" envDefault:"http://localhost:4200/auth/callback/microsoft"`
}

// Registry is a read-only lookup of per-provider OAuth2 configuration.
// It is built once at startup and never mutated afterwards.
type Registry struct {
	providers map[string]ProviderConfig
}

// NewRegistry builds the provider registry from per-provider credentials,
// using the default endpoint table.
func NewRegistry(google GoogleConfig, github GitHubConfig, microsoft MicrosoftConfig) *Registry {
	providers := map[string]ProviderConfig{
		ProviderGoogle: {
			ProviderEndpoints: defaultEndpoints[ProviderGoogle],
			ClientID:          google.ClientID,
			ClientSecret:      google.ClientSecret,
			RedirectURI:       google.RedirectURI,
		},
		ProviderGitHub: {
			ProviderEndpoints: defaultEndpoints[ProviderGitHub],
			ClientID:          github.ClientID,
			ClientSecret:      github.ClientSecret,
			RedirectURI:       github.RedirectURI,
		},
		ProviderMicrosoft: {
			ProviderEndpoints: defaultEndpoints[ProviderMicrosoft],
			ClientID:          microsoft.ClientID,
			ClientSecret:      microsoft.ClientSecret,
			RedirectURI:       microsoft.RedirectURI,
		},
	}
	return &Registry{providers: providers}
}

// NewRegistryWithProviders builds a registry from an explicit provider table.
// Useful for tests and nonstandard deployments (e.g. a tenant-specific
// Microsoft authority).
func NewRegistryWithProviders(providers map[string]ProviderConfig) *Registry {
	copied := make(map[string]ProviderConfig, len(providers))
	for name, cfg := range providers {
		copied[name] = cfg
	}
	return &Registry{providers: copied}
}

// Config returns the configuration for a provider. It fails with
// ErrUnknownProvider for names outside the table and ErrProviderNotConfigured
// when the provider's client ID or secret is empty; callers must check this
// before starting a flow, never assume presence.
func (r *Registry) Config(provider string) (ProviderConfig, error) {
	cfg, ok := r.providers[provider]
	if !ok {
		return ProviderConfig{}, ErrUnknownProvider
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return ProviderConfig{}, ErrProviderNotConfigured
	}
	return cfg, nil
}

// Providers lists the registered provider names, configured or not.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
