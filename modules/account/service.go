package account

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/pkg/auth"
	"github.com/taskhive/taskhive/pkg/jwt"
)

// Service is the HTTP surface of the authentication subsystem. All domain
// decisions live in auth.Service; this layer binds requests, validates input,
// gates protected routes with the bearer middleware, and maps domain errors
// to status codes.
type Service struct {
	auth   *auth.Service
	tokens *jwt.Service
	states StateStore
	log    *slog.Logger
}

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(authSvc *auth.Service, tokens *jwt.Service, states StateStore, opts ...Option) *Service {
	s := &Service{
		auth:   authSvc,
		tokens: tokens,
		states: states,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the module router, meant to be mounted at the API root.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(jwt.Middleware(s.tokens))
			r.Get("/me", s.me)
			r.Post("/refresh", s.refresh)
			r.Post("/change-password", s.changePassword)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(jwt.Middleware(s.tokens))
		r.Get("/me", s.me)
		r.Put("/me", s.updateProfile)
		r.Delete("/me", s.deleteAccount)
	})

	r.Route("/oauth", func(r chi.Router) {
		r.Get("/providers", s.oauthProviders)
		r.Post("/authorize", s.oauthAuthorize)
		r.Post("/callback", s.oauthCallback)

		r.Group(func(r chi.Router) {
			r.Use(jwt.Middleware(s.tokens))
			r.Post("/link", s.oauthLink)
			r.Post("/unlink", s.oauthUnlink)
		})
	})

	return r
}
