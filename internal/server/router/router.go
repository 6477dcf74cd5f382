package router

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/andymarkow/zapbank/internal/auth"
	"github.com/andymarkow/zapbank/internal/server/guard"
	"github.com/andymarkow/zapbank/internal/server/handlers"
	"github.com/andymarkow/zapbank/internal/storage"
)

type Options struct {
	log         *slog.Logger
	userSecret  []byte
	adminSecret []byte
	adminKey    string
}

func NewRouter(store storage.Storage, opts ...Option) chi.Router {
	r := chi.NewRouter()

	rOpts := Options{
		log:         slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		userSecret:  []byte(""),
		adminSecret: []byte(""),
	}

	for _, opt := range opts {
		opt(&rOpts)
	}

	// Two independent trust domains: a token signed with one secret
	// never verifies under the other.
	userTokenAuth := jwtauth.New("HS256", rOpts.userSecret, nil)
	adminTokenAuth := jwtauth.New("HS256", rOpts.adminSecret, nil)

	r.Use(
		middleware.Recoverer,
		middleware.StripSlashes,
		middleware.Logger,
	)

	h := handlers.NewHandlers(store,
		handlers.WithLogger(rOpts.log),
		handlers.WithUserAuth(auth.NewJWTAuth(rOpts.userSecret, auth.WithTokenTTL(auth.UserTokenTTL))),
		handlers.WithAdminAuth(auth.NewJWTAuth(rOpts.adminSecret, auth.WithTokenTTL(auth.AdminTokenTTL))),
		handlers.WithAdminKey(rOpts.adminKey),
	)

	r.Get("/ping", h.Ping)

	r.Group(func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/admin/login", h.AdminLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(
			jwtauth.Verifier(userTokenAuth),
			guard.Authenticator(),
		)

		r.Get("/me", h.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(
			jwtauth.Verifier(adminTokenAuth),
			guard.AdminAuthenticator(),
		)

		r.Post("/admin/donate", h.Donate)
		r.Get("/admin/users", h.ListUsers)
	})

	return r
}

type Option func(r *Options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.log = logger
	}
}

func WithUserSecret(secret []byte) Option {
	return func(o *Options) {
		o.userSecret = secret
	}
}

func WithAdminSecret(secret []byte) Option {
	return func(o *Options) {
		o.adminSecret = secret
	}
}

func WithAdminKey(adminKey string) Option {
	return func(o *Options) {
		o.adminKey = adminKey
	}
}
