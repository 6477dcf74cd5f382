package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andymarkow/zapbank/internal/server/router"
	"github.com/andymarkow/zapbank/internal/storage"
)

type Server struct {
	srv *http.Server
	log *slog.Logger
}

type Options struct {
	log         *slog.Logger
	serverAddr  string
	userSecret  []byte
	adminSecret []byte
	adminKey    string
}

func NewServer(store storage.Storage, opts ...Option) (*Server, error) {
	srvOpts := Options{
		log:        slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		serverAddr: "0.0.0.0:8080",
	}

	for _, opt := range opts {
		opt(&srvOpts)
	}

	r := router.NewRouter(store,
		router.WithLogger(srvOpts.log),
		router.WithUserSecret(srvOpts.userSecret),
		router.WithAdminSecret(srvOpts.adminSecret),
		router.WithAdminKey(srvOpts.adminKey),
	)

	srv := &http.Server{
		Addr:              srvOpts.serverAddr,
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return &Server{
		srv: srv,
		log: srvOpts.log,
	}, nil
}

type Option func(o *Options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.log = logger
	}
}

func WithServerAddr(addr string) Option {
	return func(o *Options) {
		o.serverAddr = addr
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

func (s *Server) Start() error {
	errChan := make(chan error, 1)

	go func() {
		s.log.Info(fmt.Sprintf("Starting server on %s", s.srv.Addr))

		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server.ListenAndServe: %w", err)
		}
	}()

	// Graceful shutdown handler
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err

	case <-quit:
		s.log.Info("Gracefully shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server.Shutdown: %w", err)
		}

		return nil
	}
}
