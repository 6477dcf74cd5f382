package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/andymarkow/zapbank/internal/config"
	"github.com/andymarkow/zapbank/internal/logger"
	"github.com/andymarkow/zapbank/internal/server"
	"github.com/andymarkow/zapbank/internal/storage"
	"github.com/andymarkow/zapbank/internal/storage/pgstorage"
)

type Application struct {
	log    *slog.Logger
	server *server.Server
	store  storage.Storage
}

func New() (*Application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}

	logLevel, err := logger.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger.ParseLogLevel: %w", err)
	}

	logg := logger.NewLogger(
		logger.WithLevel(logLevel),
		logger.WithFormat(logger.LogFormatJSON),
		logger.WithAddSource(false),
	)

	pgstore, err := pgstorage.NewStorage(cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("pgstorage.NewStorage: %w", err)
	}

	// An unreachable store at boot refuses startup entirely.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pgstore.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pgstore.Ping: %w", err)
	}

	if err := pgstore.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("pgstore.Bootstrap: %w", err)
	}

	store := storage.NewStorage(pgstore)

	srv, err := server.NewServer(store,
		server.WithServerAddr(cfg.ServerAddr),
		server.WithLogger(logg),
		server.WithUserSecret([]byte(cfg.JWTSecretKey)),
		server.WithAdminSecret([]byte(cfg.AdminJWTSecretKey)),
		server.WithAdminKey(cfg.AdminSecretKey),
	)
	if err != nil {
		return nil, fmt.Errorf("server.NewServer: %w", err)
	}

	return &Application{
		log:    logg,
		server: srv,
		store:  store,
	}, nil
}

func (a *Application) Run() error {
	defer func() {
		if err := a.store.Close(); err != nil {
			a.log.Error("store.Close", slog.Any("error", err))
		}
	}()

	if err := a.server.Start(); err != nil {
		return fmt.Errorf("server.Start: %w", err)
	}

	return nil
}
