package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env"
)

type Config struct {
	ServerAddr     string `env:"RUN_ADDRESS"`
	LogLevel       string `env:"LOG_LEVEL"`
	DatabaseURI    string `env:"DATABASE_URI"`
	JWTSecretKey   string `env:"JWT_SECRET_KEY"`
	AdminSecretKey string `env:"ADMIN_SECRET_KEY"`

	// AdminJWTSecretKey signs admin tokens. Falls back to
	// AdminSecretKey when not configured separately.
	AdminJWTSecretKey string `env:"ADMIN_JWT_SECRET_KEY"`
}

func NewConfig() (Config, error) {
	cfg := Config{}

	flag.StringVar(&cfg.ServerAddr, "a", "0.0.0.0:8080", "server listening address [env:RUN_ADDRESS]")
	flag.StringVar(&cfg.LogLevel, "l", "info", "log output level [env:LOG_LEVEL]")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database connection string [env:DATABASE_URI]")
	flag.StringVar(&cfg.JWTSecretKey, "s", "", "JWT secret to sign user tokens [env:JWT_SECRET_KEY]")
	flag.StringVar(&cfg.AdminSecretKey, "k", "", "admin shared key [env:ADMIN_SECRET_KEY]")
	flag.StringVar(&cfg.AdminJWTSecretKey, "j", "", "JWT secret to sign admin tokens [env:ADMIN_JWT_SECRET_KEY]")
	flag.Parse()

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("env.Parse: %w", err)
	}

	if cfg.AdminJWTSecretKey == "" {
		cfg.AdminJWTSecretKey = cfg.AdminSecretKey
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate fails fast on missing required secrets or store endpoint.
func (c Config) Validate() error {
	if c.DatabaseURI == "" {
		return errors.New("database connection string is required")
	}

	if c.JWTSecretKey == "" {
		return errors.New("JWT secret key is required")
	}

	if c.AdminSecretKey == "" {
		return errors.New("admin secret key is required")
	}

	return nil
}
