package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{
		DatabaseURI:    "postgres://localhost:5432/zapbank",
		JWTSecretKey:   "user-secret",
		AdminSecretKey: "admin-key",
	}

	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "missing database URI", mutate: func(c *Config) { c.DatabaseURI = "" }},
		{name: "missing JWT secret", mutate: func(c *Config) { c.JWTSecretKey = "" }},
		{name: "missing admin key", mutate: func(c *Config) { c.AdminSecretKey = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)

			assert.Error(t, cfg.Validate())
		})
	}
}
