package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("FLOWSPACE_JWT_SECRET", "test-secret")
	t.Setenv("FLOWSPACE_CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("FLOWSPACE_REDIS_ADDRESS", "localhost:6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.Invite.Expiry)
	assert.Equal(t, 32, cfg.Invite.TokenBytes)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Equal(t, "flowspace:rooms", cfg.Realtime.RedisChannel)
	assert.Equal(t, "localhost:6380", cfg.Redis.Address)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, cfg.CORS.AllowedOrigins, cfg.Realtime.AllowedOrigins)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Auth:   AuthConfig{JWTSecret: "s"},
			Invite: InviteConfig{Expiry: time.Hour, TokenBytes: 32},
			Email:  EmailConfig{Provider: "noop"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"zero expiry", func(c *Config) { c.Invite.Expiry = 0 }, true},
		{"short token", func(c *Config) { c.Invite.TokenBytes = 8 }, true},
		{"unknown provider", func(c *Config) { c.Email.Provider = "carrier-pigeon" }, true},
		{"smtp provider", func(c *Config) { c.Email.Provider = "smtp" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Database: "flow", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u dbname=flow sslmode=disable", c.DSN())

	c.Password = "pw"
	assert.Contains(t, c.DSN(), " password=pw")
}
