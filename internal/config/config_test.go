package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_BASE_URL", "https://api.fundocs.dev")
	t.Setenv("JWT_TTL", "")

	cfg := Load()
	assert.Equal(t, "default_secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "https://api.fundocs.dev/uploads", cfg.Storage.PublicBaseURL)
	assert.Equal(t, "https://api.fundocs.dev/api/auth/oauth/google/callback", cfg.OAuth.GoogleRedirectURL)
	assert.False(t, cfg.IsProduction())
}

func TestEnvParsers(t *testing.T) {
	t.Setenv("X_DUR_GO", "90s")
	t.Setenv("X_DUR_SECS", "15")
	t.Setenv("X_DUR_BAD", "soon")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_FLOAT", "2.5")
	t.Setenv("X_INT", "abc")

	assert.Equal(t, 90*time.Second, getEnvAsDuration("X_DUR_GO", time.Minute))
	assert.Equal(t, 15*time.Second, getEnvAsDuration("X_DUR_SECS", time.Minute))
	assert.Equal(t, time.Minute, getEnvAsDuration("X_DUR_BAD", time.Minute))
	assert.True(t, getEnvAsBool("X_BOOL", false))
	assert.Equal(t, 2.5, getEnvAsFloat("X_FLOAT", 1))
	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
}

func TestValidateCorsOrigins(t *testing.T) {
	tests := []struct {
		origins string
		wantErr bool
	}{
		{"http://localhost:3001", false},
		{"https://fundocs.dev, https://www.fundocs.dev", false},
		{"*", true},
		{"https://fundocs.dev, *", true},
		{"  ", true},
	}
	for _, tt := range tests {
		t.Run(tt.origins, func(t *testing.T) {
			cfg := &Config{App: AppConfig{CorsAllowedOrigins: tt.origins}}
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
