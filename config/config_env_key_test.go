package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "shop",
			},
		},
		"telegram": map[string]any{
			"botUsername": "",
		},
		"newsletter": map[string]any{
			"pollInterval": "1m",
		},
		"storage": map[string]any{
			"bucketUrl": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "TELEGRAM_BOTUSERNAME", want: "telegram.botUsername"},
		{envKey: "NEWSLETTER_POLLINTERVAL", want: "newsletter.pollInterval"},
		{envKey: "STORAGE_BUCKETURL", want: "storage.bucketUrl"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, 300*time.Second, cfg.Auth.AccessTTL)
	assert.Equal(t, defaultRefreshTTL, cfg.Auth.RefreshTTL)
	assert.Equal(t, time.Minute, cfg.Newsletter.PollInterval)
	assert.Equal(t, 10, cfg.Newsletter.BatchSize)
}

func TestApplyDefaults_KeepsConfiguredValues(t *testing.T) {
	cfg := &Config{
		Auth:       &AuthConfig{AccessTTL: time.Minute},
		Newsletter: &NewsletterConfig{PollInterval: 5 * time.Second, ClaimTimeout: time.Hour, BatchSize: 3},
	}
	cfg.applyDefaults()

	assert.Equal(t, time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 5*time.Second, cfg.Newsletter.PollInterval)
	assert.Equal(t, time.Hour, cfg.Newsletter.ClaimTimeout)
	assert.Equal(t, 3, cfg.Newsletter.BatchSize)
}
