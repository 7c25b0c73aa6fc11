package config

import (
	"testing"
	"time"

	"github.com/guardpost/console/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, types.ModeLocal, cfg.Deployment.Mode)
	assert.Equal(t, "http://localhost:3000/api", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
	assert.True(t, cfg.Catalog.CacheEnabled)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONSOLE_BACKEND_BASE_URL", "https://billing.internal/api")
	t.Setenv("CONSOLE_BACKEND_RETRY_MAX", "5")
	t.Setenv("CONSOLE_CATALOG_CACHE_TTL", "90s")
	t.Setenv("CONSOLE_DEPLOYMENT_MODE", "api")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://billing.internal/api", cfg.Backend.BaseURL)
	assert.Equal(t, 5, cfg.Backend.RetryMax)
	assert.Equal(t, 90*time.Second, cfg.Catalog.CacheTTL)
	assert.Equal(t, types.ModeAPI, cfg.Deployment.Mode)
}

func TestConfiguration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr bool
	}{
		{
			name:   "defaults",
			mutate: func(c *Configuration) {},
		},
		{
			name:    "backend url is not a url",
			mutate:  func(c *Configuration) { c.Backend.BaseURL = "billing" },
			wantErr: true,
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Configuration) { c.Deployment.Mode = "worker" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Configuration) { c.Logging.Level = "trace" },
			wantErr: true,
		},
		{
			name:    "sample rate above one",
			mutate:  func(c *Configuration) { c.Sentry.SampleRate = 1.5 },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Configuration) { c.Backend.RetryMax = -1 },
			wantErr: true,
		},
		{
			name:    "unknown pubsub",
			mutate:  func(c *Configuration) { c.Webhook.PubSub = "redis" },
			wantErr: true,
		},
		{
			name:    "kafka without brokers",
			mutate:  func(c *Configuration) { c.Webhook.PubSub = types.KafkaPubSub },
			wantErr: true,
		},
		{
			name: "kafka with brokers",
			mutate: func(c *Configuration) {
				c.Webhook.PubSub = types.KafkaPubSub
				c.Kafka.Brokers = []string{"localhost:9092"}
			},
		},
		{
			name:    "svix without token",
			mutate:  func(c *Configuration) { c.Webhook.Svix.Enabled = true },
			wantErr: true,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Configuration) { c.S3.Enabled = true; c.S3.Region = "eu-west-1" },
			wantErr: true,
		},
		{
			name:    "pyroscope without server",
			mutate:  func(c *Configuration) { c.Pyroscope.Enabled = true },
			wantErr: true,
		},
		{
			name:   "lambda mode",
			mutate: func(c *Configuration) { c.Deployment.Mode = types.ModeAWSLambdaAPI },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
