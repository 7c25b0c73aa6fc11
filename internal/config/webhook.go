package config

import (
	"time"

	"github.com/guardpost/console/internal/types"
)

// Webhook configures delivery of invoice and payment events to tenant
// endpoints
type Webhook struct {
	Enabled bool             `mapstructure:"enabled"`
	Topic   string           `mapstructure:"topic" validate:"required"`
	PubSub  types.PubSubType `mapstructure:"pubsub" validate:"required"`
	Timeout time.Duration    `mapstructure:"timeout"`

	// Redelivery of a failed event
	MaxRetries      int           `mapstructure:"max_retries" validate:"gte=0"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`

	Tenants map[string]TenantWebhookConfig `mapstructure:"tenants"`
	Svix    SvixConfig                     `mapstructure:"svix"`
}

// TenantWebhookConfig represents webhook configuration for a specific tenant
type TenantWebhookConfig struct {
	Endpoint       string            `mapstructure:"endpoint"`
	Headers        map[string]string `mapstructure:"headers"`
	Enabled        bool              `mapstructure:"enabled"`
	ExcludedEvents []string          `mapstructure:"excluded_events"`
}

// SvixConfig routes deliveries through svix instead of posting to tenant
// endpoints directly
type SvixConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AuthToken string `mapstructure:"auth_token"`
	BaseURL   string `mapstructure:"base_url"`
}

// KafkaConfig is used when webhook events travel over kafka
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	ClientID      string   `mapstructure:"client_id"`
	TLS           bool     `mapstructure:"tls"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
	// ConnectRetries is how many times a failed broker connection is retried at startup
	ConnectRetries uint64 `mapstructure:"connect_retries"`
}
