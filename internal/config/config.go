package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/guardpost/console/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Backend    BackendConfig    `validate:"required"`
	Catalog    CatalogConfig    `validate:"required"`
	Sentry     SentryConfig     `validate:"required"`
	Webhook    Webhook          `validate:"required"`
	Kafka      KafkaConfig
	S3         S3Config
	Pyroscope  PyroscopeConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
	// AllowedOrigins are the browser origins the console UI is served from;
	// "*" allows any origin
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// BackendConfig configures the REST backend every collaborator call goes to
type BackendConfig struct {
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	APIKey       string        `mapstructure:"api_key"`
	APIKeyHeader string        `mapstructure:"api_key_header" validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"required"`
	RetryMax     int           `mapstructure:"retry_max" validate:"gte=0"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	RateLimit    float64       `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst    int           `mapstructure:"rate_burst" validate:"gte=0"`
}

// CatalogConfig configures the per tenant catalog snapshot cache
type CatalogConfig struct {
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// S3Config configures the archive sent invoice PDFs are kept in
type S3Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	Region        string        `mapstructure:"region"`
	Bucket        string        `mapstructure:"bucket"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// PyroscopeConfig configures continuous profiling
type PyroscopeConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	ServerAddress   string   `mapstructure:"server_address"`
	ApplicationName string   `mapstructure:"application_name"`
	BasicAuthUser   string   `mapstructure:"basic_auth_user"`
	BasicAuthPass   string   `mapstructure:"basic_auth_pass"`
	SampleRate      uint32   `mapstructure:"sample_rate"`
	DisableGCRuns   bool     `mapstructure:"disable_gc_runs"`
	ProfileTypes    []string `mapstructure:"profile_types"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional; variables already set in the environment win
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/guardpost")

	v.SetEnvPrefix("CONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so environment variables can override
// keys that are missing from config.yaml
func setDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()

	v.SetDefault("deployment.mode", defaults.Deployment.Mode)
	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("server.allowed_origins", defaults.Server.AllowedOrigins)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetDefault("backend.base_url", defaults.Backend.BaseURL)
	v.SetDefault("backend.api_key", defaults.Backend.APIKey)
	v.SetDefault("backend.api_key_header", defaults.Backend.APIKeyHeader)
	v.SetDefault("backend.timeout", defaults.Backend.Timeout)
	v.SetDefault("backend.retry_max", defaults.Backend.RetryMax)
	v.SetDefault("backend.retry_wait_min", defaults.Backend.RetryWaitMin)
	v.SetDefault("backend.retry_wait_max", defaults.Backend.RetryWaitMax)
	v.SetDefault("backend.rate_limit", defaults.Backend.RateLimit)
	v.SetDefault("backend.rate_burst", defaults.Backend.RateBurst)

	v.SetDefault("catalog.cache_enabled", defaults.Catalog.CacheEnabled)
	v.SetDefault("catalog.cache_ttl", defaults.Catalog.CacheTTL)

	v.SetDefault("sentry.enabled", defaults.Sentry.Enabled)
	v.SetDefault("sentry.dsn", defaults.Sentry.DSN)
	v.SetDefault("sentry.environment", defaults.Sentry.Environment)
	v.SetDefault("sentry.sample_rate", defaults.Sentry.SampleRate)

	v.SetDefault("webhook.enabled", defaults.Webhook.Enabled)
	v.SetDefault("webhook.topic", defaults.Webhook.Topic)
	v.SetDefault("webhook.pubsub", defaults.Webhook.PubSub)
	v.SetDefault("webhook.timeout", defaults.Webhook.Timeout)
	v.SetDefault("webhook.max_retries", defaults.Webhook.MaxRetries)
	v.SetDefault("webhook.initial_interval", defaults.Webhook.InitialInterval)
	v.SetDefault("webhook.max_interval", defaults.Webhook.MaxInterval)
	v.SetDefault("webhook.multiplier", defaults.Webhook.Multiplier)
	v.SetDefault("webhook.max_elapsed_time", defaults.Webhook.MaxElapsedTime)
	v.SetDefault("webhook.svix.enabled", defaults.Webhook.Svix.Enabled)
	v.SetDefault("webhook.svix.auth_token", defaults.Webhook.Svix.AuthToken)
	v.SetDefault("webhook.svix.base_url", defaults.Webhook.Svix.BaseURL)

	v.SetDefault("kafka.brokers", defaults.Kafka.Brokers)
	v.SetDefault("kafka.consumer_group", defaults.Kafka.ConsumerGroup)
	v.SetDefault("kafka.client_id", defaults.Kafka.ClientID)
	v.SetDefault("kafka.tls", defaults.Kafka.TLS)
	v.SetDefault("kafka.use_sasl", defaults.Kafka.UseSASL)
	v.SetDefault("kafka.sasl_mechanism", defaults.Kafka.SASLMechanism)
	v.SetDefault("kafka.sasl_user", defaults.Kafka.SASLUser)
	v.SetDefault("kafka.sasl_password", defaults.Kafka.SASLPassword)
	v.SetDefault("kafka.connect_retries", defaults.Kafka.ConnectRetries)

	v.SetDefault("s3.enabled", defaults.S3.Enabled)
	v.SetDefault("s3.region", defaults.S3.Region)
	v.SetDefault("s3.bucket", defaults.S3.Bucket)
	v.SetDefault("s3.key_prefix", defaults.S3.KeyPrefix)
	v.SetDefault("s3.presign_expiry", defaults.S3.PresignExpiry)

	v.SetDefault("pyroscope.enabled", defaults.Pyroscope.Enabled)
	v.SetDefault("pyroscope.server_address", defaults.Pyroscope.ServerAddress)
	v.SetDefault("pyroscope.application_name", defaults.Pyroscope.ApplicationName)
	v.SetDefault("pyroscope.basic_auth_user", defaults.Pyroscope.BasicAuthUser)
	v.SetDefault("pyroscope.basic_auth_pass", defaults.Pyroscope.BasicAuthPass)
	v.SetDefault("pyroscope.sample_rate", defaults.Pyroscope.SampleRate)
	v.SetDefault("pyroscope.disable_gc_runs", defaults.Pyroscope.DisableGCRuns)
	v.SetDefault("pyroscope.profile_types", defaults.Pyroscope.ProfileTypes)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := c.Deployment.Mode.Validate(); err != nil {
		return err
	}
	if err := c.Webhook.PubSub.Validate(); err != nil {
		return err
	}
	if c.Webhook.PubSub == types.KafkaPubSub && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required when webhook.pubsub is kafka")
	}
	if c.Webhook.Svix.Enabled && c.Webhook.Svix.AuthToken == "" {
		return errors.New("webhook.svix.auth_token is required when svix is enabled")
	}
	if c.S3.Enabled && (c.S3.Bucket == "" || c.S3.Region == "") {
		return errors.New("s3.bucket and s3.region are required when s3 is enabled")
	}
	if c.Pyroscope.Enabled && c.Pyroscope.ServerAddress == "" {
		return errors.New("pyroscope.server_address is required when pyroscope is enabled")
	}
	return c.Logging.Level.Validate()
}

// GetDefaultConfig returns a default configuration for local development.
// The CLI uses it as is since it never talks to the backend.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080", AllowedOrigins: []string{"*"}},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Backend: BackendConfig{
			BaseURL:      "http://localhost:3000/api",
			APIKeyHeader: "X-API-Key",
			Timeout:      30 * time.Second,
			RetryMax:     2,
			RetryWaitMin: 200 * time.Millisecond,
			RetryWaitMax: 2 * time.Second,
			RateLimit:    20,
			RateBurst:    10,
		},
		Catalog: CatalogConfig{
			CacheEnabled: true,
			CacheTTL:     5 * time.Minute,
		},
		Sentry: SentryConfig{
			Environment: "local",
			SampleRate:  1,
		},
		Webhook: Webhook{
			Topic:           "console_webhooks",
			PubSub:          types.MemoryPubSub,
			Timeout:         10 * time.Second,
			MaxRetries:      3,
			InitialInterval: time.Second,
			MaxInterval:     30 * time.Second,
			Multiplier:      2,
			MaxElapsedTime:  5 * time.Minute,
			Svix: SvixConfig{
				BaseURL: "https://api.svix.com",
			},
		},
		Kafka: KafkaConfig{
			ConsumerGroup:  "console-webhooks",
			ClientID:       "guardpost-console",
			ConnectRetries: 5,
		},
		S3: S3Config{
			KeyPrefix:     "invoices",
			PresignExpiry: 30 * time.Minute,
		},
		Pyroscope: PyroscopeConfig{
			ApplicationName: "guardpost-console",
			SampleRate:      100,
		},
	}
}
