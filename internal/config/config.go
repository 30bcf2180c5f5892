package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	ServerPort   string `envconfig:"PORT" default:"8080"`
	DatabaseType string `envconfig:"DB_TYPE" default:"sqlite"`
	DatabasePath string `envconfig:"DB_PATH" default:"./orangefrog.db"`
	DatabaseURL  string `envconfig:"DB_URL"`

	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`
	SESFromEmail string `envconfig:"SES_FROM_EMAIL"`
	SESFromName  string `envconfig:"SES_FROM_NAME" default:"Orange Frog"`
	AppBaseURL   string `envconfig:"APP_BASE_URL" default:"http://localhost:8080"`
	InviteSecret string `envconfig:"INVITE_SECRET"`
	SupportEmail string `envconfig:"SUPPORT_EMAIL" default:"support@orangefrog.example"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"events.lifecycle.v1"`

	NotifyQueueSize  int           `envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`
	MaxWriteAttempts int           `envconfig:"MAX_WRITE_ATTEMPTS" default:"5"`
	RateLimit        int           `envconfig:"RATE_LIMIT" default:"30"`
	RateWindow       time.Duration `envconfig:"RATE_WINDOW" default:"1m"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	Debug bool `envconfig:"DEBUG" default:"false"`
}

// ErrMissingInviteSecret is returned when invite links would be signed with an empty key
var ErrMissingInviteSecret = errors.New("ORANGEFROG_INVITE_SECRET must be set")

// debugInviteSecret signs invite links in debug runs without a configured secret
const debugInviteSecret = "orangefrog-debug-only"

// Load reads configuration from ORANGEFROG_* environment variables.
// An invite secret is required unless debug mode is on.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("orangefrog", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.InviteSecret == "" {
		if !cfg.Debug {
			return nil, ErrMissingInviteSecret
		}
		log.Println("[DEBUG] ORANGEFROG_INVITE_SECRET not set, using an insecure debug secret")
		cfg.InviteSecret = debugInviteSecret
	}
	if cfg.MaxWriteAttempts < 1 {
		cfg.MaxWriteAttempts = 1
	}
	return &cfg, nil
}
