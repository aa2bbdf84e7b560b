package secrets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/easyprospect/api/config"
)

// AutoDetectConfig picks AWS when AWS_SECRETS_MANAGER_ENABLED is set or the
// process runs inside AWS, and the environment otherwise.
func AutoDetectConfig() Config {
	cfg := DefaultConfig()
	if enabled, _ := strconv.ParseBool(os.Getenv("AWS_SECRETS_MANAGER_ENABLED")); enabled {
		cfg.Backend = BackendAWS
	} else if os.Getenv("AWS_REGION") != "" && os.Getenv("AWS_EXECUTION_ENV") != "" {
		cfg.Backend = BackendAWS
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWSRegion = region
	}
	return cfg
}

// Apply overwrites the credential fields of cfg with the values the
// manager holds. Missing secrets keep the configured value. In production
// a missing JWT_SECRET is an error.
func Apply(ctx context.Context, m Manager, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	fields := []struct {
		key string
		dst *string
	}{
		{"JWT_SECRET", &cfg.JWTSecret},
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"REDIS_URL", &cfg.RedisURL},
		{"STRIPE_SECRET_KEY", &cfg.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET", &cfg.StripeWebhookSecret},
		{"SENDGRID_API_KEY", &cfg.SendGridAPIKey},
		{"SENTRY_DSN", &cfg.SentryDSN},
	}

	loaded := 0
	for _, f := range fields {
		value, err := m.GetSecret(ctx, f.key)
		switch {
		case err == nil:
			*f.dst = value
			loaded++
		case errors.Is(err, ErrNotFound):
			if f.key == "JWT_SECRET" && cfg.IsProduction() {
				return fmt.Errorf("required secret %s not found: %w", f.key, err)
			}
		default:
			return err
		}
	}

	log.Printf("🔐 Loaded %d secrets", loaded)
	return nil
}
