// Package secrets resolves credentials (JWT signing key, Stripe and SendGrid
// keys, connection strings) from the environment or AWS Secrets Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

const (
	BackendEnv = "env"
	BackendAWS = "aws-secrets-manager"
)

// ErrNotFound is returned when a backend has no value for a key
var ErrNotFound = errors.New("secret not found")

// Manager looks up secrets by name
type Manager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	Close() error
}

// Config selects and tunes the backend
type Config struct {
	Backend       string
	AWSRegion     string
	CacheDuration time.Duration
}

// DefaultConfig reads from the environment with a five minute cache
func DefaultConfig() Config {
	return Config{
		Backend:       BackendEnv,
		AWSRegion:     "us-east-1",
		CacheDuration: 5 * time.Minute,
	}
}

// NewManager builds the manager for cfg.Backend
func NewManager(cfg Config) (Manager, error) {
	switch cfg.Backend {
	case BackendAWS, "aws":
		log.Printf("🔐 Initializing AWS Secrets Manager (region: %s)", cfg.AWSRegion)
		return NewAWSManager(cfg)
	case BackendEnv, "environment", "":
		return NewEnvManager(cfg, os.LookupEnv), nil
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Backend)
	}
}

// secretCache is a per-key TTL cache shared by both backends
type secretCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

func newSecretCache(ttl time.Duration) *secretCache {
	return &secretCache{ttl: ttl, entries: make(map[string]cachedSecret)}
}

func (c *secretCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (c *secretCache) set(key, value string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedSecret{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// EnvManager reads secrets from environment variables
type EnvManager struct {
	lookup func(string) (string, bool)
	cache  *secretCache
}

// NewEnvManager uses lookup (normally os.LookupEnv) as its source
func NewEnvManager(cfg Config, lookup func(string) (string, bool)) *EnvManager {
	return &EnvManager{lookup: lookup, cache: newSecretCache(cfg.CacheDuration)}
}

// GetSecret returns ErrNotFound for unset or empty variables
func (m *EnvManager) GetSecret(_ context.Context, key string) (string, error) {
	if value, ok := m.cache.get(key); ok {
		return value, nil
	}
	value, ok := m.lookup(key)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	m.cache.set(key, value)
	return value, nil
}

// Close is a no-op
func (m *EnvManager) Close() error {
	return nil
}

// secretsAPI is the part of the AWS client the manager calls
type secretsAPI interface {
	GetSecretValueWithContext(ctx aws.Context, input *secretsmanager.GetSecretValueInput, opts ...request.Option) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSManager reads secrets from AWS Secrets Manager
type AWSManager struct {
	client secretsAPI
	cache  *secretCache
}

// NewAWSManager opens an AWS session in cfg.AWSRegion
func NewAWSManager(cfg Config) (*AWSManager, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWSRegion),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return newAWSManager(secretsmanager.New(sess), cfg), nil
}

func newAWSManager(client secretsAPI, cfg Config) *AWSManager {
	return &AWSManager{client: client, cache: newSecretCache(cfg.CacheDuration)}
}

// GetSecret fetches the string value of the secret with id key
func (m *AWSManager) GetSecret(ctx context.Context, key string) (string, error) {
	if value, ok := m.cache.get(key); ok {
		return value, nil
	}

	result, err := m.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == secretsmanager.ErrCodeResourceNotFoundException {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("failed to get secret %s: %w", key, err)
	}
	if result.SecretString == nil || *result.SecretString == "" {
		return "", fmt.Errorf("%w: %s has no string value", ErrNotFound, key)
	}

	m.cache.set(key, *result.SecretString)
	return *result.SecretString, nil
}

// Close is a no-op; AWS sessions hold no resources
func (m *AWSManager) Close() error {
	return nil
}
