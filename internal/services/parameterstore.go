package services

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/savaki/codeship-trigger/internal/errors"
)

// SecretStore looks up a secret value, such as the Codeship password, by name.
type SecretStore interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SSMParameterStore implements SecretStore using AWS Systems Manager Parameter Store
type SSMParameterStore struct {
	client *ssm.Client
	mu     sync.RWMutex
	cache  map[string]string
}

// NewSSMParameterStore creates a new SSM-backed parameter store
func NewSSMParameterStore(client *ssm.Client) *SSMParameterStore {
	return &SSMParameterStore{
		client: client,
		cache:  make(map[string]string),
	}
}

// GetSecret retrieves and decrypts a single parameter from SSM Parameter Store
func (s *SSMParameterStore) GetSecret(ctx context.Context, name string) (string, error) {
	// Check cache first
	s.mu.RLock()
	if value, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return value, nil
	}
	s.mu.RUnlock()

	result, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: boolPtr(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get parameter %s: %w", name, classify(err))
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s: %w", name, errors.ErrSecretNotFound)
	}

	value := *result.Parameter.Value

	s.mu.Lock()
	s.cache[name] = value
	s.mu.Unlock()

	return value, nil
}

// EnvSecretStore implements SecretStore using environment variables.
// Used for local development without AWS connection
type EnvSecretStore struct{}

// NewEnvSecretStore creates a new environment variable-backed store
func NewEnvSecretStore() *EnvSecretStore {
	return &EnvSecretStore{}
}

// GetSecret returns the environment variable called name
func (e *EnvSecretStore) GetSecret(_ context.Context, name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", fmt.Errorf("environment variable %s: %w", name, errors.ErrSecretNotFound)
	}
	return value, nil
}

func boolPtr(b bool) *bool {
	return &b
}
