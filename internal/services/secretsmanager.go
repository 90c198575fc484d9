package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/savaki/codeship-trigger/internal/errors"
)

// SecretsManagerStore implements SecretStore using AWS Secrets Manager.
type SecretsManagerStore struct {
	client *secretsmanager.Client
}

// PasswordSecret is the JSON form of a stored password. A secret whose string value is not
// such an object is used verbatim.
type PasswordSecret struct {
	Password string `json:"password"`
}

func NewSecretsManagerStore(client *secretsmanager.Client) *SecretsManagerStore {
	return &SecretsManagerStore{
		client: client,
	}
}

// GetSecret retrieves a secret value by id from AWS Secrets Manager
func (s *SecretsManagerStore) GetSecret(ctx context.Context, secretID string) (string, error) {
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", secretID, classify(err))
	}

	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value: %w", secretID, errors.ErrSecretNotFound)
	}

	return passwordFromSecret(aws.ToString(result.SecretString)), nil
}

func passwordFromSecret(value string) string {
	var secret PasswordSecret
	if err := json.Unmarshal([]byte(value), &secret); err == nil && secret.Password != "" {
		return secret.Password
	}
	return value
}
