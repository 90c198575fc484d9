package services

import (
	"context"
	"fmt"
)

// PasswordSources lists where the Codeship password may come from. The first non-empty
// field wins, in declaration order.
type PasswordSources struct {
	Password     string
	SSMParameter string
	SecretID     string
}

// Remote reports whether the password has to be fetched from a store.
func (p PasswordSources) Remote() bool {
	return p.Password == "" && (p.SSMParameter != "" || p.SecretID != "")
}

// ResolvePassword returns the password from the first configured source. Stores are only
// requested when their source is selected.
func ResolvePassword(
	ctx context.Context,
	src PasswordSources,
	parameters func() (SecretStore, error),
	secrets func() (*SecretsManagerStore, error),
) (string, error) {
	switch {
	case src.Password != "":
		return src.Password, nil

	case src.SSMParameter != "":
		store, err := parameters()
		if err != nil {
			return "", fmt.Errorf("failed to create parameter store: %w", err)
		}
		return store.GetSecret(ctx, src.SSMParameter)

	case src.SecretID != "":
		store, err := secrets()
		if err != nil {
			return "", fmt.Errorf("failed to create secrets manager store: %w", err)
		}
		return store.GetSecret(ctx, src.SecretID)

	default:
		return "", nil
	}
}
