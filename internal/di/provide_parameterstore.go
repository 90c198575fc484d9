package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/internal/services"
)

// ProvideSSMClient provides an SSM client for Parameter Store access
// Returns nil if SSM is disabled (for local development)
func ProvideSSMClient(load AWSConfigLoader, disable DisableSSM) (*ssm.Client, error) {
	if disable {
		return nil, nil
	}

	awsConfig, err := load()
	if err != nil {
		return nil, err
	}
	return ssm.NewFromConfig(awsConfig), nil
}

// ProvideParameterStore provides the SecretStore for parameter lookups
// Uses SSM Parameter Store in AWS, falls back to environment variables when disabled
func ProvideParameterStore(ctx context.Context, ssmClient *ssm.Client) services.SecretStore {
	logger := zerolog.Ctx(ctx)

	if ssmClient == nil {
		logger.Debug().Msg("Using environment variables for secrets (SSM disabled)")
		return services.NewEnvSecretStore()
	}

	logger.Debug().Msg("Using AWS Systems Manager Parameter Store for secrets")
	return services.NewSSMParameterStore(ssmClient)
}
