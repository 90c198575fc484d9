package di

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// AWSConfigLoader loads the AWS configuration on first call. Providers that may not need
// AWS take the loader instead of aws.Config so runs without AWS never read the shared
// config files.
type AWSConfigLoader func() (aws.Config, error)

func ProvideAWSConfigLoader(ctx context.Context, override AWSConfig) AWSConfigLoader {
	return sync.OnceValues(func() (aws.Config, error) {
		if override.Config != nil {
			return *override.Config, nil
		}
		return config.LoadDefaultConfig(ctx)
	})
}

func ProvideAWSConfig(load AWSConfigLoader) (aws.Config, error) {
	return load()
}

func ProvideSecretsManagerClient(config aws.Config) *secretsmanager.Client {
	return secretsmanager.NewFromConfig(config)
}
