package di

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
)

type BaseURL string
type DisableSSM bool

// HTTPClient wraps the optional *http.Client used for Codeship API calls.
type HTTPClient struct {
	Client *http.Client
}

// AWSConfig wraps an optional aws.Config that replaces the default AWS configuration.
type AWSConfig struct {
	Config *aws.Config
}

// Option is a function that configures the dependency injection container.
type Option func(*options)

// WithBaseURL overrides the Codeship API root.
func WithBaseURL(url string) Option {
	return func(opts *options) {
		opts.baseURL = BaseURL(url)
	}
}

// WithDisableSSM replaces SSM Parameter Store with environment variables.
func WithDisableSSM(disable bool) Option {
	return func(opts *options) {
		opts.disableSSM = disable
	}
}

// WithHTTPClient sets the client used for Codeship API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithAWSConfig uses cfg instead of loading the default AWS configuration.
func WithAWSConfig(cfg aws.Config) Option {
	return func(opts *options) {
		opts.awsConfig = &cfg
	}
}

// WithProviders adds constructor functions to the dependency injection container.
// Each provider should be a constructor function that returns one or more values.
// Providers can declare dependencies as function parameters, which will be
// automatically resolved by the container.
//
// Example:
//
//	WithProviders(
//	    func() *Database { return &Database{} },
//	    func(db *Database) *Service { return &Service{DB: db} },
//	)
func WithProviders(providers ...any) Option {
	return func(opts *options) {
		opts.providers = append(opts.providers, providers...)
	}
}

type options struct {
	awsConfig  *aws.Config
	baseURL    BaseURL
	httpClient *http.Client
	providers  []any
	disableSSM bool
}
