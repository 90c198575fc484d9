// Package di provides a lightweight wrapper around uber's dig dependency injection framework.
// It simplifies container setup and provides type-safe dependency retrieval with generics.
package di

import (
	"context"

	"github.com/savaki/codeship-trigger/internal/services"
	"go.uber.org/dig"
)

// Container defines a dependency injection container based on uber's dig.
// This interface allows for easy testing and mocking of the DI container.
type Container interface {
	// Invoke executes a function, injecting its dependencies from the container.
	Invoke(function any, opts ...dig.InvokeOption) error

	// Provide registers a constructor function in the container.
	Provide(constructor any, opts ...dig.ProvideOption) error

	// Scope creates a scoped sub-container with its own set of values.
	Scope(name string, opts ...dig.ScopeOption) *dig.Scope
}

// Get returns an instance constructed via dependency injection.
// Constructors are only run when something asks for their output, so
// AWS clients are never created for runs that do not need them.
func Get[T any](container Container) (want T, err error) {
	callback := func(got T) {
		want = got
	}
	if err := container.Invoke(callback); err != nil {
		return want, err
	}
	return want, nil
}

// MustGet returns an instance constructed via dependency injection or panics.
//
// Example:
//
//	client := MustGet[*codeship.Client](container)
func MustGet[T any](container Container) T {
	want, err := Get[T](container)
	if err != nil {
		panic(err)
	}
	return want
}

// New creates a new dependency injection container. ctx is registered as a
// context.Context dependency and should carry the logger.
//
// Example:
//
//	container, err := New(ctx,
//	    WithBaseURL("http://localhost:8080/v2/"),
//	    WithProviders(
//	        func(client *codeship.Client) *Service { return &Service{Client: client} },
//	    ),
//	)
func New(ctx context.Context, opts ...Option) (Container, error) {
	// Build options
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create dig container
	container := dig.New()
	if err := container.Provide(func() context.Context { return ctx }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() BaseURL { return o.baseURL }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() DisableSSM { return DisableSSM(o.disableSSM) }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() HTTPClient { return HTTPClient{Client: o.httpClient} }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() AWSConfig { return AWSConfig{Config: o.awsConfig} }); err != nil {
		return nil, err
	}

	// Register all provided constructors
	for _, provider := range core {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	// Register all provided constructors
	for _, provider := range o.providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}

var core = []any{
	ProvideAWSConfigLoader,
	ProvideAWSConfig,
	ProvideSSMClient,
	ProvideSecretsManagerClient,
	ProvideParameterStore,
	ProvideCodeshipClient,
	ProvideOrchestrator,
	services.NewSecretsManagerStore,
}
