package di

import (
	"github.com/savaki/codeship-trigger/internal/codeship"
	"github.com/savaki/codeship-trigger/internal/orchestrator"
)

func ProvideCodeshipClient(baseURL BaseURL, httpClient HTTPClient) *codeship.Client {
	return codeship.New(
		codeship.WithBaseURL(string(baseURL)),
		codeship.WithHTTPClient(httpClient.Client),
	)
}

func ProvideOrchestrator(client *codeship.Client) *orchestrator.Orchestrator {
	return orchestrator.New(client)
}
