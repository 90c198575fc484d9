package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/internal/di"
	"github.com/savaki/codeship-trigger/internal/inputs"
	"github.com/savaki/codeship-trigger/internal/orchestrator"
	"github.com/savaki/codeship-trigger/internal/services"
	"github.com/urfave/cli/v2"
)

// TriggerEvent selects what to build. Empty fields fall back to the CODESHIP_* environment
// variables of the function.
type TriggerEvent struct {
	Organization string `json:"organization,omitempty"`
	Project      string `json:"project,omitempty"`
	Ref          string `json:"ref,omitempty"`
}

type Handler struct {
	orchestrator *orchestrator.Orchestrator
	container    di.Container
	getenv       func(string) string
}

func NewHandler(container di.Container, getenv func(string) string) (*Handler, error) {
	orch, err := di.Get[*orchestrator.Orchestrator](container)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	return &Handler{
		orchestrator: orch,
		container:    container,
		getenv:       getenv,
	}, nil
}

// HandleEvent requests the build described by event and returns what was requested.
func (h *Handler) HandleEvent(ctx context.Context, event TriggerEvent) (*orchestrator.Result, error) {
	logger := requestLogger(ctx)
	ctx = logger.WithContext(ctx)

	raw := inputs.FromEnv(h.getenv)
	if event.Organization != "" {
		raw.Organization = event.Organization
	}
	if event.Project != "" {
		raw.Project = event.Project
	}
	if event.Ref != "" {
		raw.Ref = event.Ref
	}

	password, err := services.ResolvePassword(ctx,
		services.PasswordSources{
			Password:     raw.Password,
			SSMParameter: h.getenv("CODESHIP_PWD_SSM_PARAMETER"),
			SecretID:     h.getenv("CODESHIP_PWD_SECRET_ID"),
		},
		func() (services.SecretStore, error) { return di.Get[services.SecretStore](h.container) },
		func() (*services.SecretsManagerStore, error) { return di.Get[*services.SecretsManagerStore](h.container) },
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve Codeship password")
		return nil, err
	}
	raw.Password = password

	result, err := h.orchestrator.Trigger(ctx, raw)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to request build")
		return nil, err
	}

	logger.Info().
		Str("organization", result.Organization).
		Str("project", result.Project).
		Str("ref", result.Ref).
		Msg(result.Message())

	return result, nil
}

// requestLogger returns the context logger tagged with the Lambda request id when present.
func requestLogger(ctx context.Context) zerolog.Logger {
	logger := *zerolog.Ctx(ctx)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return logger.With().Str("request_id", lc.AwsRequestID).Logger()
	}
	return logger
}

// readEvent decodes an event from value, or from r when value is empty or "-".
func readEvent(value string, r io.Reader) (TriggerEvent, error) {
	var event TriggerEvent

	data := []byte(value)
	if value == "" || value == "-" {
		var err error
		if data, err = io.ReadAll(r); err != nil {
			return event, fmt.Errorf("failed to read event: %w", err)
		}
	}

	if len(data) == 0 {
		return event, nil
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("failed to decode event: %w", err)
	}
	return event, nil
}

func main() {
	logger := di.ProvideLogger().With().Str("lambda", "trigger-build").Logger()
	ctx := logger.WithContext(context.Background())

	container, err := di.New(ctx,
		di.WithBaseURL(os.Getenv("CODESHIP_API_URL")),
		di.WithDisableSSM(os.Getenv("DISABLE_SSM") == "true"),
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create container")
		os.Exit(1)
	}

	handler, err := NewHandler(container, os.Getenv)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create handler")
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		// Wrap handler to inject logger into context
		wrappedHandler := func(ctx context.Context, event TriggerEvent) (*orchestrator.Result, error) {
			ctx = logger.WithContext(ctx)
			return handler.HandleEvent(ctx, event)
		}
		lambda.Start(wrappedHandler)
		return
	}

	// CLI mode
	app := &cli.App{
		Name:  "trigger-build",
		Usage: "Request a Codeship build from a JSON event",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "event",
				Usage: `Event JSON, e.g. {"project":"<uuid>","ref":"develop"}; "-" or empty reads stdin`,
			},
		},
		Action: func(c *cli.Context) error {
			event, err := readEvent(c.String("event"), os.Stdin)
			if err != nil {
				return err
			}

			result, err := handler.HandleEvent(logger.WithContext(c.Context), event)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
