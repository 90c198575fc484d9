package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/internal/di"
	"github.com/savaki/codeship-trigger/internal/inputs"
	"github.com/savaki/codeship-trigger/internal/orchestrator"
	"github.com/urfave/cli/v2"
)

// TriggerCommand returns the trigger command that requests a new Codeship build
func TriggerCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "trigger",
		Aliases: []string{"build"},
		Usage:   "Request a new build of a Codeship project",
		Description: `Authenticates with the Codeship API, resolves the organization UUID from its
name and requests a build of the project for the given ref.

Every flag can be supplied through its environment variable:
  CODESHIP_USER, CODESHIP_PWD, CODESHIP_ORGA, CODESHIP_PROJECT, CODESHIP_REF

Examples:
  # Build master
  CODESHIP_USER=ci@example.com CODESHIP_PWD=... codeship-trigger trigger \
    --organization acme --project a1b2c3d4-e5f6-47a8-89ab-cdef01234567

  # Build a feature branch, reading the password from SSM Parameter Store
  codeship-trigger trigger --user ci@example.com \
    --password-ssm-parameter /ci/codeship/password \
    --organization acme --project a1b2c3d4-e5f6-47a8-89ab-cdef01234567 --ref feature/login`,
		Flags:  append(CredentialFlags(), TargetFlags()...),
		Action: TriggerAction(logger),
	}
}

// TriggerAction runs the build request and prints the confirmation to the app writer.
func TriggerAction(logger *zerolog.Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx := commandContext(c, logger)

		container, err := newContainer(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to create container: %w", err)
		}

		password, err := resolvePassword(ctx, container, passwordSources(c))
		if err != nil {
			return err
		}

		orch, err := di.Get[*orchestrator.Orchestrator](container)
		if err != nil {
			return fmt.Errorf("failed to create orchestrator: %w", err)
		}

		result, err := orch.Trigger(ctx, inputs.Raw{
			Username:     c.String("user"),
			Password:     password,
			Organization: c.String("organization"),
			Project:      c.String("project"),
			Ref:          c.String("ref"),
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(c.App.Writer, result.Message())
		return nil
	}
}
