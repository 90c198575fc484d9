package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/internal/di"
	"github.com/savaki/codeship-trigger/internal/inputs"
	"github.com/savaki/codeship-trigger/internal/services"
	"github.com/urfave/cli/v2"
)

// CredentialFlags are shared by every command that talks to the Codeship API.
func CredentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "Codeship user email",
			EnvVars: []string{inputs.EnvUser},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Codeship password (prefer the environment variable)",
			EnvVars: []string{inputs.EnvPassword},
		},
		&cli.StringFlag{
			Name:    "password-ssm-parameter",
			Usage:   "Read the password from this SSM Parameter Store parameter",
			EnvVars: []string{"CODESHIP_PWD_SSM_PARAMETER"},
		},
		&cli.StringFlag{
			Name:    "password-secret-id",
			Usage:   "Read the password from this Secrets Manager secret (plain string or {\"password\": ...})",
			EnvVars: []string{"CODESHIP_PWD_SECRET_ID"},
		},
		&cli.BoolFlag{
			Name:    "disable-ssm",
			Usage:   "Disable AWS Systems Manager Parameter Store (use environment variables)",
			EnvVars: []string{"DISABLE_SSM"},
		},
		&cli.StringFlag{
			Name:    "api-url",
			Usage:   "Codeship API root",
			Value:   "",
			EnvVars: []string{"CODESHIP_API_URL"},
			Hidden:  true,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// TargetFlags select the project and ref to build.
func TargetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "organization",
			Aliases: []string{"o"},
			Usage:   "Codeship organization name",
			EnvVars: []string{inputs.EnvOrganization},
		},
		&cli.StringFlag{
			Name:    "project",
			Aliases: []string{"p"},
			Usage:   "Codeship project UUID",
			EnvVars: []string{inputs.EnvProject},
		},
		&cli.StringFlag{
			Name:    "ref",
			Aliases: []string{"r"},
			Usage:   "Branch ref to build; heads/ is prepended when missing (default: heads/master)",
			EnvVars: []string{inputs.EnvRef},
		},
	}
}

// commandContext returns the command's context carrying logger, raised to debug level
// when --verbose is set.
func commandContext(c *cli.Context, logger *zerolog.Logger) context.Context {
	l := *logger
	if c.Bool("verbose") {
		l = l.Level(zerolog.DebugLevel)
	}
	return l.WithContext(c.Context)
}

func newContainer(ctx context.Context, c *cli.Context) (di.Container, error) {
	return di.New(ctx,
		di.WithBaseURL(c.String("api-url")),
		di.WithDisableSSM(c.Bool("disable-ssm")),
	)
}

func passwordSources(c *cli.Context) services.PasswordSources {
	return services.PasswordSources{
		Password:     c.String("password"),
		SSMParameter: c.String("password-ssm-parameter"),
		SecretID:     c.String("password-secret-id"),
	}
}

// resolvePassword returns the password from the flag/environment or, when configured, from
// SSM Parameter Store or Secrets Manager.
func resolvePassword(ctx context.Context, container di.Container, src services.PasswordSources) (string, error) {
	if src.Remote() {
		zerolog.Ctx(ctx).Debug().
			Bool("ssm", src.SSMParameter != "").
			Bool("secrets_manager", src.SecretID != "").
			Msg("Fetching Codeship password")
	}

	return services.ResolvePassword(ctx, src,
		func() (services.SecretStore, error) { return di.Get[services.SecretStore](container) },
		func() (*services.SecretsManagerStore, error) { return di.Get[*services.SecretsManagerStore](container) },
	)
}
