package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/cmd/codeship-trigger/commands"
	"github.com/savaki/codeship-trigger/internal/di"
	"github.com/urfave/cli/v2"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code: 0 on success, 1 on any failure.
// The failure message is written to stderr, the result to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := loadEnvFile(os.Getenv("CODESHIP_ENV_FILE")); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := di.WithRunID(di.ProvideLogger())
	ctx = logger.WithContext(ctx)

	app := newApp(&logger)
	app.Writer = stdout
	app.ErrWriter = stderr

	if err := app.RunContext(ctx, args); err != nil {
		logger.Debug().Err(err).Msg("Application error")
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newApp(logger *zerolog.Logger) *cli.App {
	return &cli.App{
		Name:  "codeship-trigger",
		Usage: "Request Codeship builds from CI pipelines",
		Description: `Authenticates against the Codeship API with basic credentials, resolves the
organization UUID from its name and requests a build of a project and branch ref.

Running without a command triggers a build; inputs are normally supplied through
CODESHIP_USER, CODESHIP_PWD, CODESHIP_ORGA, CODESHIP_PROJECT and CODESHIP_REF.
A .env file in the working directory (or the file named by CODESHIP_ENV_FILE) is
loaded first; variables already set in the environment take precedence.`,
		Flags:  append(commands.CredentialFlags(), commands.TargetFlags()...),
		Action: commands.TriggerAction(logger),
		Commands: []*cli.Command{
			commands.TriggerCommand(logger),
			commands.OrganizationsCommand(logger),
		},
	}
}

// loadEnvFile loads path, or .env when path is empty. A missing default .env is ignored.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}
