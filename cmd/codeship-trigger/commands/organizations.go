package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/internal/codeship"
	"github.com/savaki/codeship-trigger/internal/di"
	"github.com/savaki/codeship-trigger/internal/inputs"
	"github.com/savaki/gox/slicex"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// OrganizationView is one row of the organizations listing.
type OrganizationView struct {
	Name     string   `json:"name" yaml:"name"`
	UUID     string   `json:"uuid" yaml:"uuid"`
	Scopes   []string `json:"scopes" yaml:"scopes"`
	CanBuild bool     `json:"can_build" yaml:"can_build"`
}

func newOrganizationView(org codeship.Organization) OrganizationView {
	return OrganizationView{
		Name:     org.Name,
		UUID:     org.UUID,
		Scopes:   org.Scopes,
		CanBuild: org.CanBuild(),
	}
}

// OrganizationsCommand returns the command listing organizations visible to the user
func OrganizationsCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "organizations",
		Aliases: []string{"orgs"},
		Usage:   "List the Codeship organizations available to the credentials",
		Description: `Authenticates with the Codeship API and lists every organization returned for the
user, with its UUID, scopes and whether builds can be requested (build.write).

Names are shown exactly as returned; the trigger command matches them against the
lower-cased --organization value.

Examples:
  codeship-trigger organizations --user ci@example.com
  codeship-trigger orgs --output yaml`,
		Flags: append(CredentialFlags(),
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output format: text, json or yaml",
				Value: "text",
			},
		),
		Action: organizationsAction(logger),
	}
}

func organizationsAction(logger *zerolog.Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx := commandContext(c, logger)

		format := strings.ToLower(c.String("output"))
		switch format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unsupported output format %q", format)
		}

		container, err := newContainer(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to create container: %w", err)
		}

		password, err := resolvePassword(ctx, container, passwordSources(c))
		if err != nil {
			return err
		}

		username := c.String("user")
		if err := inputs.ValidateCredentials(username, password); err != nil {
			return err
		}

		client, err := di.Get[*codeship.Client](container)
		if err != nil {
			return fmt.Errorf("failed to create codeship client: %w", err)
		}

		auth, err := client.Authenticate(ctx, username+":"+password)
		if err != nil {
			return err
		}

		views := slicex.Map(auth.Organizations, newOrganizationView)
		return writeOrganizations(c.App.Writer, format, views)
	}
}

func writeOrganizations(w io.Writer, format string, views []OrganizationView) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()

	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tUUID\tBUILD\tSCOPES")
		for _, v := range views {
			build := "no"
			if v.CanBuild {
				build = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Name, v.UUID, build, strings.Join(v.Scopes, ","))
		}
		return tw.Flush()
	}
}
