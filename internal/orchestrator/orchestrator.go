package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/internal/codeship"
	"github.com/savaki/codeship-trigger/internal/inputs"
)

// API is the subset of the Codeship client used to request a build.
type API interface {
	Authenticate(ctx context.Context, basicAuth string) (*codeship.AuthResponse, error)
	TriggerBuild(ctx context.Context, token, organizationUUID, project, ref string) (map[string]any, error)
}

// Result describes a build that was successfully requested.
type Result struct {
	Organization     string `json:"organization"`
	OrganizationUUID string `json:"organization_uuid"`
	Project          string `json:"project"`
	Ref              string `json:"ref"`
}

// Message returns the confirmation printed after a successful run.
func (r *Result) Message() string {
	return fmt.Sprintf("Build of project '%s' in '%s' organization requested.", r.Project, r.Organization)
}

// Orchestrator runs the authenticate, resolve organization, trigger build sequence.
type Orchestrator struct {
	api API
}

// New creates a new Orchestrator instance
func New(api API) *Orchestrator {
	return &Orchestrator{
		api: api,
	}
}

// Trigger validates raw and runs the full sequence.
func (o *Orchestrator) Trigger(ctx context.Context, raw inputs.Raw) (*Result, error) {
	in, err := inputs.Resolve(raw)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, in)
}

// Run authenticates, resolves the organization UUID and requests the build. The first
// failure ends the run.
func (o *Orchestrator) Run(ctx context.Context, in *inputs.Inputs) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("organization", in.Organization).
		Str("project", in.Project).
		Str("ref", in.Ref).
		Logger()

	logger.Debug().Msg("Authenticating with Codeship")
	auth, err := o.api.Authenticate(ctx, in.BasicAuth())
	if err != nil {
		return nil, err
	}

	organizationUUID, err := auth.ResolveOrganization(in.Organization)
	if err != nil {
		logger.Debug().
			Strs("available", auth.OrganizationNames()).
			Msg("Organization lookup failed")
		return nil, err
	}

	logger.Debug().
		Str("organization_uuid", organizationUUID).
		Msg("Requesting build")

	if _, err := o.api.TriggerBuild(ctx, auth.AccessToken, organizationUUID, in.Project, in.Ref); err != nil {
		return nil, err
	}

	logger.Info().
		Str("organization_uuid", organizationUUID).
		Msg("Build requested")

	return &Result{
		Organization:     in.Organization,
		OrganizationUUID: organizationUUID,
		Project:          in.Project,
		Ref:              in.Ref,
	}, nil
}
