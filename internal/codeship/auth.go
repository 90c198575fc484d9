package codeship

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/internal/errors"
	"github.com/savaki/gox/slicex"
)

// AuthResponse is the subset of the auth endpoint payload used by this tool.
type AuthResponse struct {
	AccessToken   string
	Organizations []Organization
}

// OrganizationNames returns the names of all organizations in response order.
func (a *AuthResponse) OrganizationNames() []string {
	return slicex.Map(a.Organizations, organizationName)
}

// Authenticate exchanges basic credentials (user:pass) for an access token and the list of
// organizations the user belongs to.
func (c *Client) Authenticate(ctx context.Context, basicAuth string) (*AuthResponse, error) {
	logger := zerolog.Ctx(ctx)

	data, err := c.Post(ctx, "auth", Request{BasicAuth: basicAuth})
	if err != nil {
		return nil, err
	}

	token, _ := data["access_token"].(string)
	if token == "" {
		return nil, errors.ErrMissingToken
	}

	items, _ := data["organizations"].([]any)
	if len(items) == 0 {
		return nil, errors.ErrMissingOrganizations
	}

	auth := &AuthResponse{
		AccessToken:   token,
		Organizations: decodeOrganizations(items),
	}

	logger.Debug().
		Strs("organizations", auth.OrganizationNames()).
		Msg("Authenticated with Codeship")

	return auth, nil
}

// ResolveOrganization looks up name in the organizations returned by Authenticate.
func (a *AuthResponse) ResolveOrganization(name string) (string, error) {
	uuid, err := FindOrganizationUUID(name, a.Organizations)
	if err != nil {
		return "", fmt.Errorf("failed to resolve organization: %w", err)
	}
	return uuid, nil
}
