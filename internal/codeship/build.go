package codeship

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// BuildRequest is the payload of the build trigger endpoint.
type BuildRequest struct {
	Ref string `json:"ref"`
}

// BuildsEndpoint returns the endpoint that triggers builds of project in organization.
func BuildsEndpoint(organizationUUID, project string) string {
	return fmt.Sprintf("organizations/%s/projects/%s/builds", organizationUUID, project)
}

// Marshal encodes the request without escaping slashes or HTML characters.
func (b BuildRequest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// TriggerBuild requests a new build of ref for project using the bearer token from
// Authenticate.
func (c *Client) TriggerBuild(ctx context.Context, token, organizationUUID, project, ref string) (map[string]any, error) {
	body, err := BuildRequest{Ref: ref}.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal build request: %w", err)
	}

	return c.Post(ctx, BuildsEndpoint(organizationUUID, project), Request{
		Token: token,
		Body:  body,
	})
}
