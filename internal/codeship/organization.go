package codeship

import (
	"fmt"
	"slices"

	"github.com/savaki/codeship-trigger/internal/errors"
	"github.com/savaki/codeship-trigger/internal/inputs"
)

// ScopeBuildWrite is the scope required to request builds in an organization.
const ScopeBuildWrite = "build.write"

// Organization is one entry of the organizations list returned by the auth endpoint.
type Organization struct {
	Name   string   `json:"name" yaml:"name"`
	UUID   string   `json:"uuid" yaml:"uuid"`
	Scopes []string `json:"scopes" yaml:"scopes"`
}

// HasScope reports whether the organization grants scope.
func (o Organization) HasScope(scope string) bool {
	return slices.Contains(o.Scopes, scope)
}

// CanBuild reports whether builds may be requested in the organization.
func (o Organization) CanBuild() bool {
	return inputs.IsUUID(o.UUID) && o.HasScope(ScopeBuildWrite)
}

func organizationName(o Organization) string {
	return o.Name
}

// FindOrganizationUUID returns the UUID of the first organization named name. The
// comparison is exact; later records with the same name are never considered.
func FindOrganizationUUID(name string, organizations []Organization) (string, error) {
	for _, org := range organizations {
		if org.Name != name {
			continue
		}

		if !inputs.IsUUID(org.UUID) {
			return "", fmt.Errorf("%w for organization %s", errors.ErrInvalidOrgUUID, name)
		}

		if !org.HasScope(ScopeBuildWrite) {
			return "", fmt.Errorf("%w '%s' on '%s'", errors.ErrMissingScope, ScopeBuildWrite, name)
		}

		return org.UUID, nil
	}

	return "", fmt.Errorf("%w: '%s', make sure user has access to it", errors.ErrOrganizationNotFound, name)
}

// decodeOrganizations converts the loosely typed organizations list. Fields of the wrong
// type decode to their zero value, so a record without a string uuid fails UUID
// validation and a record without a scopes list fails the scope check.
func decodeOrganizations(items []any) []Organization {
	organizations := make([]Organization, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)

		var org Organization
		org.Name, _ = obj["name"].(string)
		org.UUID, _ = obj["uuid"].(string)
		if scopes, ok := obj["scopes"].([]any); ok {
			for _, scope := range scopes {
				if s, ok := scope.(string); ok {
					org.Scopes = append(org.Scopes, s)
				}
			}
		}

		organizations = append(organizations, org)
	}
	return organizations
}
