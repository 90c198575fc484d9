package errors

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid basic auth credentials")
	ErrInvalidOrganization  = errors.New("invalid codeship organization name")
	ErrInvalidProjectID     = errors.New("invalid codeship project uuid")
	ErrTransport            = errors.New("failed initializing connection")
	ErrParse                = errors.New("failed parsing JSON response")
	ErrAPI                  = errors.New("error response")
	ErrMissingToken         = errors.New("oauth token not found in response")
	ErrMissingOrganizations = errors.New("codeship organizations not found in response")
	ErrOrganizationNotFound = errors.New("organization not found in response")
	ErrInvalidOrgUUID       = errors.New("invalid uuid found")
	ErrMissingScope         = errors.New("user has no access to scope")
	ErrSecretNotFound       = errors.New("secret not found")
)
