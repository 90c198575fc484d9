package services

import (
	stderrors "errors"
	"fmt"

	"github.com/aws/smithy-go"
	"github.com/savaki/codeship-trigger/internal/errors"
)

// notFoundCodes are the AWS error codes reported for a missing parameter or secret.
var notFoundCodes = map[string]struct{}{
	"ParameterNotFound":         {},
	"ParameterVersionNotFound":  {},
	"ResourceNotFoundException": {},
}

// classify tags AWS "not found" errors with ErrSecretNotFound and returns all other errors
// unchanged.
func classify(err error) error {
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		if _, ok := notFoundCodes[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %w", errors.ErrSecretNotFound, err)
		}
	}
	return err
}
