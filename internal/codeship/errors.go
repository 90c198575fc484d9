package codeship

import (
	"fmt"
	"strings"

	"github.com/savaki/codeship-trigger/internal/errors"
)

// APIError is returned when the API answers with a status above 226.
type APIError struct {
	Endpoint   string
	StatusCode int
	Errors     []string // server-reported messages, possibly empty
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%v from '/%s' (status %d)", errors.ErrAPI, e.Endpoint, e.StatusCode)
	if len(e.Errors) > 0 {
		msg += ". Errors: " + strings.Join(e.Errors, ", ")
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrAPI).
func (e *APIError) Unwrap() error {
	return errors.ErrAPI
}
