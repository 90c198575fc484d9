// Package inputs resolves and validates the values needed to request a Codeship build.
package inputs

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/savaki/codeship-trigger/internal/errors"
)

// Environment variables read by FromEnv.
const (
	EnvUser         = "CODESHIP_USER"
	EnvPassword     = "CODESHIP_PWD"
	EnvOrganization = "CODESHIP_ORGA"
	EnvProject      = "CODESHIP_PROJECT"
	EnvRef          = "CODESHIP_REF"
)

// DefaultRef is used when no branch ref is supplied.
const DefaultRef = "heads/master"

const refPrefix = "heads/"

var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-(?:[0-9a-f]{4}-){3}[0-9a-f]{12}$`)

// Raw holds the unvalidated values as they were read from the environment or flags.
type Raw struct {
	Username     string
	Password     string
	Organization string
	Project      string
	Ref          string
}

// Inputs holds validated, normalized values.
type Inputs struct {
	Username     string
	Password     string
	Organization string // lower-cased
	Project      string // lower-cased project UUID
	Ref          string // lower-cased, always starts with heads/
}

// BasicAuth returns the credentials as a single user:pass token.
func (in Inputs) BasicAuth() string {
	return in.Username + ":" + in.Password
}

// FromEnv reads the raw values using getenv, typically os.Getenv.
func FromEnv(getenv func(string) string) Raw {
	return Raw{
		Username:     getenv(EnvUser),
		Password:     getenv(EnvPassword),
		Organization: getenv(EnvOrganization),
		Project:      getenv(EnvProject),
		Ref:          getenv(EnvRef),
	}
}

// Resolve validates raw and returns normalized inputs. Credentials are checked first,
// then the organization, then the project.
func Resolve(raw Raw) (*Inputs, error) {
	if err := ValidateCredentials(raw.Username, raw.Password); err != nil {
		return nil, err
	}

	if raw.Organization == "" {
		return nil, errors.ErrInvalidOrganization
	}

	if raw.Project == "" || !IsUUID(raw.Project) {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidProjectID, raw.Project)
	}

	return &Inputs{
		Username:     raw.Username,
		Password:     raw.Password,
		Organization: strings.ToLower(raw.Organization),
		Project:      strings.ToLower(raw.Project),
		Ref:          NormalizeRef(raw.Ref),
	}, nil
}

// ValidateCredentials fails with ErrInvalidCredentials unless both values are present and
// username is an email address.
func ValidateCredentials(username, password string) error {
	if username == "" || password == "" || !IsEmail(username) {
		return errors.ErrInvalidCredentials
	}
	return nil
}

// NormalizeRef defaults an empty ref to heads/master, prefixes heads/ when missing and
// lower-cases the result.
func NormalizeRef(ref string) string {
	if ref == "" {
		ref = DefaultRef
	}
	if !strings.HasPrefix(strings.ToLower(ref), refPrefix) {
		ref = refPrefix + ref
	}
	return strings.ToLower(ref)
}

// IsUUID reports whether s has the 8-4-4-4-12 hexadecimal shape.
func IsUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// IsEmail reports whether s is a single bare address such as dev@example.com.
func IsEmail(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}

	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return false
	}

	domain := s[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return !strings.Contains(domain, "..")
}
