// Package codeship is a minimal client for the Codeship v2 REST API.
package codeship

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/internal/errors"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the root of the Codeship v2 API.
const DefaultBaseURL = "https://api.codeship.com/v2/"

// maxSuccessStatus is the highest status code treated as success (226 IM Used).
const maxSuccessStatus = http.StatusIMUsed

// Request describes a single POST against the API.
type Request struct {
	// BasicAuth is a user:pass token; the first colon separates user from password.
	BasicAuth string
	// Token is sent as a bearer token when non-empty.
	Token string
	// Body is sent as-is; it must already be serialized JSON.
	Body []byte
}

// Client performs authenticated POST requests against the Codeship API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL == "" {
			return
		}
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the client whose transport carries every request.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a new Client
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{CheckRedirect: stopRedirects},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends req to endpoint and returns the decoded JSON object. An empty response body
// decodes to an empty object.
func (c *Client) Post(ctx context.Context, endpoint string, req Request) (map[string]any, error) {
	logger := zerolog.Ctx(ctx)
	endpoint = strings.TrimLeft(endpoint, "/")

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w for '/%s': %w", errors.ErrTransport, endpoint, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.BasicAuth != "" {
		user, password, _ := strings.Cut(req.BasicAuth, ":")
		httpReq.SetBasicAuth(user, password)
	}

	resp, err := c.clientFor(req.Token).Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w for '/%s': %w", errors.ErrTransport, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w for '/%s': %w", errors.ErrTransport, endpoint, err)
	}

	logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Msg("Codeship API response")

	data, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w from '/%s': %w", errors.ErrParse, endpoint, err)
	}

	if resp.StatusCode > maxSuccessStatus {
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Errors:     errorStrings(data["errors"]),
		}
	}

	return data, nil
}

// clientFor returns a copy of the configured client that never follows redirects, so a 3xx
// answer is reported like any other status above 226. A non-empty token is sent as a bearer
// token.
func (c *Client) clientFor(token string) *http.Client {
	transport := c.httpClient.Transport
	if token != "" {
		base := transport
		if base == nil {
			base = http.DefaultTransport
		}
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: token,
				TokenType:   "Bearer",
			}),
			Base: base,
		}
	}

	return &http.Client{
		Transport:     transport,
		CheckRedirect: stopRedirects,
		Jar:           c.httpClient.Jar,
		Timeout:       c.httpClient.Timeout,
	}
}

func stopRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

func decodeObject(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", v)
	}
	return obj, nil
}

// errorStrings flattens the errors field of an error response. A single scalar is treated
// as a one-element list.
func errorStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		return out
	case map[string]any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		return out
	default:
		return []string{stringify(val)}
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
