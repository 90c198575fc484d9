package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog"
	"github.com/savaki/codeship-trigger/internal/di"
	"github.com/savaki/codeship-trigger/internal/errors"
	"github.com/savaki/codeship-trigger/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	orgUUID   = "0f1e2d3c-4b5a-4978-8695-a4b3c2d1e0f9"
	projectID = "a1b2c3d4-e5f6-47a8-89ab-cdef01234567"
)

func newCodeshipServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/auth":
			_, _ = io.WriteString(w, `{"access_token":"tok","organizations":[{"name":"acme","uuid":"`+orgUUID+`","scopes":["build.write"]}]}`)
		case strings.HasSuffix(r.URL.Path, "/builds"):
			w.WriteHeader(http.StatusAccepted)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T, env map[string]string, opts ...di.Option) *Handler {
	t.Helper()

	srv := newCodeshipServer(t)
	opts = append([]di.Option{di.WithBaseURL(srv.URL + "/v2"), di.WithDisableSSM(true)}, opts...)
	container, err := di.New(context.Background(), opts...)
	require.NoError(t, err)

	handler, err := NewHandler(container, func(key string) string { return env[key] })
	require.NoError(t, err)
	return handler
}

func TestHandler_HandleEvent(t *testing.T) {
	env := map[string]string{
		"CODESHIP_USER":    "ci@example.com",
		"CODESHIP_PWD":     "secret",
		"CODESHIP_ORGA":    "acme",
		"CODESHIP_PROJECT": "ffffffff-e5f6-47a8-89ab-cdef01234567",
	}

	tests := []struct {
		name    string
		event   TriggerEvent
		want    *orchestrator.Result
		wantErr error
	}{
		{
			name:  "environment defaults",
			event: TriggerEvent{},
			want: &orchestrator.Result{
				Organization:     "acme",
				OrganizationUUID: orgUUID,
				Project:          "ffffffff-e5f6-47a8-89ab-cdef01234567",
				Ref:              "heads/master",
			},
		},
		{
			name:  "event overrides project and ref",
			event: TriggerEvent{Project: projectID, Ref: "develop"},
			want: &orchestrator.Result{
				Organization:     "acme",
				OrganizationUUID: orgUUID,
				Project:          projectID,
				Ref:              "heads/develop",
			},
		},
		{
			name:    "unknown organization",
			event:   TriggerEvent{Organization: "globex"},
			wantErr: errors.ErrOrganizationNotFound,
		},
		{
			name:    "invalid project",
			event:   TriggerEvent{Project: "nope"},
			wantErr: errors.ErrInvalidProjectID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, env)

			got, err := handler.HandleEvent(context.Background(), tt.event)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandler_PasswordFromEnvStore(t *testing.T) {
	// With SSM disabled the parameter name is read as an environment variable.
	t.Setenv("CI_CODESHIP_PASSWORD", "secret")

	handler := newTestHandler(t, map[string]string{
		"CODESHIP_USER":              "ci@example.com",
		"CODESHIP_ORGA":              "acme",
		"CODESHIP_PROJECT":           projectID,
		"CODESHIP_PWD_SSM_PARAMETER": "CI_CODESHIP_PASSWORD",
	})

	got, err := handler.HandleEvent(context.Background(), TriggerEvent{})
	require.NoError(t, err)
	assert.Equal(t, projectID, got.Project)
}

// newSecretsManagerServer answers GetSecretValue with secrets and records the requested ids.
func newSecretsManagerServer(t *testing.T, secrets map[string]string) (*httptest.Server, func() []string) {
	t.Helper()

	var (
		mu        sync.Mutex
		requested []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			SecretId string
		}
		_ = json.NewDecoder(r.Body).Decode(&input)
		mu.Lock()
		requested = append(requested, input.SecretId)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		value, ok := secrets[input.SecretId]
		if !strings.HasSuffix(r.Header.Get("X-Amz-Target"), "GetSecretValue") || !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"__type":"ResourceNotFoundException","message":"not found"}`)
			return
		}
		data, _ := json.Marshal(map[string]string{"Name": input.SecretId, "SecretString": value})
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), requested...)
	}
}

func testAWSConfig(url string) aws.Config {
	return aws.Config{
		Region:           "us-east-1",
		Credentials:      credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		BaseEndpoint:     aws.String(url),
		RetryMaxAttempts: 1,
	}
}

func TestHandler_PasswordFromSecretsManager(t *testing.T) {
	srv, requested := newSecretsManagerServer(t, map[string]string{
		"ci/codeship": `{"password":"secret"}`,
	})

	env := map[string]string{
		"CODESHIP_USER":          "ci@example.com",
		"CODESHIP_ORGA":          "acme",
		"CODESHIP_PROJECT":       projectID,
		"CODESHIP_PWD_SECRET_ID": "ci/codeship",
	}

	t.Run("secret found", func(t *testing.T) {
		handler := newTestHandler(t, env, di.WithAWSConfig(testAWSConfig(srv.URL)))

		got, err := handler.HandleEvent(context.Background(), TriggerEvent{})
		require.NoError(t, err)
		assert.Equal(t, projectID, got.Project)
		assert.Equal(t, []string{"ci/codeship"}, requested())
	})

	t.Run("secret missing", func(t *testing.T) {
		missing := map[string]string{}
		for k, v := range env {
			missing[k] = v
		}
		missing["CODESHIP_PWD_SECRET_ID"] = "ci/other"
		handler := newTestHandler(t, missing, di.WithAWSConfig(testAWSConfig(srv.URL)))

		_, err := handler.HandleEvent(context.Background(), TriggerEvent{})
		assert.ErrorIs(t, err, errors.ErrSecretNotFound)
	})
}

func TestHandler_MissingPassword(t *testing.T) {
	handler := newTestHandler(t, map[string]string{
		"CODESHIP_USER":    "ci@example.com",
		"CODESHIP_ORGA":    "acme",
		"CODESHIP_PROJECT": projectID,
	})

	_, err := handler.HandleEvent(context.Background(), TriggerEvent{})
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := logger.WithContext(context.Background())
	ctx = lambdacontext.NewContext(ctx, &lambdacontext.LambdaContext{AwsRequestID: "req-123"})

	l := requestLogger(ctx)
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestReadEvent(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		stdin   string
		want    TriggerEvent
		wantErr bool
	}{
		{
			name:  "flag value",
			value: `{"project":"` + projectID + `","ref":"develop"}`,
			want:  TriggerEvent{Project: projectID, Ref: "develop"},
		},
		{
			name:  "stdin",
			value: "-",
			stdin: `{"organization":"acme"}`,
			want:  TriggerEvent{Organization: "acme"},
		},
		{
			name: "empty stdin",
			want: TriggerEvent{},
		},
		{
			name:    "invalid json",
			value:   `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readEvent(tt.value, strings.NewReader(tt.stdin))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
