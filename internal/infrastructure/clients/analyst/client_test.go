package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthintel/snowbridge/pkg/config"
	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

type staticTokens struct {
	token string
	err   error
	calls int
}

func (s *staticTokens) Issue() (string, error) {
	s.calls++
	return s.token, s.err
}

func newTestClient(serverURL string, tokens TokenSource) *Client {
	cfg := &config.Config{
		Snowflake: config.SnowflakeConfig{
			Account:  "abc123",
			User:     "jsmith",
			Database: "HEALTH_INTELLIGENCE",
			Schema:   "HEALTH_RECORDS",
		},
		Analyst: config.AnalystConfig{
			BaseURL:           serverURL,
			SemanticModelFile: "health_intelligence_semantic_model.yaml",
			Stage:             "RAW_DATA",
			RequestTimeout:    5 * time.Second,
		},
	}
	return NewClient(cfg, tokens)
}

func TestClient_Translate_ExtractsSQLAndInterpretation(t *testing.T) {
	var gotRequest analystRequest
	var gotAuth, gotTokenType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, messagePath, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotTokenType = r.Header.Get("X-Snowflake-Authorization-Token-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"message": {
				"content": [
					{"type": "text", "text": "Top cholesterol trend"},
					{"type": "sql", "statement": "SELECT 1"},
					{"type": "text", "text": "over the last year"}
				]
			}
		}`))
	}))
	defer srv.Close()

	tokens := &staticTokens{token: "jwt-token"}
	client := newTestClient(srv.URL, tokens)

	translation, err := client.Translate(context.Background(), "show my cholesterol trend")
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1", translation.SQL)
	assert.Equal(t, "Top cholesterol trend\n\nover the last year", translation.Interpretation)
	assert.Equal(t, "Bearer jwt-token", gotAuth)
	assert.Equal(t, "KEYPAIR_JWT", gotTokenType)
	assert.Equal(t, 1, tokens.calls, "exactly one fresh token per call")

	assert.Equal(t, "@HEALTH_INTELLIGENCE.HEALTH_RECORDS.RAW_DATA/health_intelligence_semantic_model.yaml", gotRequest.SemanticModelFile)
	assert.Equal(t, int64(5000), gotRequest.Timeout)
	require.Len(t, gotRequest.Messages, 1)
	assert.Equal(t, "user", gotRequest.Messages[0].Role)
	require.Len(t, gotRequest.Messages[0].Content, 1)
	assert.Equal(t, "show my cholesterol trend", gotRequest.Messages[0].Content[0].Text)
}

func TestClient_Translate_FirstSQLBlockWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"message": {
				"content": [
					{"type": "sql", "statement": "SELECT first"},
					{"type": "sql", "statement": "SELECT second"}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, &staticTokens{token: "jwt"})
	translation, err := client.Translate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "SELECT first", translation.SQL)
}

func TestClient_Translate_FallbackSQLKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "Top-level sql key",
			body: `{"sql": "SELECT 42"}`,
			want: "SELECT 42",
		},
		{
			name: "Top-level code key",
			body: `{"code": "SELECT 43"}`,
			want: "SELECT 43",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, &staticTokens{token: "jwt"})
			translation, err := client.Translate(context.Background(), "anything")
			require.NoError(t, err)
			assert.Equal(t, tt.want, translation.SQL)
		})
	}
}

func TestClient_Translate_NoSQLGenerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": {"content": [{"type": "text", "text": "I cannot answer that"}]}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, &staticTokens{token: "jwt"})
	_, err := client.Translate(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNoSQLGenerated, apperrors.Kind(err))
}

func TestClient_Translate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "invalid token"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, &staticTokens{token: "jwt"})
	_, err := client.Translate(context.Background(), "anything")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeQueryTranslation, appErr.Type)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	assert.Contains(t, appErr.Message, "401")
}

func TestClient_Translate_EmptyQuery(t *testing.T) {
	tokens := &staticTokens{token: "jwt"}
	client := newTestClient("http://127.0.0.1:1", tokens)

	_, err := client.Translate(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeQueryTranslation, apperrors.Kind(err))
	assert.Zero(t, tokens.calls, "empty query must not mint a token")
}

func TestClient_Translate_TokenFailure(t *testing.T) {
	tokens := &staticTokens{err: apperrors.NewAuthError("key unusable", nil)}
	client := newTestClient("http://127.0.0.1:1", tokens)

	_, err := client.Translate(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeAuth, apperrors.Kind(err))
}

func TestClient_Translate_TransportError(t *testing.T) {
	// A closed server forces a connection error before any status code.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(srv.URL, &staticTokens{token: "jwt"})
	_, err := client.Translate(context.Background(), "anything")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeQueryTranslation, appErr.Type)
	assert.Zero(t, appErr.StatusCode)
}
