package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgimmler/gemini-proxy/src/config"
)

func TestNewProxyFromEnvironment(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	t.Setenv("GEMINI_BASE_URL", srv.URL)
	t.Setenv("GEMINI_CREDENTIAL_SOURCE", "")
	t.Setenv("GEMINI_CREDENTIAL_NAME", "")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("CloudfrontOrigin", "https://d123.cloudfront.net")

	p, err := newProxy(config.Load())
	require.NoError(t, err)

	resp, err := p.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{"prompt":"hello"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"candidates":[]}`, resp.Body)
	assert.Equal(t, "from-env", gotKey)
	assert.Equal(t, "https://d123.cloudfront.net", resp.Headers["Access-Control-Allow-Origin"])
}

func TestNewProxyUnknownSource(t *testing.T) {
	_, err := newProxy(config.Config{CredentialSource: "vault"})
	assert.Error(t, err)
}
