package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostWithoutCredentialsIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL}, zap.NewNop())
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Post(context.Background(), "hello", ""))
	assert.False(t, called)
}

func TestPostSendsBearerTokenAndText(t *testing.T) {
	var got createPostRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"123","text":"x"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL, AccessToken: "secret-token"}, zap.NewNop())
	err := c.Post(context.Background(), "A new store has opened!", "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "A new store has opened!\n\nhttps://cdn.example.com/a.png", got.Text)
}

func TestPostReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"title":"Forbidden"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL, AccessToken: "t"}, zap.NewNop())
	err := c.Post(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestNewClientWithoutLogger(t *testing.T) {
	c := NewClient(Config{}, nil)
	assert.Equal(t, DefaultAPIURL, c.apiURL)
	assert.NoError(t, c.Post(context.Background(), "hello", ""))
}
