package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/pkg/errors"
)

const recipeJSON = `{"name":"Salmon Bowl","description":"Calming","prep_time":10,"cook_time":15,"servings":2,
"ingredients":[{"name":"salmon","quantity":200,"unit":"g"},{"name":"spinach","quantity":100,"unit":"g"}],
"instructions":["Sear","Serve"]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.AIConfig{
		OllamaBaseURL: srv.URL,
		OllamaModel:   "qwen3:4b",
		Temperature:   0.7,
		MaxTokens:     512,
		Timeout:       5 * time.Second,
	}, zaptest.NewLogger(t))
}

func reply(w http.ResponseWriter, content string, done bool) {
	_ = json.NewEncoder(w).Encode(ChatResponse{
		Model:   "qwen3:4b",
		Message: ChatMessage{Role: "assistant", Content: content},
		Done:    done,
	})
}

func TestGenerateRecipe_Success(t *testing.T) {
	var got ChatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, recipeJSON, true)
	})

	req := recipe.NewRequest("salmon bowl")
	r, err := client.GenerateRecipe(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Salmon Bowl", r.Name)
	assert.Len(t, r.Ingredients, 2)
	assert.Equal(t, "qwen3:4b", got.Model)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "salmon bowl")
	assert.Equal(t, ProviderName, client.Name())
}

func TestGenerateRecipe_MalformedOutput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, "I think a salmon bowl would be lovely.", true)
	})

	_, err := client.GenerateRecipe(context.Background(), recipe.NewRequest("salmon bowl"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeMalformedOutput))
	assert.Contains(t, err.Error(), "Invalid json output")
}

func TestGenerateRecipe_TransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}},
		{"incomplete", func(w http.ResponseWriter, r *http.Request) {
			reply(w, recipeJSON, false)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.GenerateRecipe(context.Background(), recipe.NewRequest("soup"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.CodeExternalServiceError))
		})
	}
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.NoError(t, client.HealthCheck(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, down.HealthCheck(context.Background()))
}
