package openai

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

const recipeJSON = `{"name":"Walnut Oats","ingredients":[{"name":"oats","quantity":80,"unit":"g"}],"instructions":["Simmer"]}`

type capture struct {
	path string
	auth string
	body ChatCompletionRequest
}

func server(t *testing.T, status int, content string, c *capture) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		if status != http.StatusOK {
			http.Error(w, `{"error":"boom"}`, status)
			return
		}
		_ = json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: content}, FinishReason: "stop"}},
			Usage:   Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(config.AIConfig{}, zaptest.NewLogger(t))
	assert.EqualError(t, err, "OPENAI_API_KEY not set in environment")
}

func TestGenerateRecipe_OpenAI(t *testing.T) {
	var c capture
	srv := server(t, http.StatusOK, recipeJSON, &c)
	client, err := NewClient(config.AIConfig{
		OpenAIKey:     "sk-test",
		OpenAIModel:   "gpt-4o",
		OpenAIBaseURL: srv.URL + "/v1",
		Timeout:       5 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	r, err := client.GenerateRecipe(context.Background(), recipe.NewRequest("oats"))

	require.NoError(t, err)
	assert.Equal(t, "Walnut Oats", r.Name)
	assert.Equal(t, "/v1/chat/completions", c.path)
	assert.Equal(t, "Bearer sk-test", c.auth)
	assert.Equal(t, "gpt-4o", c.body.Model)
	require.NotNil(t, c.body.ResponseFormat)
	assert.Equal(t, "json_object", c.body.ResponseFormat.Type)
	assert.Len(t, c.body.Messages, 2)
	assert.Equal(t, config.ProviderOpenAI, client.Name())
}

func TestGenerateRecipe_LlamaCppUsesCompactPrompt(t *testing.T) {
	var c capture
	srv := server(t, http.StatusOK, "Sure: "+recipeJSON, &c)
	client := NewLlamaCppClient(config.AIConfig{
		LlamaCppServerURL: srv.URL,
		LlamaCppModel:     "local",
	}, zaptest.NewLogger(t))

	r, err := client.GenerateRecipe(context.Background(), recipe.NewRequest("oats"))

	require.NoError(t, err)
	assert.Equal(t, "Walnut Oats", r.Name)
	assert.Equal(t, "/v1/chat/completions", c.path)
	assert.Equal(t, "Bearer "+llamaCppAPIKey, c.auth)
	assert.Nil(t, c.body.ResponseFormat)
	require.Len(t, c.body.Messages, 1)
	assert.Contains(t, c.body.Messages[0].Content, "Just the JSON:")
	assert.Equal(t, config.ProviderLlamaCpp, client.Name())
}

func TestGenerateRecipe_Errors(t *testing.T) {
	var c capture
	srv := server(t, http.StatusTooManyRequests, "", &c)
	client, err := NewClient(config.AIConfig{OpenAIKey: "k", OpenAIBaseURL: srv.URL}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.GenerateRecipe(context.Background(), recipe.NewRequest("oats"))
	assert.True(t, errors.Is(err, errors.CodeExternalServiceError))

	var c2 capture
	srv2 := server(t, http.StatusOK, `{"name":"x"`, &c2)
	client2, err := NewClient(config.AIConfig{OpenAIKey: "k", OpenAIBaseURL: srv2.URL}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client2.GenerateRecipe(context.Background(), recipe.NewRequest("oats"))
	assert.True(t, errors.Is(err, errors.CodeMalformedOutput))
}
