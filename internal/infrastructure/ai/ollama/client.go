// Package ollama provides Ollama integration for local recipe generation
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/ai/prompt"
	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/ports/outbound"
	"github.com/alchemorsel/marco/pkg/errors"
)

// ProviderName identifies this backend in logs and errors
const ProviderName = config.ProviderOllama

// Client implements outbound.RecipeGenerator using the Ollama chat API
type Client struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

var _ outbound.RecipeGenerator = (*Client)(nil)

// NewClient creates a new Ollama client
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	logger = logger.Named("ollama")
	logger.Debug("Ollama client initialized",
		zap.String("base_url", cfg.OllamaBaseURL),
		zap.String("model", cfg.OllamaModel),
		zap.Duration("timeout", timeout))

	return &Client{
		baseURL:     strings.TrimRight(cfg.OllamaBaseURL, "/"),
		model:       cfg.OllamaModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Ollama API structures
type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ChatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   string                 `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Model        string      `json:"model"`
	Message      ChatMessage `json:"message"`
	Done         bool        `json:"done"`
	EvalCount    int         `json:"eval_count"`
	EvalDuration int64       `json:"eval_duration"`
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// Model returns the configured model
func (c *Client) Model() string {
	return c.model
}

// HealthCheck verifies the Ollama service is available
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// GenerateRecipe generates a recipe using Ollama
func (c *Client) GenerateRecipe(ctx context.Context, req recipe.Request) (*recipe.Recipe, error) {
	content, err := c.chat(ctx, prompt.System, prompt.User(req))
	if err != nil {
		c.logger.Error("Ollama chat completion failed", zap.Error(err))
		return nil, errors.NewExternalServiceError(ProviderName, err)
	}

	r, err := prompt.ParseRecipe(ProviderName, content, req)
	if err != nil {
		c.logger.Warn("Failed to parse Ollama response",
			zap.Error(err),
			zap.String("response", prompt.Truncate(content, 500)))
		return nil, err
	}

	c.logger.Info("Recipe generated via Ollama",
		zap.String("model", c.model),
		zap.String("name", r.Name))
	return r, nil
}

// chat uses Ollama's chat API in JSON mode
func (c *Client) chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
		Format: "json",
		Options: map[string]interface{}{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
			"num_ctx":     4096,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, prompt.Truncate(string(body), 200))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !chatResp.Done {
		return "", fmt.Errorf("incomplete response from Ollama")
	}

	c.logger.Debug("Ollama chat completion successful",
		zap.String("model", chatResp.Model),
		zap.Int64("eval_duration", chatResp.EvalDuration),
		zap.Int("eval_count", chatResp.EvalCount))

	return chatResp.Message.Content, nil
}
