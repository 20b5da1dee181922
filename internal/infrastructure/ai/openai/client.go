// Package openai provides recipe generation over the OpenAI chat completions
// API. The same client serves a llama.cpp server through its
// OpenAI-compatible endpoint.
package openai

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

// llama.cpp servers accept any bearer token
const llamaCppAPIKey = "dummy-key"

// Client implements outbound.RecipeGenerator using the OpenAI API
type Client struct {
	name        string
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger

	// compact sends the short single-message prompt small models cope with
	compact bool
}

var _ outbound.RecipeGenerator = (*Client)(nil)

// NewClient creates a client for the OpenAI API
func NewClient(cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set in environment")
	}
	return newClient(config.ProviderOpenAI, cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, false, cfg, logger), nil
}

// NewLlamaCppClient creates a client for a llama.cpp server
func NewLlamaCppClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.LlamaCppServerURL, "/") + "/v1"
	return newClient(config.ProviderLlamaCpp, llamaCppAPIKey, baseURL, cfg.LlamaCppModel, true, cfg, logger)
}

func newClient(name, apiKey, baseURL, model string, compact bool, cfg config.AIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		name:        name,
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		compact:     compact,
		client:      &http.Client{Timeout: timeout},
		logger:      logger.Named(name),
	}
}

// OpenAI API structures
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Name returns the provider name
func (c *Client) Name() string {
	return c.name
}

// Model returns the configured model
func (c *Client) Model() string {
	return c.model
}

// GenerateRecipe generates a recipe using the chat completions endpoint
func (c *Client) GenerateRecipe(ctx context.Context, req recipe.Request) (*recipe.Recipe, error) {
	var messages []Message
	if c.compact {
		messages = []Message{{Role: "user", Content: prompt.Compact(req)}}
	} else {
		messages = []Message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User(req)},
		}
	}

	content, err := c.complete(ctx, messages)
	if err != nil {
		c.logger.Error("Chat completion failed", zap.Error(err))
		return nil, errors.NewExternalServiceError(c.name, err)
	}

	r, err := prompt.ParseRecipe(c.name, content, req)
	if err != nil {
		c.logger.Warn("Failed to parse chat completion",
			zap.Error(err),
			zap.String("response", prompt.Truncate(content, 500)))
		return nil, err
	}
	return r, nil
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if !c.compact {
		reqBody.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	c.logger.Debug("Chat completion successful",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
		zap.Int("total_tokens", chatResp.Usage.TotalTokens),
	)
	return chatResp.Choices[0].Message.Content, nil
}
