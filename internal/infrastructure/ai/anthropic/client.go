// Package anthropic provides recipe generation over the Anthropic Messages API
package anthropic

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
const ProviderName = config.ProviderAnthropic

const apiVersion = "2023-06-01"

// Client implements outbound.RecipeGenerator using the Messages API
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

var _ outbound.RecipeGenerator = (*Client)(nil)

// NewClient creates a new Anthropic client
func NewClient(cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	if cfg.AnthropicKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set in environment")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Client{
		apiKey:      cfg.AnthropicKey,
		baseURL:     strings.TrimRight(cfg.AnthropicBaseURL, "/"),
		model:       cfg.AnthropicModel,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: timeout},
		logger:      logger.Named("anthropic"),
	}, nil
}

// Messages API structures
type MessagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type MessagesResponse struct {
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// Model returns the configured model
func (c *Client) Model() string {
	return c.model
}

// GenerateRecipe generates a recipe using Claude
func (c *Client) GenerateRecipe(ctx context.Context, req recipe.Request) (*recipe.Recipe, error) {
	content, err := c.send(ctx, prompt.System, prompt.User(req))
	if err != nil {
		c.logger.Error("Messages request failed", zap.Error(err))
		return nil, errors.NewExternalServiceError(ProviderName, err)
	}

	r, err := prompt.ParseRecipe(ProviderName, content, req)
	if err != nil {
		c.logger.Warn("Failed to parse Anthropic response",
			zap.Error(err),
			zap.String("response", prompt.Truncate(content, 500)))
		return nil, err
	}
	return r, nil
}

func (c *Client) send(ctx context.Context, system, user string) (string, error) {
	reqBody := MessagesRequest{
		Model:       c.model,
		System:      system,
		Messages:    []Message{{Role: "user", Content: user}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

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

	var msgResp MessagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	var text strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no text content returned")
	}

	c.logger.Debug("Messages request successful",
		zap.String("model", c.model),
		zap.String("stop_reason", msgResp.StopReason),
		zap.Int("input_tokens", msgResp.Usage.InputTokens),
		zap.Int("output_tokens", msgResp.Usage.OutputTokens))
	return text.String(), nil
}
