package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/internal/metrics"
)

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

// NewOpenAIClient creates a chat client from cfg.
func NewOpenAIClient(cfg *config.CompletionConfig, logger *zap.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

// Complete sends req as a chat completion and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	metrics.CompletionDuration.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return "", c.parseAPIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.CompletionRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return "", &ServiceError{Provider: c.Name(), Err: errors.New("empty response")}
	}
	metrics.CompletionRequestsTotal.WithLabelValues(c.Name(), "success").Inc()
	c.logger.Debug("completion done",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return resp.Choices[0].Message.Content, nil
}

// parseAPIError maps go-openai errors to ServiceError with the HTTP status when known.
func (c *OpenAIClient) parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := string(reqErr.Body)
		if d := extractDetail(reqErr.Body); d != "" {
			detail = d
		}
		return &ServiceError{Provider: c.Name(), StatusCode: reqErr.HTTPStatusCode, Err: errors.New(detail)}
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ServiceError{Provider: c.Name(), StatusCode: apiErr.HTTPStatusCode, Err: errors.New(apiErr.Message)}
	}
	return &ServiceError{Provider: c.Name(), Err: fmt.Errorf("request failed: %w", err)}
}

// extractDetail reads the "detail" field some OpenAI-compatible servers put in error bodies.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
