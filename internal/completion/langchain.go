package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/internal/metrics"
)

// LangChainClient targets OpenAI-compatible local servers such as Ollama or LM Studio.
type LangChainClient struct {
	model       llms.Model
	temperature float64
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

// NewLangChainClient builds a client for cfg.BaseURL. Local servers usually ignore the
// token, so "none" is sent when no key is configured.
func NewLangChainClient(cfg *config.CompletionConfig, logger *zap.Logger) (*LangChainClient, error) {
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("langchain client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LangChainClient{
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger,
	}, nil
}

func (c *LangChainClient) Name() string { return "langchain" }

// Complete sends req as a system+human message pair.
func (c *LangChainClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	content := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, req.System))
	}
	content = append(content, llms.TextParts(schema.ChatMessageTypeHuman, req.Prompt))

	callOpts := []llms.CallOption{
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	}
	if req.JSON {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, content, callOpts...)
	metrics.CompletionDuration.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return "", &ServiceError{Provider: c.Name(), Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		metrics.CompletionRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return "", &ServiceError{Provider: c.Name(), Err: errors.New("no choices returned")}
	}
	metrics.CompletionRequestsTotal.WithLabelValues(c.Name(), "success").Inc()
	return resp.Choices[0].Content, nil
}
