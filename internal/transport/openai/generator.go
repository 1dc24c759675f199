package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hoplite/internal/domain"
	"github.com/kailas-cloud/hoplite/internal/metrics"
)

// Generator produces text via the chat completions API. The service treats it
// as optional: with no API key configured IsAvailable reports false and every
// caller falls back to its heuristic path.
type Generator struct {
	client   *openai.Client
	model    string
	user     string
	provider string
	enabled  bool
	logger   *zap.Logger
}

// GeneratorConfig holds the text generation provider settings.
type GeneratorConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	User     string
	Provider string
	Logger   *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider. An
// empty API key yields a disabled generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	g := &Generator{
		model:    cfg.Model,
		user:     cfg.User,
		provider: cfg.Provider,
		enabled:  cfg.APIKey != "" && cfg.Model != "",
		logger:   cfg.Logger,
	}
	if g.enabled {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = cfg.BaseURL
		g.client = openai.NewClientWithConfig(clientCfg)
	}
	return g
}

// IsAvailable reports whether the provider is configured.
func (g *Generator) IsAvailable() bool { return g.enabled }

// GenerateText runs one chat completion and returns the assistant text.
func (g *Generator) GenerateText(
	ctx context.Context, prompt, systemPrompt string, maxTokens int,
) (string, error) {
	if !g.enabled {
		return "", domain.ErrGeneratorUnavailable
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:     g.model,
		Messages:  messages,
		MaxTokens: maxTokens,
		User:      g.user,
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", parseAPIError("generation", err, domain.ErrGeneratorError)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGeneratorError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	g.logger.Debug("Chat completion finished",
		zap.String("model", g.model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration),
	)

	return resp.Choices[0].Message.Content, nil
}
