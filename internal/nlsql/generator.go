package nlsql

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Generator is the narrow interface to the generative text service. The
// Writer, Reviewer and Critic all share one implementation; tests substitute
// a scripted fake.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const defaultModel = string(anthropic.ModelClaudeHaiku4_5_20251001)

// ClaudeGenerator calls the Anthropic Messages API with a per-call timeout.
type ClaudeGenerator struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	logger    *slog.Logger
}

// NewClaudeGenerator creates a generator. An empty model selects the default;
// a zero timeout disables the per-call deadline.
func NewClaudeGenerator(apiKey, model string, timeout time.Duration, logger *slog.Logger) (*ClaudeGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	if model == "" {
		model = defaultModel
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeGenerator{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: 2048,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Complete sends one system+user exchange and returns the concatenated text
// blocks of the response.
func (g *ClaudeGenerator) Complete(ctx context.Context, system, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	params := anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := g.client.Messages.New(ctx, params)
	if err != nil {
		if g.logger != nil {
			g.logger.Error("Claude API call failed", "error", err, "model", string(g.model))
		}
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	responseText := ""
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			responseText += textBlock.Text
		}
	}
	if responseText == "" {
		if g.logger != nil {
			g.logger.Error("No text content in Claude response", "content_blocks", len(message.Content))
		}
		return "", fmt.Errorf("no text response from Claude")
	}
	return responseText, nil
}
