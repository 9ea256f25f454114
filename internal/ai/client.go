// Package ai wraps the Anthropic API behind a small completion client with
// retry, backoff, and a concurrency limit.
//
// Callers receive a structured CompletionResult or an error; there is no
// sentinel string convention. Components that must absorb model failures
// (reply generation) translate errors into empty output themselves.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Model tiers. Post composition needs the stronger model; persona replies are
// short and cheap, so they default to the small one.
const (
	ModelDefault = "claude-sonnet-4-5-20250929"
	ModelSimple  = "claude-3-5-haiku-20241022"
)

// ErrNoAPIKey is returned by New when no API key is configured. The process
// fails fast at startup rather than discovering this mid-cycle.
var ErrNoAPIKey = fmt.Errorf("ANTHROPIC_API_KEY not set")

// Completer is the capability consumed by the generation components.
// Implemented by *Client; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// CompletionRequest describes one synchronous text completion.
type CompletionRequest struct {
	// System is the system prompt. Optional.
	System string

	// Prompt is the user-turn text. Required.
	Prompt string

	// Model overrides the client's default model. Optional.
	Model string

	// MaxTokens caps the response length. Defaults to 2048.
	MaxTokens int
}

// CompletionResult carries the usable text plus usage accounting.
type CompletionResult struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Config holds client configuration.
type Config struct {
	// APIKey is the Anthropic API key. If empty, read from ANTHROPIC_API_KEY.
	APIKey string

	// Model is the default model. Defaults to ModelDefault, overridable via
	// BUZZMILL_MODEL_DEFAULT.
	Model string

	// Retry configures backoff behavior. Zero value uses DefaultRetryConfig.
	Retry RetryConfig
}

// Client is the Anthropic-backed Completer.
type Client struct {
	client *anthropic.Client
	model  string
	retry  RetryConfig
	sem    *semaphore.Weighted
	log    *zap.Logger
}

var _ Completer = (*Client)(nil)

// New creates an Anthropic completion client. Returns ErrNoAPIKey when no key
// is available so the process can refuse to start.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, ErrNoAPIKey
		}
	}

	model := cfg.Model
	if model == "" {
		if env := os.Getenv("BUZZMILL_MODEL_DEFAULT"); env != "" {
			model = env
		} else {
			model = ModelDefault
		}
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}

	var sem *semaphore.Weighted
	if retry.MaxConcurrentCalls > 0 {
		sem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client: &client,
		model:  model,
		retry:  retry,
		sem:    sem,
		log:    log.Named("ai"),
	}, nil
}

// SimpleModel returns the model used for short generation tasks, honoring the
// BUZZMILL_MODEL_SIMPLE override.
func SimpleModel() string {
	if env := os.Getenv("BUZZMILL_MODEL_SIMPLE"); env != "" {
		return env
	}
	return ModelSimple
}

// Complete makes one completion call with retry and per-attempt timeout.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	start := time.Now()
	var response *anthropic.Message
	err := c.retryWithBackoff(ctx, "completion", func(attemptCtx context.Context) error {
		resp, apiErr := c.client.Messages.New(attemptCtx, params)
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	c.log.Debug("completion finished",
		zap.String("model", model),
		zap.Int64("input_tokens", response.Usage.InputTokens),
		zap.Int64("output_tokens", response.Usage.OutputTokens),
		zap.Duration("duration", time.Since(start)))

	return &CompletionResult{
		Text:         text,
		InputTokens:  response.Usage.InputTokens,
		OutputTokens: response.Usage.OutputTokens,
	}, nil
}
