package commentary

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You are a venture analyst reviewing an automated first-pass startup screen. " +
	"Write two short paragraphs of plain prose for an investment partner. Do not restate the report, " +
	"do not change its verdict, and do not use markdown headings."

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("ANTHROPIC_API_KEY not configured")

// Caller sends one prompt to a language model and returns its text reply.
type Caller interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicCaller struct {
	messages  AnthropicMessager
	model     anthropic.Model
	maxTokens int64
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

// NewAnthropicCaller returns ErrNotConfigured for a blank key.
func NewAnthropicCaller(apiKey string) (*AnthropicCaller, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &AnthropicCaller{
		messages:  newAnthropicClient(apiKey),
		model:     anthropic.ModelClaudeSonnet4_20250514,
		maxTokens: 1024,
	}, nil
}

func (a *AnthropicCaller) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0.2),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// retryable reports whether a transport failure is worth another attempt:
// timeouts, rate limits and server errors.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
