package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dfryer1193/memento/memento/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

var _ domain.TextProvider = (*ChatProvider)(nil)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7

	systemMessage = "You are a helpful generator."
)

// Config configures the chat completion provider
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
}

// chatCompletions is the part of the openai client the provider calls
type chatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// ChatProvider implements domain.TextProvider with the OpenAI chat completions API
type ChatProvider struct {
	completions chatCompletions
	model       string
	maxTokens   int
	temperature float64
}

// NewChatProvider creates a provider. A missing API key is a *domain.ConfigurationError.
func NewChatProvider(cfg Config) (*ChatProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &domain.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := openai.NewClient(opts...)
	return newChatProvider(&client.Chat.Completions, cfg), nil
}

func newChatProvider(completions chatCompletions, cfg Config) *ChatProvider {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	return &ChatProvider{
		completions: completions,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// GenerateText sends prompt as a single user message and returns the first choice's content.
// A response without choices yields an empty string.
func (p *ChatProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	completion, err := p.completions.New(ctx, p.buildParams(prompt))
	if err != nil {
		return "", handleOpenAIError("creating chat completion", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

func (p *ChatProvider) buildParams(prompt string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemMessage),
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(p.maxTokens)),
		Temperature:         openai.Float(p.temperature),
	}
}

// handleOpenAIError converts an error from the openai client into a *domain.ProviderError
func handleOpenAIError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		if body == "" {
			body = http.StatusText(apiErr.StatusCode)
		}
		return &domain.ProviderError{
			StatusCode: apiErr.StatusCode,
			Body:       fmt.Sprintf("openai: %s failed: %s", op, body),
			Err:        err,
		}
	}

	return &domain.ProviderError{
		Body: fmt.Sprintf("openai: %s failed", op),
		Err:  err,
	}
}
