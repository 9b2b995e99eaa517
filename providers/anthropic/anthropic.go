package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/internal/httpx"
	"github.com/1broseidon/aicookbook/media"
	"github.com/1broseidon/aicookbook/models"
	"github.com/goccy/go-json"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultChatModel = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens = 1024
	apiVersion       = "2023-06-01"
)

// AnthropicProvider implements the Anthropic-specific functionality
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures an AnthropicProvider.
type Option func(*AnthropicProvider)

// WithBaseURL points the provider at another Messages API host.
func WithBaseURL(baseURL string) Option {
	return func(p *AnthropicProvider) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *AnthropicProvider) {
		p.client = client
	}
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(cfg *config.Config, opts ...Option) *AnthropicProvider {
	p := &AnthropicProvider{
		apiKey:  cfg.AnthropicAPIKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Configured() error {
	return config.RequireKey("ANTHROPIC_API_KEY", p.apiKey, config.AnthropicPlaceholder)
}

func (p *AnthropicProvider) Close() error { return nil }

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature *float32  `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Chat sends one user turn to the Messages API. Images go first, as the
// Messages API recommends.
func (p *AnthropicProvider) Chat(ctx context.Context, input models.ChatInput) (*models.ChatResponse, error) {
	var blocks []contentBlock
	if input.HasImage() {
		source, err := p.buildImageSource(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, contentBlock{Type: "image", Source: source})
	}
	blocks = append(blocks, contentBlock{Type: "text", Text: input.Prompt})

	requestBody := messagesRequest{
		Model:     input.Model,
		MaxTokens: input.MaxTokens,
		System:    input.System,
		Messages:  []message{{Role: "user", Content: blocks}},
	}
	if requestBody.Model == "" {
		requestBody.Model = DefaultChatModel
	}
	if requestBody.MaxTokens <= 0 {
		requestBody.MaxTokens = DefaultMaxTokens
	}
	if input.Temperature > 0 {
		requestBody.Temperature = &input.Temperature
	}

	body, _, err := httpx.PostJSON(ctx, p.client, "Anthropic", p.baseURL+"/v1/messages", map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": apiVersion,
	}, requestBody)
	if err != nil {
		return nil, err
	}

	var result messagesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode Anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("no content in response")
	}

	return &models.ChatResponse{
		Text:     text.String(),
		Model:    result.Model,
		Provider: p.Name(),
		Usage: &models.Usage{
			PromptTokens:     result.Usage.InputTokens,
			CompletionTokens: result.Usage.OutputTokens,
			TotalTokens:      result.Usage.InputTokens + result.Usage.OutputTokens,
		},
	}, nil
}

func (p *AnthropicProvider) buildImageSource(ctx context.Context, src *models.ImageSource) (*imageSource, error) {
	switch src.Kind {
	case models.SourceURL:
		return &imageSource{Type: "url", URL: src.Location}, nil
	case models.SourceCloudStorage:
		return nil, fmt.Errorf("Anthropic cannot read %s: %w", src.Location, media.ErrCloudStorage)
	}

	data, mimeType, err := media.ReadImage(ctx, p.client, src)
	if err != nil {
		return nil, err
	}
	return &imageSource{Type: "base64", MediaType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}, nil
}
