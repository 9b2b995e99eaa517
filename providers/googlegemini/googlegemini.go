package googlegemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/media"
	"github.com/1broseidon/aicookbook/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultChatModel = "gemini-1.5-flash"

// GoogleGeminiProvider implements chat and vision against the Gemini API
// using an API key.
type GoogleGeminiProvider struct {
	apiKey        string
	clientOptions []option.ClientOption
	httpClient    *http.Client

	mu     sync.Mutex
	client *genai.Client
}

// Option configures a GoogleGeminiProvider.
type Option func(*GoogleGeminiProvider)

// WithClientOptions passes extra options to genai.NewClient.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(p *GoogleGeminiProvider) {
		p.clientOptions = append(p.clientOptions, opts...)
	}
}

// WithHTTPClient sets the client used to download remote images.
func WithHTTPClient(client *http.Client) Option {
	return func(p *GoogleGeminiProvider) {
		p.httpClient = client
	}
}

// NewGoogleGeminiProvider creates a new Google Gemini provider. The SDK
// client is created on first use so an unconfigured provider never dials.
func NewGoogleGeminiProvider(cfg *config.Config, opts ...Option) *GoogleGeminiProvider {
	p := &GoogleGeminiProvider{
		apiKey:     cfg.GeminiAPIKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *GoogleGeminiProvider) Name() string { return "googlegemini" }

func (p *GoogleGeminiProvider) Configured() error {
	return config.RequireKey("GEMINI_API_KEY", p.apiKey, config.GeminiPlaceholder)
}

func (p *GoogleGeminiProvider) genaiClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if err := p.Configured(); err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithAPIKey(p.apiKey)}, p.clientOptions...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

// Close closes the Google Gemini client
func (p *GoogleGeminiProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

// Chat generates content from the prompt and, when present, an inline image.
func (p *GoogleGeminiProvider) Chat(ctx context.Context, input models.ChatInput) (*models.ChatResponse, error) {
	client, err := p.genaiClient(ctx)
	if err != nil {
		return nil, err
	}

	parts, err := p.buildParts(ctx, input)
	if err != nil {
		return nil, err
	}

	modelName := input.Model
	if modelName == "" {
		modelName = DefaultChatModel
	}
	model := client.GenerativeModel(modelName)
	if input.Temperature > 0 {
		model.SetTemperature(input.Temperature)
	}
	SetMaxOutputTokens(model, input.MaxTokens)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("Gemini generation failed: %w", err)
	}

	text, tokens, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		Text:     text,
		Model:    modelName,
		Provider: p.Name(),
		Usage: &models.Usage{
			CompletionTokens: tokens,
			TotalTokens:      tokens,
		},
	}, nil
}

// buildParts orders the request as system text, image, prompt.
func (p *GoogleGeminiProvider) buildParts(ctx context.Context, input models.ChatInput) ([]genai.Part, error) {
	var parts []genai.Part
	if input.System != "" {
		parts = append(parts, genai.Text(input.System))
	}
	if input.HasImage() {
		data, mimeType, err := media.ReadImage(ctx, p.httpClient, input.Image)
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.Blob{MIMEType: mimeType, Data: data})
	}
	return append(parts, genai.Text(input.Prompt)), nil
}

func extractText(resp *genai.GenerateContentResponse) (string, int, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", 0, errors.New("no content generated")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return "", 0, errors.New("unexpected content type in response")
	}
	return text.String(), int(candidate.TokenCount), nil
}

// SetMaxOutputTokens sets the max output tokens for the model
func SetMaxOutputTokens(model *genai.GenerativeModel, maxTokens int) {
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
}
