package ollama

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
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	DefaultChatModel   = "llama3.1"
	DefaultVisionModel = "llava"
)

// OllamaProvider implements chat and vision against a local Ollama server.
type OllamaProvider struct {
	baseURL string
	client  *http.Client
}

// Option configures an OllamaProvider.
type Option func(*OllamaProvider)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *OllamaProvider) {
		p.client = client
	}
}

// NewOllamaProvider creates a new Ollama provider for cfg.OllamaHost.
func NewOllamaProvider(cfg *config.Config, opts ...Option) *OllamaProvider {
	p := &OllamaProvider{
		baseURL: strings.TrimSuffix(strings.TrimSpace(cfg.OllamaHost), "/"),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OllamaProvider) Name() string { return "ollama" }

// Configured requires OLLAMA_BASE_URL; a local server has no credential.
func (p *OllamaProvider) Configured() error {
	return config.RequireKey("OLLAMA_BASE_URL", p.baseURL, config.OllamaPlaceholder)
}

func (p *OllamaProvider) Close() error { return nil }

// Chat sends one message to /api/chat without streaming. Images are sent
// base64-encoded in the message's images list.
func (p *OllamaProvider) Chat(ctx context.Context, input models.ChatInput) (*models.ChatResponse, error) {
	modelName := input.Model
	if modelName == "" {
		modelName = DefaultChatModel
		if input.HasImage() {
			modelName = DefaultVisionModel
		}
	}

	body, err := p.buildRequest(ctx, modelName, input)
	if err != nil {
		return nil, err
	}

	respBody, _, err := httpx.PostJSON(ctx, p.client, "Ollama", p.baseURL+"/api/chat", nil, body)
	if err != nil {
		return nil, err
	}

	result := gjson.ParseBytes(respBody)
	if msg := result.Get("error").String(); msg != "" {
		return nil, errors.New(msg)
	}
	content := result.Get("message.content")
	if !content.Exists() {
		return nil, errors.New("invalid response format")
	}

	promptTokens := int(result.Get("prompt_eval_count").Int())
	completionTokens := int(result.Get("eval_count").Int())
	return &models.ChatResponse{
		Text:     content.String(),
		Model:    result.Get("model").String(),
		Provider: p.Name(),
		Usage: &models.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}, nil
}

func (p *OllamaProvider) buildRequest(ctx context.Context, modelName string, input models.ChatInput) ([]byte, error) {
	body := []byte(`{"stream":false,"messages":[]}`)
	var err error
	set := func(path string, value interface{}) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, value)
		}
	}

	set("model", modelName)
	if input.System != "" {
		set("messages.-1", map[string]string{"role": "system", "content": input.System})
	}

	user := map[string]interface{}{"role": "user", "content": input.Prompt}
	if input.HasImage() {
		encoded, imgErr := p.encodeImage(ctx, input.Image)
		if imgErr != nil {
			return nil, imgErr
		}
		user["images"] = []string{encoded}
	}
	set("messages.-1", user)

	if input.Temperature > 0 {
		set("options.temperature", input.Temperature)
	}
	if input.MaxTokens > 0 {
		set("options.num_predict", input.MaxTokens)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to build Ollama request: %w", err)
	}
	return body, nil
}

func (p *OllamaProvider) encodeImage(ctx context.Context, src *models.ImageSource) (string, error) {
	switch src.Kind {
	case models.SourceLocal:
		return media.EncodeImageToBase64(src.Location)
	case models.SourceCloudStorage:
		return "", fmt.Errorf("Ollama cannot read %s: %w", src.Location, media.ErrCloudStorage)
	}

	data, _, err := media.ReadImage(ctx, p.client, src)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
