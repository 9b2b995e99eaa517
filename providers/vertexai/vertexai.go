// Package vertexai calls Gemini and Imagen models hosted on Vertex AI.
//
// Authentication uses Application Default Credentials, so the only
// settings it needs are a Google Cloud project and location. Unlike the
// API-key Gemini provider it can read images directly from Cloud Storage.
package vertexai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/internal/httpx"
	"github.com/1broseidon/aicookbook/media"
	"github.com/1broseidon/aicookbook/models"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

const (
	DefaultChatModel  = "gemini-1.5-flash-002"
	DefaultImageModel = "imagen-3.0-generate-001"

	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

var imagenAspectRatios = []string{"1:1", "9:16", "16:9", "3:4", "4:3"}

// VertexAIProvider implements chat, vision and image generation on Vertex AI.
type VertexAIProvider struct {
	project  string
	location string
	baseURL  string

	mu         sync.Mutex
	httpClient *http.Client
}

// Option configures a VertexAIProvider.
type Option func(*VertexAIProvider)

// WithHTTPClient replaces the credentialed client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(p *VertexAIProvider) {
		p.httpClient = client
	}
}

// WithBaseURL overrides the regional endpoint.
func WithBaseURL(baseURL string) Option {
	return func(p *VertexAIProvider) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewVertexAIProvider creates a provider for cfg.VertexProject in cfg.VertexLocation.
// Credentials are looked up on first use.
func NewVertexAIProvider(cfg *config.Config, opts ...Option) *VertexAIProvider {
	p := &VertexAIProvider{
		project:  cfg.VertexProject,
		location: cfg.VertexLocation,
	}
	p.baseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com", p.location)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *VertexAIProvider) Name() string { return "vertexai" }

func (p *VertexAIProvider) Configured() error {
	cfg := config.Config{VertexProject: p.project, VertexLocation: p.location}
	return cfg.RequireVertex()
}

// ReadsCloudStorage reports that gs:// image references are passed through.
func (p *VertexAIProvider) ReadsCloudStorage() bool { return true }

func (p *VertexAIProvider) Close() error { return nil }

func (p *VertexAIProvider) client(ctx context.Context) (*http.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.httpClient != nil {
		return p.httpClient, nil
	}
	client, _, err := htransport.NewClient(ctx, option.WithScopes(cloudPlatformScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI credentials: %w", err)
	}
	p.httpClient = client
	return client, nil
}

func (p *VertexAIProvider) modelURL(model, method string) string {
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:%s",
		p.baseURL, p.project, p.location, model, method)
}

// Chat calls generateContent with the prompt and an optional image part.
func (p *VertexAIProvider) Chat(ctx context.Context, input models.ChatInput) (*models.ChatResponse, error) {
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	body, err := buildGenerateContent(ctx, client, input)
	if err != nil {
		return nil, err
	}

	modelName := input.Model
	if modelName == "" {
		modelName = DefaultChatModel
	}

	respBody, _, err := httpx.PostJSON(ctx, client, "Vertex AI", p.modelURL(modelName, "generateContent"), nil, body)
	if err != nil {
		return nil, err
	}

	resp := gjson.ParseBytes(respBody)
	var text strings.Builder
	for _, part := range resp.Get("candidates.0.content.parts").Array() {
		text.WriteString(part.Get("text").String())
	}
	if text.Len() == 0 {
		if reason := resp.Get("promptFeedback.blockReason").String(); reason != "" {
			return nil, fmt.Errorf("prompt blocked: %s", reason)
		}
		return nil, errors.New("no content generated")
	}

	usage := resp.Get("usageMetadata")
	return &models.ChatResponse{
		Text:     text.String(),
		Model:    modelName,
		Provider: p.Name(),
		Usage: &models.Usage{
			PromptTokens:     int(usage.Get("promptTokenCount").Int()),
			CompletionTokens: int(usage.Get("candidatesTokenCount").Int()),
			TotalTokens:      int(usage.Get("totalTokenCount").Int()),
		},
	}, nil
}

func buildGenerateContent(ctx context.Context, client *http.Client, input models.ChatInput) ([]byte, error) {
	body := []byte(`{"contents":[{"role":"user","parts":[]}]}`)
	var err error
	set := func(path string, value interface{}) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, value)
		}
	}

	if input.HasImage() {
		src := input.Image
		if src.Kind == models.SourceCloudStorage {
			mimeType := src.MIMEType
			if mimeType == "" {
				mimeType = mimeFromExtension(src.Location)
			}
			set("contents.0.parts.-1", map[string]interface{}{
				"fileData": map[string]string{"mimeType": mimeType, "fileUri": src.Location},
			})
		} else {
			data, mimeType, readErr := media.ReadImage(ctx, client, src)
			if readErr != nil {
				return nil, readErr
			}
			set("contents.0.parts.-1", map[string]interface{}{
				"inlineData": map[string]string{"mimeType": mimeType, "data": base64.StdEncoding.EncodeToString(data)},
			})
		}
	}
	set("contents.0.parts.-1", map[string]string{"text": input.Prompt})

	if input.System != "" {
		set("systemInstruction.parts.0.text", input.System)
	}
	if input.Temperature > 0 {
		set("generationConfig.temperature", input.Temperature)
	}
	if input.MaxTokens > 0 {
		set("generationConfig.maxOutputTokens", input.MaxTokens)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to build Vertex AI request: %w", err)
	}
	return body, nil
}

func mimeFromExtension(location string) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(location))); t != "" {
		return strings.Split(t, ";")[0]
	}
	return "image/jpeg"
}

// GenerateImage calls an Imagen model's predict method and returns the decoded images.
func (p *VertexAIProvider) GenerateImage(ctx context.Context, input models.ImageGenerationInput) (*models.ImageGenerationResponse, error) {
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	modelName := input.Model
	if modelName == "" {
		modelName = DefaultImageModel
	}
	n := input.Number
	if n <= 0 {
		n = 1
	}

	body, err := buildPredict(input.Prompt, n, models.NearestAspectRatio(input.Size, imagenAspectRatios))
	if err != nil {
		return nil, err
	}

	respBody, _, err := httpx.PostJSON(ctx, client, "Vertex AI", p.modelURL(modelName, "predict"), nil, body)
	if err != nil {
		return nil, err
	}

	result := &models.ImageGenerationResponse{Provider: p.Name()}
	for _, prediction := range gjson.GetBytes(respBody, "predictions").Array() {
		encoded := prediction.Get("bytesBase64Encoded").String()
		if encoded == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data: %w", err)
		}
		mimeType := prediction.Get("mimeType").String()
		if mimeType == "" {
			mimeType = "image/png"
		}
		result.Images = append(result.Images, models.GeneratedImage{Data: data, MIMEType: mimeType})
	}
	if len(result.Images) == 0 {
		return nil, errors.New("no images in Vertex AI response")
	}
	return result, nil
}

func buildPredict(prompt string, sampleCount int, aspectRatio string) ([]byte, error) {
	body := []byte(`{"instances":[{}]}`)
	var err error
	set := func(path string, value interface{}) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, value)
		}
	}

	set("instances.0.prompt", prompt)
	set("parameters.sampleCount", sampleCount)
	set("parameters.aspectRatio", aspectRatio)

	if err != nil {
		return nil, fmt.Errorf("failed to build Vertex AI request: %w", err)
	}
	return body, nil
}
