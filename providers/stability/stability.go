// Package stability generates images with the Stability AI REST API.
package stability

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/internal/httpx"
	"github.com/1broseidon/aicookbook/media"
	"github.com/1broseidon/aicookbook/models"
	"github.com/goccy/go-json"
)

const (
	DefaultBaseURL = "https://api.stability.ai"
	DefaultModel   = "core"
)

// Aspect ratios accepted by the stable-image endpoints.
var aspectRatios = []string{"16:9", "1:1", "21:9", "2:3", "3:2", "4:5", "5:4", "9:16", "9:21"}

// StabilityProvider implements image generation for Stable Image Core/Ultra.
type StabilityProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures a StabilityProvider.
type Option func(*StabilityProvider)

func WithBaseURL(baseURL string) Option {
	return func(p *StabilityProvider) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *StabilityProvider) {
		p.client = client
	}
}

// NewStabilityProvider creates a new Stability AI provider
func NewStabilityProvider(cfg *config.Config, opts ...Option) *StabilityProvider {
	p := &StabilityProvider{
		apiKey:  cfg.StabilityAPIKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *StabilityProvider) Name() string { return "stability" }

func (p *StabilityProvider) Configured() error {
	return config.RequireKey("STABILITY_API_KEY", p.apiKey, config.StabilityPlaceholder)
}

func (p *StabilityProvider) Close() error { return nil }

type errorResponse struct {
	Name   string   `json:"name"`
	Errors []string `json:"errors"`
}

// GenerateImage posts a multipart form and returns the raw PNG bytes.
// The endpoint produces one image per request, so Number is ignored.
func (p *StabilityProvider) GenerateImage(ctx context.Context, input models.ImageGenerationInput) (*models.ImageGenerationResponse, error) {
	modelName := input.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	fields := [][2]string{
		{"prompt", input.Prompt},
		{"output_format", "png"},
		{"aspect_ratio", models.NearestAspectRatio(input.Size, aspectRatios)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("failed to build Stability request: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build Stability request: %w", err)
	}

	url := fmt.Sprintf("%s/v2beta/stable-image/generate/%s", p.baseURL, modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &form)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "image/*")

	data, header, err := httpx.Do(p.client, "Stability", req)
	if err != nil {
		return nil, err
	}

	mimeType := header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && len(apiErr.Errors) > 0 {
			return nil, fmt.Errorf("Stability returned %s: %s", apiErr.Name, strings.Join(apiErr.Errors, "; "))
		}
		mimeType = media.DetectMIMEType("image.png", data)
	}

	return &models.ImageGenerationResponse{
		Images:   []models.GeneratedImage{{Data: data, MIMEType: mimeType}},
		Provider: p.Name(),
	}, nil
}
