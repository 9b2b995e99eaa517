// Package deepgram transcribes pre-recorded audio with the Deepgram listen API.
package deepgram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/internal/httpx"
	"github.com/1broseidon/aicookbook/media"
	"github.com/1broseidon/aicookbook/models"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://api.deepgram.com"
	DefaultModel   = "nova-2"
)

// DeepgramProvider implements speech-to-text.
type DeepgramProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures a DeepgramProvider.
type Option func(*DeepgramProvider)

func WithBaseURL(baseURL string) Option {
	return func(p *DeepgramProvider) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *DeepgramProvider) {
		p.client = client
	}
}

// NewDeepgramProvider creates a new Deepgram provider
func NewDeepgramProvider(cfg *config.Config, opts ...Option) *DeepgramProvider {
	p := &DeepgramProvider{
		apiKey:  cfg.DeepgramAPIKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *DeepgramProvider) Name() string { return "deepgram" }

func (p *DeepgramProvider) Configured() error {
	return config.RequireKey("DEEPGRAM_API_KEY", p.apiKey, config.DeepgramPlaceholder)
}

func (p *DeepgramProvider) Close() error { return nil }

// Transcribe uploads the audio file as the raw request body. Without a
// language hint Deepgram is asked to detect the language.
func (p *DeepgramProvider) Transcribe(ctx context.Context, input models.TranscriptionInput) (*models.TranscriptionResponse, error) {
	audio, err := os.ReadFile(input.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	modelName := input.Model
	if modelName == "" {
		modelName = DefaultModel
	}
	query := url.Values{}
	query.Set("model", modelName)
	query.Set("smart_format", "true")
	if input.Language != "" {
		query.Set("language", input.Language)
	} else {
		query.Set("detect_language", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/listen?"+query.Encode(), bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+p.apiKey)
	req.Header.Set("Content-Type", media.DetectMIMEType(input.AudioPath, audio))

	body, _, err := httpx.Do(p.client, "Deepgram", req)
	if err != nil {
		return nil, err
	}

	result := gjson.ParseBytes(body)
	alternative := result.Get("results.channels.0.alternatives.0")
	if !alternative.Exists() {
		return nil, errors.New("no transcript in Deepgram response")
	}

	language := input.Language
	if detected := result.Get("results.channels.0.detected_language").String(); detected != "" {
		language = detected
	}

	return &models.TranscriptionResponse{
		Text:       alternative.Get("transcript").String(),
		Confidence: alternative.Get("confidence").Float(),
		Duration:   result.Get("metadata.duration").Float(),
		Language:   language,
		Provider:   p.Name(),
	}, nil
}
