// Package elevenlabs synthesizes speech with the ElevenLabs text-to-speech API.
package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/internal/httpx"
	"github.com/1broseidon/aicookbook/models"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultModel   = "eleven_multilingual_v2"
	// DefaultVoice is the stock "Rachel" voice.
	DefaultVoice = "21m00Tcm4TlvDq8ikWAM"
)

// ElevenLabsProvider implements text-to-speech.
type ElevenLabsProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures an ElevenLabsProvider.
type Option func(*ElevenLabsProvider)

func WithBaseURL(baseURL string) Option {
	return func(p *ElevenLabsProvider) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *ElevenLabsProvider) {
		p.client = client
	}
}

// NewElevenLabsProvider creates a new ElevenLabs provider
func NewElevenLabsProvider(cfg *config.Config, opts ...Option) *ElevenLabsProvider {
	p := &ElevenLabsProvider{
		apiKey:  cfg.ElevenLabsAPIKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }

func (p *ElevenLabsProvider) Configured() error {
	return config.RequireKey("ELEVENLABS_API_KEY", p.apiKey, config.ElevenLabsPlaceholder)
}

func (p *ElevenLabsProvider) Close() error { return nil }

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Speak converts input.Text to MP3 audio. input.Voice is an ElevenLabs voice ID.
func (p *ElevenLabsProvider) Speak(ctx context.Context, input models.SpeechInput) (*models.SpeechResponse, error) {
	voice := input.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	modelName := input.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	audio, _, err := httpx.PostJSON(ctx, p.client, "ElevenLabs", fmt.Sprintf("%s/v1/text-to-speech/%s", p.baseURL, voice), map[string]string{
		"xi-api-key": p.apiKey,
		"Accept":     "audio/mpeg",
	}, speechRequest{
		Text:          input.Text,
		ModelID:       modelName,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	})
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, errors.New("ElevenLabs returned no audio")
	}

	return &models.SpeechResponse{Audio: audio, Format: "mp3", Provider: p.Name()}, nil
}
