package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/media"
	"github.com/1broseidon/aicookbook/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultChatModel          = "gpt-4o"
	DefaultImageModel         = "dall-e-3"
	DefaultSpeechModel        = "tts-1"
	DefaultTranscriptionModel = "whisper-1"
	DefaultVoice              = "alloy"
	DefaultImageSize          = "1024x1024"
)

// OpenAIProvider implements chat, vision, image generation, text-to-speech
// and transcription on top of the official OpenAI SDK.
type OpenAIProvider struct {
	apiKey         string
	requestOptions []option.RequestOption
	client         *openai.Client
}

// Option configures an OpenAIProvider.
type Option func(*OpenAIProvider)

// WithRequestOptions passes extra SDK options, such as a base URL or HTTP client.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(p *OpenAIProvider) {
		p.requestOptions = append(p.requestOptions, opts...)
	}
}

// NewOpenAIProvider creates a new OpenAI provider from cfg.OpenAIAPIKey.
// It does not validate the key; see Configured.
func NewOpenAIProvider(cfg *config.Config, opts ...Option) *OpenAIProvider {
	p := &OpenAIProvider{apiKey: cfg.OpenAIAPIKey}
	for _, opt := range opts {
		opt(p)
	}

	reqOpts := append([]option.RequestOption{option.WithAPIKey(p.apiKey)}, p.requestOptions...)
	p.client = openai.NewClient(reqOpts...)
	return p
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Configured reports whether a real API key is present.
func (p *OpenAIProvider) Configured() error {
	return config.RequireKey("OPENAI_API_KEY", p.apiKey, config.OpenAIPlaceholder)
}

// Close closes the OpenAI provider (no-op in this case)
func (p *OpenAIProvider) Close() error {
	return nil
}

// Chat sends one user message, with an optional image, to a chat model.
func (p *OpenAIProvider) Chat(ctx context.Context, input models.ChatInput) (*models.ChatResponse, error) {
	msg, err := userMessage(ctx, input)
	if err != nil {
		return nil, err
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if input.System != "" {
		messages = append(messages, openai.SystemMessage(input.System))
	}
	messages = append(messages, msg)

	modelName := input.Model
	if modelName == "" {
		modelName = DefaultChatModel
	}

	params := openai.ChatCompletionNewParams{
		Messages: openai.F(messages),
		Model:    openai.F(openai.ChatModel(modelName)),
	}
	if input.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(input.MaxTokens))
	}
	if input.Temperature > 0 {
		params.Temperature = openai.Float(float64(input.Temperature))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in OpenAI response")
	}

	return &models.ChatResponse{
		Text:     resp.Choices[0].Message.Content,
		Model:    resp.Model,
		Provider: p.Name(),
		Usage: &models.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func userMessage(ctx context.Context, input models.ChatInput) (openai.ChatCompletionMessageParamUnion, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.ChatCompletionContentPartTextParam{
			Text: openai.String(input.Prompt),
			Type: openai.F(openai.ChatCompletionContentPartTextTypeText),
		},
	}

	if input.HasImage() {
		url, err := imageURL(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		parts = append(parts, openai.ChatCompletionContentPartImageParam{
			ImageURL: openai.F(openai.ChatCompletionContentPartImageImageURLParam{
				URL: openai.String(url),
			}),
			Type: openai.F(openai.ChatCompletionContentPartImageTypeImageURL),
		})
	}

	return openai.UserMessageParts(parts...), nil
}

// imageURL returns a URL the API accepts: remote URLs pass through, local
// files become base64 data URLs.
func imageURL(ctx context.Context, src *models.ImageSource) (string, error) {
	switch src.Kind {
	case models.SourceURL:
		return src.Location, nil
	case models.SourceCloudStorage:
		return "", fmt.Errorf("OpenAI cannot read %s: %w", src.Location, media.ErrCloudStorage)
	}

	data, mimeType, err := media.ReadImage(ctx, nil, src)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}

// GenerateImage generates images with DALL·E and returns their URLs.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, input models.ImageGenerationInput) (*models.ImageGenerationResponse, error) {
	modelName := input.Model
	if modelName == "" {
		modelName = DefaultImageModel
	}
	size := input.Size
	if size == "" {
		size = DefaultImageSize
	}
	n := input.Number
	if n <= 0 {
		n = 1
	}

	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         openai.String(input.Prompt),
		Model:          openai.F(openai.ImageModel(modelName)),
		N:              openai.Int(int64(n)),
		Size:           openai.F(openai.ImageGenerateParamsSize(size)),
		ResponseFormat: openai.F(openai.ImageGenerateParamsResponseFormatURL),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI image generation failed: %w", err)
	}

	result := &models.ImageGenerationResponse{Provider: p.Name()}
	for _, img := range resp.Data {
		generated := models.GeneratedImage{
			URL:           img.URL,
			RevisedPrompt: img.RevisedPrompt,
		}
		if img.B64JSON != "" {
			data, err := base64.StdEncoding.DecodeString(img.B64JSON)
			if err != nil {
				return nil, fmt.Errorf("failed to decode image data: %w", err)
			}
			generated.Data = data
			generated.MIMEType = "image/png"
		}
		result.Images = append(result.Images, generated)
	}
	if len(result.Images) == 0 {
		return nil, errors.New("no images in OpenAI response")
	}
	return result, nil
}

// Speak synthesizes speech and returns the audio bytes.
func (p *OpenAIProvider) Speak(ctx context.Context, input models.SpeechInput) (*models.SpeechResponse, error) {
	modelName := input.Model
	if modelName == "" {
		modelName = DefaultSpeechModel
	}
	voice := input.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	format := input.Format
	if format == "" {
		format = "mp3"
	}

	resp, err := p.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          openai.String(input.Text),
		Model:          openai.F(openai.SpeechModel(modelName)),
		Voice:          openai.F(openai.AudioSpeechNewParamsVoice(voice)),
		ResponseFormat: openai.F(openai.AudioSpeechNewParamsResponseFormat(format)),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI speech synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI speech synthesis failed with status code: %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	return &models.SpeechResponse{Audio: audio, Format: format, Provider: p.Name()}, nil
}

// Transcribe uploads a local audio file to Whisper.
func (p *OpenAIProvider) Transcribe(ctx context.Context, input models.TranscriptionInput) (*models.TranscriptionResponse, error) {
	f, err := os.Open(input.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	modelName := input.Model
	if modelName == "" {
		modelName = DefaultTranscriptionModel
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.F[io.Reader](f),
		Model: openai.F(openai.AudioModel(modelName)),
	}
	if input.Language != "" {
		params.Language = openai.String(input.Language)
	}

	transcription, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI transcription failed: %w", err)
	}

	return &models.TranscriptionResponse{
		Text:     transcription.Text,
		Language: input.Language,
		Provider: p.Name(),
	}, nil
}
