package client

import (
	"context"

	"github.com/1broseidon/aicookbook/models"
)

// Provider is implemented by every provider package. Configured is the
// precondition checked before any call; it must not touch the network.
type Provider interface {
	Name() string
	Configured() error
	Close() error
}

// ChatProvider answers a prompt, optionally with an image.
type ChatProvider interface {
	Provider
	Chat(ctx context.Context, input models.ChatInput) (*models.ChatResponse, error)
}

// ImageProvider generates images from a prompt.
type ImageProvider interface {
	Provider
	GenerateImage(ctx context.Context, input models.ImageGenerationInput) (*models.ImageGenerationResponse, error)
}

// SpeechProvider synthesizes audio from text.
type SpeechProvider interface {
	Provider
	Speak(ctx context.Context, input models.SpeechInput) (*models.SpeechResponse, error)
}

// TranscriptionProvider turns a local audio file into text.
type TranscriptionProvider interface {
	Provider
	Transcribe(ctx context.Context, input models.TranscriptionInput) (*models.TranscriptionResponse, error)
}

// CloudStorageReader is implemented by providers that accept gs:// image
// references directly. Everyone else gets the image stripped.
type CloudStorageReader interface {
	ReadsCloudStorage() bool
}
