// Package client dispatches chat, image, speech and transcription calls to
// registered providers and records an Outcome for each one.
package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/1broseidon/aicookbook/common"
	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/internal/console"
	"github.com/1broseidon/aicookbook/internal/logging"
	"github.com/1broseidon/aicookbook/media"
	"github.com/1broseidon/aicookbook/models"
	"github.com/1broseidon/aicookbook/providers/anthropic"
	"github.com/1broseidon/aicookbook/providers/deepgram"
	"github.com/1broseidon/aicookbook/providers/elevenlabs"
	"github.com/1broseidon/aicookbook/providers/googlegemini"
	"github.com/1broseidon/aicookbook/providers/ollama"
	"github.com/1broseidon/aicookbook/providers/openai"
	"github.com/1broseidon/aicookbook/providers/stability"
	"github.com/1broseidon/aicookbook/providers/vertexai"
)

// Client holds the registered providers and the sinks every call reports to.
type Client struct {
	providers       map[string]Provider
	defaultProvider string
	logger          logging.Logger
	printer         *console.Printer
	config          *config.Config
	mu              sync.RWMutex
}

// NewClient creates a client without registering any provider.
func NewClient(ctx context.Context, options ...ClientOption) (*Client, error) {
	c := &Client{
		providers: make(map[string]Provider),
		logger:    logging.NewDefaultLogger(),
	}

	for _, option := range options {
		option(c)
	}

	if c.config == nil {
		c.config = config.Default()
	}
	if c.printer == nil {
		c.printer = console.New(nil, console.WithMarkdown(c.config.Markdown))
	}

	c.logger.Info("Initializing aicookbook client")
	return c, nil
}

// NewDefaultClient creates a client with every provider registered from cfg.
// Providers are registered whether or not they are configured; unconfigured
// ones are skipped at call time.
func NewDefaultClient(ctx context.Context, cfg *config.Config, options ...ClientOption) (*Client, error) {
	c, err := NewClient(ctx, append([]ClientOption{WithConfig(cfg)}, options...)...)
	if err != nil {
		return nil, err
	}

	for _, p := range []Provider{
		openai.NewOpenAIProvider(cfg),
		anthropic.NewAnthropicProvider(cfg),
		googlegemini.NewGoogleGeminiProvider(cfg),
		vertexai.NewVertexAIProvider(cfg),
		ollama.NewOllamaProvider(cfg),
		stability.NewStabilityProvider(cfg),
		elevenlabs.NewElevenLabsProvider(cfg),
		deepgram.NewDeepgramProvider(cfg),
	} {
		c.RegisterProvider(p)
		c.logger.Debugf("Registered %s provider", p.Name())
	}
	return c, nil
}

// RegisterProvider registers a provider under its name, replacing any
// provider already registered with that name.
func (c *Client) RegisterProvider(provider Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[provider.Name()] = provider
}

// Providers returns the registered provider names in sorted order.
func (c *Client) Providers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes all providers and returns the errors joined.
func (c *Client) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	for name, provider := range c.providers {
		if err := provider.Close(); err != nil {
			c.logger.Error("Error closing provider ", name, ": ", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Client) runner() Runner {
	return Runner{Printer: c.printer, Logger: c.logger}
}

func (c *Client) lookup(name string) (Provider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
	return p, nil
}

// resolve finds name and asserts that it implements capability interface P.
// On failure it returns a Failed outcome already printed.
func resolve[P any](c *Client, name string, capability common.Capability) (P, *Outcome) {
	var zero P
	if name == "" {
		name = c.defaultProvider
	}

	p, err := c.lookup(name)
	if err == nil {
		if typed, ok := p.(P); ok {
			return typed, nil
		}
		err = fmt.Errorf("%w: %s does not support %s", ErrUnsupportedCapability, name, capability)
	}

	r := c.runner().withDefaults()
	r.Printer.Heading("%s %s", name, capability)
	out := r.fail(Outcome{Provider: name, Capability: capability}, err)
	return zero, &out
}

// Chat sends input to the named provider's chat endpoint and prints the answer.
// A missing local image, or a gs:// image the provider cannot read, is
// reported and dropped; the prompt is still sent.
func (c *Client) Chat(ctx context.Context, providerName string, input models.ChatInput) Outcome {
	p, failed := resolve[ChatProvider](c, providerName, common.CapabilityChat)
	if failed != nil {
		return *failed
	}

	return Run(ctx, c.runner(), Call[*models.ChatResponse]{
		Provider:     p.Name(),
		Capability:   common.CapabilityChat,
		Precondition: p.Configured,
		Invoke: func(ctx context.Context) (*models.ChatResponse, error) {
			return p.Chat(ctx, c.prepareImage(p, input))
		},
		Report: func(resp *models.ChatResponse) ([]string, error) {
			c.printer.Text(fmt.Sprintf("%s response", p.Name()), resp.Text)
			if resp.Usage != nil {
				c.printer.Metadata("Usage", resp.Usage)
			}
			return nil, nil
		},
	})
}

func (c *Client) prepareImage(p Provider, input models.ChatInput) models.ChatInput {
	if !input.HasImage() {
		return input
	}

	switch input.Image.Kind {
	case models.SourceLocal:
		if !media.FileExists(input.Image.Location) {
			c.printer.Notice("Image file not found: %s", input.Image.Location)
			return input.WithoutImage()
		}
	case models.SourceCloudStorage:
		if reader, ok := p.(CloudStorageReader); !ok || !reader.ReadsCloudStorage() {
			c.printer.Notice("%s cannot read cloud storage image %s; continuing without it", p.Name(), input.Image.Location)
			return input.WithoutImage()
		}
	}
	return input
}

// GenerateImage asks the named provider for images. Returned bytes are
// written to the output directory; returned URLs are printed.
func (c *Client) GenerateImage(ctx context.Context, providerName string, input models.ImageGenerationInput) Outcome {
	p, failed := resolve[ImageProvider](c, providerName, common.CapabilityImageGeneration)
	if failed != nil {
		return *failed
	}

	return Run(ctx, c.runner(), Call[*models.ImageGenerationResponse]{
		Provider:     p.Name(),
		Capability:   common.CapabilityImageGeneration,
		Precondition: p.Configured,
		Invoke: func(ctx context.Context) (*models.ImageGenerationResponse, error) {
			return p.GenerateImage(ctx, input)
		},
		Report: func(resp *models.ImageGenerationResponse) ([]string, error) {
			var files []string
			for _, img := range resp.Images {
				if len(img.Data) > 0 {
					ext := media.ExtensionFor(img.MIMEType, "png")
					path, err := media.SaveBinaryData(c.config.OutputDir, media.GenerateFilename(p.Name()+"_image", ext), img.Data)
					if err != nil {
						return files, err
					}
					files = append(files, path)
					c.printer.Saved("Image", path)
				} else if img.URL != "" {
					c.printer.Line("Image URL: %s", img.URL)
				}
				if img.RevisedPrompt != "" {
					c.printer.Line("Revised prompt: %s", img.RevisedPrompt)
				}
			}
			return files, nil
		},
	})
}

// Speak synthesizes input.Text and saves the audio to the output directory.
func (c *Client) Speak(ctx context.Context, providerName string, input models.SpeechInput) Outcome {
	p, failed := resolve[SpeechProvider](c, providerName, common.CapabilityTextToSpeech)
	if failed != nil {
		return *failed
	}

	return Run(ctx, c.runner(), Call[*models.SpeechResponse]{
		Provider:     p.Name(),
		Capability:   common.CapabilityTextToSpeech,
		Precondition: p.Configured,
		Invoke: func(ctx context.Context) (*models.SpeechResponse, error) {
			return p.Speak(ctx, input)
		},
		Report: func(resp *models.SpeechResponse) ([]string, error) {
			path, err := media.SaveBinaryData(c.config.OutputDir, media.GenerateFilename(p.Name()+"_speech", resp.Format), resp.Audio)
			if err != nil {
				return nil, err
			}
			c.printer.Saved("Audio", path)
			return []string{path}, nil
		},
	})
}

// Transcribe sends a local audio file to the named provider. A missing file
// skips the call.
func (c *Client) Transcribe(ctx context.Context, providerName string, input models.TranscriptionInput) Outcome {
	p, failed := resolve[TranscriptionProvider](c, providerName, common.CapabilitySpeechToText)
	if failed != nil {
		return *failed
	}

	return Run(ctx, c.runner(), Call[*models.TranscriptionResponse]{
		Provider:   p.Name(),
		Capability: common.CapabilitySpeechToText,
		Precondition: func() error {
			if err := p.Configured(); err != nil {
				return err
			}
			if !media.FileExists(input.AudioPath) {
				c.printer.Notice("Audio file not found: %s", input.AudioPath)
				return fmt.Errorf("%w: %s", media.ErrAudioNotFound, input.AudioPath)
			}
			return nil
		},
		Invoke: func(ctx context.Context) (*models.TranscriptionResponse, error) {
			return p.Transcribe(ctx, input)
		},
		Report: func(resp *models.TranscriptionResponse) ([]string, error) {
			c.printer.Text("Transcript", resp.Text)
			var details []string
			if resp.Language != "" {
				details = append(details, "language="+resp.Language)
			}
			if resp.Duration > 0 {
				details = append(details, fmt.Sprintf("duration=%.2fs", resp.Duration))
			}
			if resp.Confidence > 0 {
				details = append(details, fmt.Sprintf("confidence=%.2f", resp.Confidence))
			}
			if len(details) > 0 {
				c.printer.Line("(%s)", strings.Join(details, ", "))
			}
			return nil, nil
		},
	})
}
