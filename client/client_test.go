package client

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/internal/console"
	"github.com/1broseidon/aicookbook/internal/logging"
	"github.com/1broseidon/aicookbook/media"
	"github.com/1broseidon/aicookbook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	name      string
	configErr error
	got       *models.ChatInput
}

func (f *fakeChat) Name() string      { return f.name }
func (f *fakeChat) Configured() error { return f.configErr }
func (f *fakeChat) Close() error      { return nil }

func (f *fakeChat) Chat(_ context.Context, input models.ChatInput) (*models.ChatResponse, error) {
	f.got = &input
	return &models.ChatResponse{Text: "echo: " + input.Prompt, Usage: &models.Usage{TotalTokens: 3}}, nil
}

type fakeCloudChat struct{ fakeChat }

func (f *fakeCloudChat) ReadsCloudStorage() bool { return true }

type fakeMedia struct {
	name string
}

func (f *fakeMedia) Name() string      { return f.name }
func (f *fakeMedia) Configured() error { return nil }
func (f *fakeMedia) Close() error      { return nil }

func (f *fakeMedia) GenerateImage(context.Context, models.ImageGenerationInput) (*models.ImageGenerationResponse, error) {
	return &models.ImageGenerationResponse{Images: []models.GeneratedImage{
		{Data: []byte("\x89PNG"), MIMEType: "image/png"},
		{URL: "https://img.example/2.png", RevisedPrompt: "a calmer sea"},
	}}, nil
}

func (f *fakeMedia) Speak(_ context.Context, input models.SpeechInput) (*models.SpeechResponse, error) {
	return &models.SpeechResponse{Audio: []byte(input.Text), Format: "mp3"}, nil
}

func (f *fakeMedia) Transcribe(_ context.Context, input models.TranscriptionInput) (*models.TranscriptionResponse, error) {
	return &models.TranscriptionResponse{Text: "transcribed " + filepath.Base(input.AudioPath), Language: "en", Duration: 1.5}, nil
}

func newTestClient(t *testing.T, providers ...Provider) (*Client, *bytes.Buffer, *config.Config) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")

	c, err := NewClient(context.Background(),
		WithConfig(cfg),
		WithLogger(logging.Nop()),
		WithConsole(console.New(&buf, console.WithColor(false))),
	)
	require.NoError(t, err)
	for _, p := range providers {
		c.RegisterProvider(p)
	}
	return c, &buf, cfg
}

func TestUnsupportedProviderAndCapability(t *testing.T) {
	c, out, _ := newTestClient(t, &fakeChat{name: "fake"})

	outcome := c.Chat(context.Background(), "nobody", models.ChatInput{Prompt: "hi"})
	assert.Equal(t, Failed, outcome.Status)
	assert.ErrorIs(t, outcome.Err, ErrUnsupportedProvider)

	outcome = c.Speak(context.Background(), "fake", models.SpeechInput{Text: "hi"})
	assert.Equal(t, Failed, outcome.Status)
	assert.ErrorIs(t, outcome.Err, ErrUnsupportedCapability)
	assert.Contains(t, out.String(), "fake does not support text-to-speech")
}

func TestDefaultProvider(t *testing.T) {
	chat := &fakeChat{name: "fake"}
	c, _, _ := newTestClient(t, chat)
	WithDefaultProvider("fake")(c)

	outcome := c.Chat(context.Background(), "", models.ChatInput{Prompt: "hi"})
	assert.Equal(t, Succeeded, outcome.Status)
	assert.Equal(t, "fake", outcome.Provider)
}

func TestChat(t *testing.T) {
	chat := &fakeChat{name: "fake"}
	c, out, _ := newTestClient(t, chat)

	outcome := c.Chat(context.Background(), "fake", models.ChatInput{Prompt: "hello"})
	assert.Equal(t, Succeeded, outcome.Status)
	assert.Contains(t, out.String(), "fake response:\necho: hello")
	assert.Contains(t, out.String(), "TotalTokens")
}

func TestChatSkipsUnconfigured(t *testing.T) {
	chat := &fakeChat{name: "fake", configErr: config.RequireKey("FAKE_API_KEY", "YOUR_FAKE_KEY", "YOUR_FAKE_KEY")}
	c, out, _ := newTestClient(t, chat)

	outcome := c.Chat(context.Background(), "fake", models.ChatInput{Prompt: "hello"})
	assert.Equal(t, Skipped, outcome.Status)
	assert.Nil(t, chat.got)
	assert.Contains(t, out.String(), "Skipping fake chat: FAKE_API_KEY not configured")
}

func TestChatMissingImageContinuesTextOnly(t *testing.T) {
	chat := &fakeChat{name: "fake"}
	c, out, _ := newTestClient(t, chat)
	missing := filepath.Join(t.TempDir(), "nope.png")

	outcome := c.Chat(context.Background(), "fake", models.ChatInput{Prompt: "describe", Image: models.ParseImageSource(missing)})
	assert.Equal(t, Succeeded, outcome.Status)
	require.NotNil(t, chat.got)
	assert.False(t, chat.got.HasImage())
	assert.Contains(t, out.String(), "Image file not found: "+missing)
}

func TestChatCloudStorageImage(t *testing.T) {
	gcs := models.ParseImageSource("gs://bucket/cat.png")

	plain := &fakeChat{name: "plain"}
	cloud := &fakeCloudChat{fakeChat{name: "cloud"}}
	c, out, _ := newTestClient(t, plain, cloud)

	c.Chat(context.Background(), "plain", models.ChatInput{Prompt: "describe", Image: gcs})
	require.NotNil(t, plain.got)
	assert.False(t, plain.got.HasImage())
	assert.Contains(t, out.String(), "plain cannot read cloud storage image gs://bucket/cat.png")

	c.Chat(context.Background(), "cloud", models.ChatInput{Prompt: "describe", Image: gcs})
	require.NotNil(t, cloud.got)
	assert.Equal(t, gcs, cloud.got.Image)
}

func TestGenerateImageSavesBytes(t *testing.T) {
	c, out, cfg := newTestClient(t, &fakeMedia{name: "fake"})

	outcome := c.GenerateImage(context.Background(), "fake", models.ImageGenerationInput{Prompt: "sea"})
	require.Equal(t, Succeeded, outcome.Status)
	require.Len(t, outcome.Files, 1)

	path := outcome.Files[0]
	assert.Equal(t, cfg.OutputDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "fake_image_"))
	assert.Equal(t, ".png", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data)

	assert.Contains(t, out.String(), "Image saved to "+path)
	assert.Contains(t, out.String(), "Image URL: https://img.example/2.png")
	assert.Contains(t, out.String(), "Revised prompt: a calmer sea")
}

func TestSpeakSavesAudio(t *testing.T) {
	c, _, _ := newTestClient(t, &fakeMedia{name: "fake"})

	outcome := c.Speak(context.Background(), "fake", models.SpeechInput{Text: "hello"})
	require.Equal(t, Succeeded, outcome.Status)
	require.Len(t, outcome.Files, 1)
	assert.Equal(t, ".mp3", filepath.Ext(outcome.Files[0]))
	data, err := os.ReadFile(outcome.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestTranscribe(t *testing.T) {
	c, out, _ := newTestClient(t, &fakeMedia{name: "fake"})
	audio := filepath.Join(t.TempDir(), "clip.wav")
	_, err := media.EnsureSampleInputs("", audio)
	require.NoError(t, err)

	outcome := c.Transcribe(context.Background(), "fake", models.TranscriptionInput{AudioPath: audio})
	assert.Equal(t, Succeeded, outcome.Status)
	assert.Contains(t, out.String(), "Transcript:\ntranscribed clip.wav")
	assert.Contains(t, out.String(), "(language=en, duration=1.50s)")

	missing := filepath.Join(t.TempDir(), "missing.wav")
	outcome = c.Transcribe(context.Background(), "fake", models.TranscriptionInput{AudioPath: missing})
	assert.Equal(t, Skipped, outcome.Status)
	assert.Equal(t, "audio file not found: "+missing, outcome.Reason)
	assert.Contains(t, out.String(), "Audio file not found: "+missing)
	assert.Contains(t, out.String(), "Skipping fake speech-to-text: audio file not found: "+missing)
}

func TestDefaultClientWithoutCredentialsOnlySkips(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")

	c, err := NewDefaultClient(context.Background(), cfg,
		WithLogger(logging.Nop()),
		WithConsole(console.New(&buf, console.WithColor(false))),
	)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{"anthropic", "deepgram", "elevenlabs", "googlegemini", "ollama", "openai", "stability", "vertexai"}, c.Providers())

	ctx := context.Background()
	var outcomes []Outcome
	for _, name := range []string{"openai", "anthropic", "googlegemini", "vertexai", "ollama"} {
		outcomes = append(outcomes, c.Chat(ctx, name, models.ChatInput{Prompt: "hi"}))
	}
	for _, name := range []string{"openai", "vertexai", "stability"} {
		outcomes = append(outcomes, c.GenerateImage(ctx, name, models.ImageGenerationInput{Prompt: "sea"}))
	}
	for _, name := range []string{"openai", "elevenlabs"} {
		outcomes = append(outcomes, c.Speak(ctx, name, models.SpeechInput{Text: "hi"}))
	}
	for _, name := range []string{"openai", "deepgram"} {
		outcomes = append(outcomes, c.Transcribe(ctx, name, models.TranscriptionInput{AudioPath: "sample_audio.wav"}))
	}

	assert.Equal(t, Summary{Skipped: len(outcomes)}, Summarize(outcomes))
	assert.NotContains(t, buf.String(), "Error (")
	_, statErr := os.Stat(cfg.OutputDir)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no output directory expected")
}
