package vertexai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/media"
	"github.com/1broseidon/aicookbook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *VertexAIProvider {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.VertexProject = "demo-project"
	return NewVertexAIProvider(cfg, WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func TestConfigured(t *testing.T) {
	p := NewVertexAIProvider(config.Default())
	err := p.Configured()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CLOUD_PROJECT")
	assert.True(t, p.ReadsCloudStorage())

	cfg := config.Default()
	cfg.VertexProject = "demo-project"
	p = NewVertexAIProvider(cfg)
	assert.NoError(t, p.Configured())
	assert.Equal(t, "https://us-central1-aiplatform.googleapis.com", p.baseURL)
}

func TestChatWithCloudStorageImage(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/demo-project/locations/us-central1/publishers/google/models/"+DefaultChatModel+":generateContent", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		req := gjson.ParseBytes(body)
		assert.Equal(t, "gs://bucket/photos/cat.png", req.Get("contents.0.parts.0.fileData.fileUri").String())
		assert.Equal(t, "image/png", req.Get("contents.0.parts.0.fileData.mimeType").String())
		assert.Equal(t, "Describe the cat", req.Get("contents.0.parts.1.text").String())
		assert.Equal(t, "You are a vet.", req.Get("systemInstruction.parts.0.text").String())
		assert.Equal(t, int64(64), req.Get("generationConfig.maxOutputTokens").Int())

		io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "A tabby "}, {"text": "cat."}]}}],
			"usageMetadata": {"promptTokenCount": 260, "candidatesTokenCount": 4, "totalTokenCount": 264}
		}`)
	})

	resp, err := p.Chat(context.Background(), models.ChatInput{
		Prompt:    "Describe the cat",
		System:    "You are a vet.",
		MaxTokens: 64,
		Image:     models.ParseImageSource("gs://bucket/photos/cat.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "A tabby cat.", resp.Text)
	assert.Equal(t, 264, resp.Usage.TotalTokens)
	assert.Equal(t, 260, resp.Usage.PromptTokens)
}

func TestChatWithLocalImage(t *testing.T) {
	imgPath := filepath.Join(t.TempDir(), "pixel.png")
	_, err := media.EnsureSampleInputs(imgPath, "")
	require.NoError(t, err)
	encoded, err := media.EncodeImageToBase64(imgPath)
	require.NoError(t, err)

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req := gjson.ParseBytes(body)
		assert.Equal(t, "image/png", req.Get("contents.0.parts.0.inlineData.mimeType").String())
		assert.Equal(t, encoded, req.Get("contents.0.parts.0.inlineData.data").String())
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"white"}]}}]}`)
	})

	resp, err := p.Chat(context.Background(), models.ChatInput{Prompt: "Colour?", Image: models.ParseImageSource(imgPath)})
	require.NoError(t, err)
	assert.Equal(t, "white", resp.Text)
}

func TestChatBlocked(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	})

	_, err := p.Chat(context.Background(), models.ChatInput{Prompt: "bad"})
	assert.EqualError(t, err, "prompt blocked: SAFETY")
}

func TestGenerateImage(t *testing.T) {
	png := []byte("\x89PNG fake")
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/demo-project/locations/us-central1/publishers/google/models/"+DefaultImageModel+":predict", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		req := gjson.ParseBytes(body)
		assert.Equal(t, "a lighthouse", req.Get("instances.0.prompt").String())
		assert.Equal(t, int64(2), req.Get("parameters.sampleCount").Int())
		assert.Equal(t, "16:9", req.Get("parameters.aspectRatio").String())

		enc := base64.StdEncoding.EncodeToString(png)
		fmt.Fprintf(w, `{"predictions":[{"bytesBase64Encoded":%q,"mimeType":"image/png"},{"bytesBase64Encoded":%q}]}`, enc, enc)
	})

	resp, err := p.GenerateImage(context.Background(), models.ImageGenerationInput{Prompt: "a lighthouse", Number: 2, Size: "1792x1024"})
	require.NoError(t, err)
	require.Len(t, resp.Images, 2)
	assert.Equal(t, png, resp.Images[0].Data)
	assert.Equal(t, "image/png", resp.Images[1].MIMEType)
}

func TestGenerateImageEmpty(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"predictions":[]}`)
	})

	_, err := p.GenerateImage(context.Background(), models.ImageGenerationInput{Prompt: "x"})
	assert.Error(t, err)
}

func TestBuildPredict(t *testing.T) {
	body, err := buildPredict("a red fox", 2, "4:3")
	require.NoError(t, err)

	req := gjson.ParseBytes(body)
	assert.Len(t, req.Get("instances").Array(), 1)
	assert.Equal(t, "a red fox", req.Get("instances.0.prompt").String())
	assert.Equal(t, int64(2), req.Get("parameters.sampleCount").Int())
	assert.Equal(t, "4:3", req.Get("parameters.aspectRatio").String())
}

func TestMimeFromExtension(t *testing.T) {
	assert.Equal(t, "image/png", mimeFromExtension("gs://b/a.PNG"))
	assert.Equal(t, "image/jpeg", mimeFromExtension("gs://b/a"))
}

func TestVertexAIProviderLive(t *testing.T) {
	if !config.IsSet(os.Getenv("GOOGLE_CLOUD_PROJECT"), config.ProjectPlaceholder) {
		t.Skip("GOOGLE_CLOUD_PROJECT not configured, skipping Vertex AI provider test")
	}

	cfg := config.Default()
	cfg.VertexProject = os.Getenv("GOOGLE_CLOUD_PROJECT")
	p := NewVertexAIProvider(cfg)

	resp, err := p.Chat(context.Background(), models.ChatInput{Prompt: "Name one planet.", MaxTokens: 20})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Text)
}
