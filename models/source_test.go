package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageSource(t *testing.T) {
	assert.Nil(t, ParseImageSource("  "))

	tests := []struct {
		in   string
		kind SourceKind
	}{
		{"https://example.com/cat.png", SourceURL},
		{"HTTP://example.com/cat.png", SourceURL},
		{"gs://bucket/cat.png", SourceCloudStorage},
		{"./images/cat.png", SourceLocal},
		{"/tmp/cat.jpg", SourceLocal},
	}
	for _, tt := range tests {
		src := ParseImageSource(tt.in)
		require.NotNil(t, src, tt.in)
		assert.Equal(t, tt.kind, src.Kind, tt.in)
		assert.Equal(t, tt.in, src.Location)
	}
}

func TestChatInputImageHelpers(t *testing.T) {
	in := ChatInput{Prompt: "describe", Image: ParseImageSource("cat.png")}
	assert.True(t, in.HasImage())

	stripped := in.WithoutImage()
	assert.False(t, stripped.HasImage())
	assert.True(t, in.HasImage(), "original must be unchanged")
	assert.Equal(t, "local", SourceLocal.String())
	assert.Equal(t, "cloud-storage", SourceCloudStorage.String())
}
