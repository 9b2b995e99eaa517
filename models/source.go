package models

import "strings"

// SourceKind tells where an image lives.
type SourceKind int

const (
	SourceLocal SourceKind = iota
	SourceURL
	SourceCloudStorage
)

func (k SourceKind) String() string {
	switch k {
	case SourceURL:
		return "url"
	case SourceCloudStorage:
		return "cloud-storage"
	default:
		return "local"
	}
}

// ImageSource references an image by local path, remote URL or gs:// URI.
type ImageSource struct {
	Kind     SourceKind
	Location string
	MIMEType string // optional; detected from content or extension when empty
}

// ParseImageSource classifies s by its scheme. It returns nil for an empty string.
func ParseImageSource(s string) *ImageSource {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return &ImageSource{Kind: SourceURL, Location: s}
	case strings.HasPrefix(lower, "gs://"):
		return &ImageSource{Kind: SourceCloudStorage, Location: s}
	default:
		return &ImageSource{Kind: SourceLocal, Location: s}
	}
}
