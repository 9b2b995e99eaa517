// Package media holds the small file helpers shared by every provider:
// encoding images for upload, fetching remote images, and writing returned
// audio or image payloads to the output directory.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/aicookbook/models"
	"github.com/google/uuid"
)

// ErrCloudStorage is returned when bytes are requested for a gs:// reference.
// Only providers that read Cloud Storage themselves can use such a source.
var ErrCloudStorage = errors.New("cloud storage references cannot be read locally")

// ErrAudioNotFound is returned when a transcription input file does not exist.
var ErrAudioNotFound = errors.New("audio file not found")

// EncodeImageToBase64 reads the file at path and returns its standard base64 encoding.
func EncodeImageToBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// SaveBinaryData writes data to dir/name, creating dir if needed, and returns the written path.
func SaveBinaryData(dir, name string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid output filename %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// GenerateFilename returns a unique name of the form prefix_<uuid>.ext.
func GenerateFilename(prefix, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, uuid.NewString(), ext)
}

// ExtensionFor picks a file extension for a MIME type, falling back to fallback.
func ExtensionFor(mimeType, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0])) {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav"
	case "audio/ogg":
		return "ogg"
	}
	return fallback
}

// DetectMIMEType sniffs data, using the file extension of name when sniffing is inconclusive.
func DetectMIMEType(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if sniffed != "application/octet-stream" && !strings.HasPrefix(sniffed, "text/plain") {
		return strings.Split(sniffed, ";")[0]
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return strings.Split(byExt, ";")[0]
	}
	return sniffed
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadImage returns the bytes and MIME type of a local or remote image.
// Remote images are fetched with httpClient (http.DefaultClient when nil).
func ReadImage(ctx context.Context, httpClient *http.Client, src *models.ImageSource) ([]byte, string, error) {
	if src == nil {
		return nil, "", errors.New("no image source")
	}

	var data []byte
	switch src.Kind {
	case models.SourceCloudStorage:
		return nil, "", fmt.Errorf("%s: %w", src.Location, ErrCloudStorage)
	case models.SourceURL:
		b, err := download(ctx, httpClient, src.Location)
		if err != nil {
			return nil, "", err
		}
		data = b
	default:
		b, err := os.ReadFile(src.Location)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read image: %w", err)
		}
		data = b
	}

	mimeType := src.MIMEType
	if mimeType == "" {
		mimeType = DetectMIMEType(src.Location, data)
	}
	return data, mimeType, nil
}

func download(ctx context.Context, httpClient *http.Client, url string) ([]byte, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
