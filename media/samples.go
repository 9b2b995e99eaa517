package media

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

// EnsureSampleInputs creates a placeholder image and audio file when they
// do not exist yet and returns the paths it created. Existing files are
// never touched.
func EnsureSampleInputs(imagePath, audioPath string) ([]string, error) {
	var created []string

	if imagePath != "" && !FileExists(imagePath) {
		data, err := placeholderPNG()
		if err != nil {
			return created, err
		}
		if err := writeSample(imagePath, data); err != nil {
			return created, err
		}
		created = append(created, imagePath)
	}

	if audioPath != "" && !FileExists(audioPath) {
		if err := writeSample(audioPath, silentWAV(8000, 1)); err != nil {
			return created, err
		}
		created = append(created, audioPath)
	}

	return created, nil
}

func writeSample(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to create sample %s: %w", path, err)
	}
	return nil
}

// placeholderPNG renders a single white pixel.
func placeholderPNG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder image: %w", err)
	}
	return buf.Bytes(), nil
}

// silentWAV returns a mono 16-bit PCM WAV of the given length filled with silence.
func silentWAV(sampleRate, seconds int) []byte {
	const bitsPerSample = 16
	dataLen := sampleRate * seconds * bitsPerSample / 8

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*bitsPerSample/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}
