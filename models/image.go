package models

import (
	"fmt"
	"math"
	"strings"
)

// ImageGenerationInput represents the input for an image generation request.
type ImageGenerationInput struct {
	Model  string
	Prompt string
	Size   string // e.g. "1024x1024"; providers that use aspect ratios translate it
	Number int
}

// GeneratedImage is one image returned by a provider, either as a remote
// URL or as raw bytes.
type GeneratedImage struct {
	URL           string
	Data          []byte
	MIMEType      string
	RevisedPrompt string
}

// ImageGenerationResponse represents the response from an image generation request.
type ImageGenerationResponse struct {
	Images   []GeneratedImage
	Usage    *Usage
	Provider string
}

// AspectRatio converts a "WIDTHxHEIGHT" size into a reduced "W:H" ratio.
// It returns "1:1" for an empty or malformed size.
func AspectRatio(size string) string {
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(size), "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return "1:1"
	}
	g := gcd(w, h)
	return fmt.Sprintf("%d:%d", w/g, h/g)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// NearestAspectRatio picks the entry of allowed ("W:H" strings) closest to size.
func NearestAspectRatio(size string, allowed []string) string {
	if len(allowed) == 0 {
		return AspectRatio(size)
	}
	target := ratioValue(AspectRatio(size))
	best, bestDiff := allowed[0], math.Inf(1)
	for _, candidate := range allowed {
		if diff := math.Abs(ratioValue(candidate) - target); diff < bestDiff {
			best, bestDiff = candidate, diff
		}
	}
	return best
}

func ratioValue(ratio string) float64 {
	var w, h float64
	if _, err := fmt.Sscanf(ratio, "%g:%g", &w, &h); err != nil || h == 0 {
		return 1
	}
	return w / h
}
