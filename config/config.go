// Package config loads provider credentials and endpoints.
//
// Values come from, in increasing order of precedence: built-in
// placeholder defaults, an optional YAML file named by AICOOKBOOK_CONFIG,
// a .env file in the working directory, and the process environment.
// A credential still equal to its placeholder is treated as not configured.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Placeholder sentinels. A value equal to one of these means "not configured".
const (
	OpenAIPlaceholder     = "YOUR_OPENAI_API_KEY"
	AnthropicPlaceholder  = "YOUR_ANTHROPIC_API_KEY"
	GeminiPlaceholder     = "YOUR_GEMINI_API_KEY"
	StabilityPlaceholder  = "YOUR_STABILITY_API_KEY"
	ElevenLabsPlaceholder = "YOUR_ELEVENLABS_API_KEY"
	DeepgramPlaceholder   = "YOUR_DEEPGRAM_API_KEY"
	ProjectPlaceholder    = "your-gcp-project-id"
	OllamaPlaceholder     = "YOUR_OLLAMA_BASE_URL"
)

const (
	DefaultLocation        = "us-central1"
	DefaultOutputDir       = "generated_media"
	DefaultSampleImagePath = "sample_image.png"
	DefaultSampleAudioPath = "sample_audio.wav"

	// ConfigFileEnv names the optional YAML configuration file.
	ConfigFileEnv = "AICOOKBOOK_CONFIG"
)

// Config holds every setting the providers and the example driver read.
type Config struct {
	OpenAIAPIKey     string `yaml:"openai_api_key"`
	AnthropicAPIKey  string `yaml:"anthropic_api_key"`
	GeminiAPIKey     string `yaml:"gemini_api_key"`
	StabilityAPIKey  string `yaml:"stability_api_key"`
	ElevenLabsAPIKey string `yaml:"elevenlabs_api_key"`
	DeepgramAPIKey   string `yaml:"deepgram_api_key"`

	VertexProject  string `yaml:"vertex_project"`
	VertexLocation string `yaml:"vertex_location"`
	OllamaHost     string `yaml:"ollama_host"`

	OutputDir       string `yaml:"output_dir"`
	SampleImagePath string `yaml:"sample_image_path"`
	SampleAudioPath string `yaml:"sample_audio_path"`
	LogLevel        string `yaml:"log_level"`
	Markdown        bool   `yaml:"markdown"`
}

type binding struct {
	env   string
	field func(*Config) *string
}

var bindings = []binding{
	{"OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAIAPIKey }},
	{"ANTHROPIC_API_KEY", func(c *Config) *string { return &c.AnthropicAPIKey }},
	{"GEMINI_API_KEY", func(c *Config) *string { return &c.GeminiAPIKey }},
	{"STABILITY_API_KEY", func(c *Config) *string { return &c.StabilityAPIKey }},
	{"ELEVENLABS_API_KEY", func(c *Config) *string { return &c.ElevenLabsAPIKey }},
	{"DEEPGRAM_API_KEY", func(c *Config) *string { return &c.DeepgramAPIKey }},
	{"GOOGLE_CLOUD_PROJECT", func(c *Config) *string { return &c.VertexProject }},
	{"GOOGLE_CLOUD_LOCATION", func(c *Config) *string { return &c.VertexLocation }},
	{"OLLAMA_BASE_URL", func(c *Config) *string { return &c.OllamaHost }},
	{"AICOOKBOOK_OUTPUT_DIR", func(c *Config) *string { return &c.OutputDir }},
	{"AICOOKBOOK_SAMPLE_IMAGE", func(c *Config) *string { return &c.SampleImagePath }},
	{"AICOOKBOOK_SAMPLE_AUDIO", func(c *Config) *string { return &c.SampleAudioPath }},
	{"AICOOKBOOK_LOG_LEVEL", func(c *Config) *string { return &c.LogLevel }},
}

// Default returns a Config holding only placeholders and defaults.
func Default() *Config {
	return &Config{
		OpenAIAPIKey:     OpenAIPlaceholder,
		AnthropicAPIKey:  AnthropicPlaceholder,
		GeminiAPIKey:     GeminiPlaceholder,
		StabilityAPIKey:  StabilityPlaceholder,
		ElevenLabsAPIKey: ElevenLabsPlaceholder,
		DeepgramAPIKey:   DeepgramPlaceholder,
		VertexProject:    ProjectPlaceholder,
		VertexLocation:   DefaultLocation,
		OllamaHost:       OllamaPlaceholder,
		OutputDir:        DefaultOutputDir,
		SampleImagePath:  DefaultSampleImagePath,
		SampleAudioPath:  DefaultSampleAudioPath,
		LogLevel:         "disabled",
	}
}

// Load builds a Config from defaults, the optional YAML file, .env and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// MergeFile overlays the non-empty values of a YAML file onto c.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for _, b := range bindings {
		if v := *b.field(&fileCfg); v != "" {
			*b.field(c) = v
		}
	}
	if fileCfg.Markdown {
		c.Markdown = true
	}
	return nil
}

// ApplyEnv overrides c with every non-empty variable lookup returns.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, b := range bindings {
		if v, ok := lookup(b.env); ok && strings.TrimSpace(v) != "" {
			*b.field(c) = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup("AICOOKBOOK_MARKDOWN"); ok {
		c.Markdown = v == "1" || strings.EqualFold(v, "true")
	}
}

// IsSet reports whether value holds a real setting rather than nothing or its placeholder.
func IsSet(value, placeholder string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != placeholder
}

// ErrNotConfigured is wrapped by every Require* failure.
var ErrNotConfigured = errors.New("not configured")

// RequireKey returns an error naming envVar when value is unset or a placeholder.
func RequireKey(envVar, value, placeholder string) error {
	if !IsSet(value, placeholder) {
		return fmt.Errorf("%s %w", envVar, ErrNotConfigured)
	}
	return nil
}

// RequireVertex checks the Vertex AI project and location.
func (c *Config) RequireVertex() error {
	if err := RequireKey("GOOGLE_CLOUD_PROJECT", c.VertexProject, ProjectPlaceholder); err != nil {
		return err
	}
	return RequireKey("GOOGLE_CLOUD_LOCATION", c.VertexLocation, "")
}
