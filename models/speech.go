package models

// SpeechInput represents a text-to-speech request.
type SpeechInput struct {
	Model  string
	Text   string
	Voice  string
	Format string // audio container, e.g. "mp3"
}

// SpeechResponse carries synthesized audio.
type SpeechResponse struct {
	Audio    []byte
	Format   string
	Provider string
}

// TranscriptionInput represents a speech-to-text request for a local audio file.
type TranscriptionInput struct {
	Model     string
	AudioPath string
	Language  string // optional ISO-639-1 hint
}

// TranscriptionResponse carries the transcript and whatever metadata the provider returned.
type TranscriptionResponse struct {
	Text       string
	Language   string
	Duration   float64 // seconds, zero when unknown
	Confidence float64 // zero when unknown
	Provider   string
}
