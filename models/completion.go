package models

// ChatInput represents the input for a chat or vision request.
type ChatInput struct {
	Model       string
	Prompt      string
	System      string       // Optional system instruction
	Image       *ImageSource // Optional image for vision models
	MaxTokens   int
	Temperature float32
}

// HasImage reports whether the input carries an image reference.
func (in ChatInput) HasImage() bool {
	return in.Image != nil && in.Image.Location != ""
}

// WithoutImage returns a copy of the input with the image dropped.
func (in ChatInput) WithoutImage() ChatInput {
	in.Image = nil
	return in
}

// ChatResponse represents the response from a chat request.
type ChatResponse struct {
	Text     string
	Usage    *Usage
	Model    string
	Provider string // Indicates which provider generated the response
}

// Usage represents the token usage information for a request.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
