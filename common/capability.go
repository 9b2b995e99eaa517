package common

// Capability identifies one kind of provider call.
type Capability string

const (
	// CapabilityChat is a text prompt, optionally with an image, answered with text.
	CapabilityChat Capability = "chat"
	// CapabilityImageGeneration turns a prompt into one or more images.
	CapabilityImageGeneration Capability = "image-generation"
	// CapabilityTextToSpeech synthesizes audio from text.
	CapabilityTextToSpeech Capability = "text-to-speech"
	// CapabilitySpeechToText transcribes an audio file.
	CapabilitySpeechToText Capability = "speech-to-text"
)

func (c Capability) String() string { return string(c) }
