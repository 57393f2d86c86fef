package domain

import "context"

// Llm abstracts the completion provider.
type Llm interface {
	// Generate sends prompt to the provider once and returns the first
	// candidate's text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationConfig holds the sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig is fixed for the life of the process.
var DefaultGenerationConfig = GenerationConfig{
	Temperature:     0.7,
	TopK:            40,
	TopP:            0.95,
	MaxOutputTokens: 1024,
}

// Progress renders a cosmetic indicator while a provider call is outstanding.
type Progress interface {
	// Start begins the animation. The returned func stops it and must be
	// called exactly once the call resolves.
	Start() (stop func())
}

// NopProgress draws nothing.
type NopProgress struct{}

func (NopProgress) Start() func() { return func() {} }
