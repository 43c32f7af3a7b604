// Package llm defines the generative text model used for hooks and content.
package llm

import "context"

// Params are the sampling settings sent with every prompt.
type Params struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// DefaultParams returns the sampling settings used for hooks and content.
func DefaultParams() Params {
	return Params{Temperature: 0.9, TopK: 40, TopP: 0.95, MaxOutputTokens: 1024}
}

// Model turns a prompt into free-form text. Non-2xx upstream answers and
// empty completions are errors.
type Model interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}
