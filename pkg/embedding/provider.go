// Package embedding turns text into fixed-length vectors through an
// external embedding service.
package embedding

import "context"

// Provider generates a single embedding vector for the input text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
