// Package llm defines the provider-agnostic generation contract. The engine
// treats the model as a black box: prompt in, text out, error on failure.
package llm

import "context"

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option sets optional generation parameters.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // override the provider default
}

func WithTemperature(temp float64) Option {
	return func(o *Options) { o.Temperature = temp }
}

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// ResolveOptions folds opts over the defaults.
func ResolveOptions(opts []Option) *Options {
	options := &Options{Temperature: 0.3}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// LLMProvider is the contract for any generation backend.
type LLMProvider interface {
	// Chat sends a message history and returns the model's reply.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt (convenience wrapper over Chat).
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
