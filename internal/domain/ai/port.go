package ai

import "context"

// Prompt is a single system + user exchange.
type Prompt struct {
	System string
	User   string
}

// Client generates free text for a prompt.
type Client interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}
