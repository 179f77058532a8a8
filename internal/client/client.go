package client

import (
	"context"

	"google.golang.org/genai"
)

// Client defines the interface for chat model interactions. History and
// function-call payloads use genai content types across all providers.
type Client interface {
	// Send sends a user message with conversation history and returns the
	// model's complete response.
	Send(ctx context.Context, history []*genai.Content, message string) (*Response, error)

	// SendFunctionResponses sends tool results back to the model.
	SendFunctionResponses(ctx context.Context, history []*genai.Content, results []*genai.FunctionResponse) (*Response, error)

	// SetTools sets the tools available for the model to use.
	SetTools(tools []*genai.Tool)

	// SetSystemInstruction sets the system-level instruction for the model.
	// Passed via the API's native system parameter, not injected into history.
	SetSystemInstruction(instruction string)

	// GetModel returns the model name.
	GetModel() string

	// Close closes the client connection.
	Close() error
}

// Response represents a complete response from the model.
type Response struct {
	// Text is the accumulated text response.
	Text string

	// FunctionCalls contains all function calls from the response.
	FunctionCalls []*genai.FunctionCall

	// InputTokens from API usage metadata (if available).
	InputTokens int

	// OutputTokens from API usage metadata (if available).
	OutputTokens int
}

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}
