package client

import (
	"context"
	"fmt"
	"sync"

	"mentor/internal/config"
	"mentor/internal/logging"

	"google.golang.org/genai"
)

// GeminiClient wraps the Google Gemini API.
type GeminiClient struct {
	client            *genai.Client
	model             string
	temperature       float32
	maxOutputTokens   int32
	tools             []*genai.Tool
	systemInstruction string
	mu                sync.RWMutex
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if cfg.API.GeminiKey == "" {
		return nil, config.ErrMissingAuth
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.API.GeminiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logging.Debug("gemini client created", "model", cfg.Model.Name)

	return &GeminiClient{
		client:          client,
		model:           cfg.Model.Name,
		temperature:     cfg.Model.Temperature,
		maxOutputTokens: cfg.Model.MaxOutputTokens,
	}, nil
}

// SetSystemInstruction sets the system-level instruction for the model.
func (c *GeminiClient) SetSystemInstruction(instruction string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemInstruction = instruction
}

// SetTools sets the tools available for function calling.
func (c *GeminiClient) SetTools(tools []*genai.Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools = tools
}

// GetModel returns the model name.
func (c *GeminiClient) GetModel() string {
	return c.model
}

// Send sends a user message with conversation history.
func (c *GeminiClient) Send(ctx context.Context, history []*genai.Content, message string) (*Response, error) {
	contents := make([]*genai.Content, len(history)+1)
	copy(contents, history)
	contents[len(contents)-1] = genai.NewContentFromText(message, genai.RoleUser)

	return c.generate(ctx, contents)
}

// SendFunctionResponses sends tool results back to the model.
func (c *GeminiClient) SendFunctionResponses(ctx context.Context, history []*genai.Content, results []*genai.FunctionResponse) (*Response, error) {
	var parts []*genai.Part
	for _, result := range results {
		part := genai.NewPartFromFunctionResponse(result.Name, result.Response)
		part.FunctionResponse.ID = result.ID
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		parts = append(parts, genai.NewPartFromText(" "))
	}

	contents := make([]*genai.Content, len(history)+1)
	copy(contents, history)
	contents[len(contents)-1] = &genai.Content{Role: genai.RoleUser, Parts: parts}

	return c.generate(ctx, contents)
}

func (c *GeminiClient) generate(ctx context.Context, contents []*genai.Content) (*Response, error) {
	c.mu.RLock()
	genCfg := &genai.GenerateContentConfig{
		Temperature:     Ptr(c.temperature),
		MaxOutputTokens: c.maxOutputTokens,
		Tools:           c.tools,
	}
	if c.systemInstruction != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(c.systemInstruction, genai.RoleUser)
	}
	c.mu.RUnlock()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	out := &Response{}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				out.Text += part.Text
			}
			if part.FunctionCall != nil {
				out.FunctionCalls = append(out.FunctionCalls, part.FunctionCall)
			}
		}
	}
	return out, nil
}

// Close closes the client connection.
func (c *GeminiClient) Close() error {
	// genai.Client holds no persistent connection to release.
	return nil
}
