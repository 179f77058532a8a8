package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"mentor/internal/config"
	"mentor/internal/logging"

	"github.com/ollama/ollama/api"
	"google.golang.org/genai"
)

// OllamaClient implements Client for a local or remote Ollama server.
type OllamaClient struct {
	client            *api.Client
	model             string
	temperature       float32
	maxTokens         int32
	tools             []*genai.Tool
	systemInstruction string
	mu                sync.RWMutex
}

// authTransport adds an Authorization header to requests for remote
// Ollama servers that sit behind auth.
type authTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqClone := req.Clone(req.Context())
	reqClone.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(reqClone)
}

// NewOllamaClient creates a client for an Ollama server.
func NewOllamaClient(cfg *config.Config) (*OllamaClient, error) {
	if cfg.Model.Name == "" {
		return nil, fmt.Errorf("model name is required")
	}

	baseURL := cfg.API.OllamaBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama host %q: %w", baseURL, err)
	}

	if parsed.Scheme == "http" {
		host := parsed.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			logging.Warn("Ollama connection uses unencrypted HTTP to remote host", "host", host)
		}
	}

	httpClient := &http.Client{Timeout: 120 * time.Second}
	if cfg.API.OllamaKey != "" {
		httpClient.Transport = &authTransport{
			base:   http.DefaultTransport,
			apiKey: cfg.API.OllamaKey,
		}
	}

	logging.Debug("ollama client created", "host", baseURL, "model", cfg.Model.Name)

	return &OllamaClient{
		client:      api.NewClient(parsed, httpClient),
		model:       cfg.Model.Name,
		temperature: cfg.Model.Temperature,
		maxTokens:   cfg.Model.MaxOutputTokens,
		tools:       make([]*genai.Tool, 0),
	}, nil
}

// SetSystemInstruction sets the system-level instruction for the model.
func (c *OllamaClient) SetSystemInstruction(instruction string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemInstruction = instruction
}

// SetTools sets the tools available for function calling.
func (c *OllamaClient) SetTools(tools []*genai.Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools = tools
}

// GetModel returns the model name.
func (c *OllamaClient) GetModel() string {
	return c.model
}

// Close releases client resources. The Ollama HTTP client holds none.
func (c *OllamaClient) Close() error {
	return nil
}

// Send sends a user message with conversation history.
func (c *OllamaClient) Send(ctx context.Context, history []*genai.Content, message string) (*Response, error) {
	messages := c.convertHistory(history)
	if message != "" {
		messages = append(messages, api.Message{Role: "user", Content: message})
	}
	return c.chat(ctx, messages)
}

// SendFunctionResponses sends tool results back to the model.
func (c *OllamaClient) SendFunctionResponses(ctx context.Context, history []*genai.Content, results []*genai.FunctionResponse) (*Response, error) {
	messages := c.convertHistory(history)
	for _, result := range results {
		messages = append(messages, api.Message{
			Role:       "tool",
			Content:    resultContent(result),
			ToolName:   result.Name,
			ToolCallID: result.ID,
		})
	}
	return c.chat(ctx, messages)
}

func (c *OllamaClient) chat(ctx context.Context, messages []api.Message) (*Response, error) {
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   Ptr(false),
		Options: map[string]interface{}{
			"num_predict": c.maxTokens,
		},
	}
	if c.temperature > 0 {
		req.Options["temperature"] = c.temperature
	}

	c.mu.RLock()
	if len(c.tools) > 0 {
		req.Tools = c.convertTools()
	}
	c.mu.RUnlock()

	out := &Response{}
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.Text += resp.Message.Content
		for i, tc := range resp.Message.ToolCalls {
			out.FunctionCalls = append(out.FunctionCalls, toGenaiCall(tc, len(out.FunctionCalls)+i))
		}
		if resp.Done {
			out.InputTokens = resp.PromptEvalCount
			out.OutputTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	return out, nil
}

// convertHistory maps genai content history to Ollama chat messages,
// prepending the system instruction when one is set.
func (c *OllamaClient) convertHistory(history []*genai.Content) []api.Message {
	messages := make([]api.Message, 0, len(history)+2)

	c.mu.RLock()
	sysInstruction := c.systemInstruction
	c.mu.RUnlock()
	if sysInstruction != "" {
		messages = append(messages, api.Message{Role: "system", Content: sysInstruction})
	}

	for _, content := range history {
		msg := api.Message{}
		switch content.Role {
		case genai.RoleUser:
			msg.Role = "user"
		case genai.RoleModel:
			msg.Role = "assistant"
		default:
			msg.Role = string(content.Role)
		}

		var textParts []string
		for _, part := range content.Parts {
			if part.Text != "" {
				textParts = append(textParts, part.Text)
			}
			if part.FunctionCall != nil {
				msg.ToolCalls = append(msg.ToolCalls, toOllamaCall(part.FunctionCall))
			}
			if part.FunctionResponse != nil {
				messages = append(messages, api.Message{
					Role:       "tool",
					Content:    resultContent(part.FunctionResponse),
					ToolName:   part.FunctionResponse.Name,
					ToolCallID: part.FunctionResponse.ID,
				})
			}
		}
		msg.Content = strings.Join(textParts, "\n")
		if msg.Content != "" || len(msg.ToolCalls) > 0 {
			messages = append(messages, msg)
		}
	}

	return messages
}

func (c *OllamaClient) convertTools() []api.Tool {
	tools := make([]api.Tool, 0)
	for _, tool := range c.tools {
		for _, decl := range tool.FunctionDeclarations {
			params := api.ToolFunctionParameters{
				Type:       "object",
				Properties: api.NewToolPropertiesMap(),
			}
			if decl.Parameters != nil {
				if len(decl.Parameters.Required) > 0 {
					params.Required = decl.Parameters.Required
				}
				for name, propSchema := range decl.Parameters.Properties {
					prop := api.ToolProperty{Description: propSchema.Description}
					if propSchema.Type != "" {
						prop.Type = api.PropertyType{strings.ToLower(string(propSchema.Type))}
					}
					if len(propSchema.Enum) > 0 {
						enumVals := make([]any, len(propSchema.Enum))
						for i, v := range propSchema.Enum {
							enumVals[i] = v
						}
						prop.Enum = enumVals
					}
					params.Properties.Set(name, prop)
				}
			}
			tools = append(tools, api.Tool{
				Type: "function",
				Function: api.ToolFunction{
					Name:        decl.Name,
					Description: decl.Description,
					Parameters:  params,
				},
			})
		}
	}
	return tools
}

func toGenaiCall(tc api.ToolCall, index int) *genai.FunctionCall {
	id := tc.ID
	if id == "" {
		id = fmt.Sprintf("call_%d", index)
		if tc.Function.Index > 0 {
			id = fmt.Sprintf("call_%d", tc.Function.Index)
		}
	}
	return &genai.FunctionCall{
		ID:   id,
		Name: tc.Function.Name,
		Args: tc.Function.Arguments.ToMap(),
	}
}

func toOllamaCall(fc *genai.FunctionCall) api.ToolCall {
	args := api.NewToolCallFunctionArguments()
	for k, v := range fc.Args {
		args.Set(k, v)
	}
	return api.ToolCall{
		ID: fc.ID,
		Function: api.ToolCallFunction{
			Name:      fc.Name,
			Arguments: args,
		},
	}
}

// resultContent extracts a printable payload from a function response.
func resultContent(result *genai.FunctionResponse) string {
	if result.Response == nil {
		return "Operation completed"
	}
	if errStr, ok := result.Response["error"].(string); ok && errStr != "" {
		return "Error: " + errStr
	}
	if val, ok := result.Response["content"].(string); ok && val != "" {
		return val
	}
	if data, ok := result.Response["data"]; ok {
		if jsonBytes, err := json.Marshal(data); err == nil {
			return string(jsonBytes)
		}
	}
	return "Operation completed"
}
