package client

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// ScriptedClient is an in-memory Client that returns canned responses in
// order. It records every request so tests can assert on the traffic sent
// to the model.
type ScriptedClient struct {
	mu        sync.Mutex
	model     string
	responses []*Response
	next      int

	// Requests records the user message of each Send call, in order.
	Requests []string
	// FunctionResults records the results of each SendFunctionResponses call.
	FunctionResults [][]*genai.FunctionResponse
	// SystemInstructions records every instruction set on the client.
	SystemInstructions []string
	// Tools holds the most recently set tool declarations.
	Tools []*genai.Tool
}

// NewScriptedClient creates a client that replays the given responses.
func NewScriptedClient(responses ...*Response) *ScriptedClient {
	return &ScriptedClient{
		model:     "scripted",
		responses: responses,
	}
}

// TextResponse builds a plain text Response.
func TextResponse(text string) *Response {
	return &Response{Text: text}
}

// CallResponse builds a Response containing a single function call.
func CallResponse(name string, args map[string]any) *Response {
	return &Response{
		FunctionCalls: []*genai.FunctionCall{{
			ID:   fmt.Sprintf("call_%s", name),
			Name: name,
			Args: args,
		}},
	}
}

// Append queues additional responses after any already scripted.
func (c *ScriptedClient) Append(responses ...*Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, responses...)
}

func (c *ScriptedClient) Send(ctx context.Context, history []*genai.Content, message string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests = append(c.Requests, message)
	return c.pop()
}

func (c *ScriptedClient) SendFunctionResponses(ctx context.Context, history []*genai.Content, results []*genai.FunctionResponse) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.FunctionResults = append(c.FunctionResults, results)
	return c.pop()
}

func (c *ScriptedClient) pop() (*Response, error) {
	if c.next >= len(c.responses) {
		return nil, fmt.Errorf("scripted client exhausted after %d responses", len(c.responses))
	}
	resp := c.responses[c.next]
	c.next++
	return resp, nil
}

func (c *ScriptedClient) SetTools(tools []*genai.Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Tools = tools
}

func (c *ScriptedClient) SetSystemInstruction(instruction string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SystemInstructions = append(c.SystemInstructions, instruction)
}

func (c *ScriptedClient) GetModel() string { return c.model }

func (c *ScriptedClient) Close() error { return nil }
