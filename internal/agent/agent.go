package agent

import (
	"context"
	"fmt"
	"strings"

	"mentor/internal/chat"
	"mentor/internal/client"
	"mentor/internal/logging"

	"google.golang.org/genai"
)

// Tracer receives verbose events about agent activity. Implementations
// must tolerate concurrent calls.
type Tracer interface {
	Trace(event string, keyvals ...any)
}

// Outcome is the terminal result of one agent run. Exactly one of Text
// or Handoff is meaningful: a non-empty Handoff names the agent that
// should take over the conversation.
type Outcome struct {
	Text    string
	Handoff string
}

// Agent wraps a model client with a role prompt and a tool registry. All
// agents in a run share one session, so each sees the full conversation
// produced by the others.
type Agent struct {
	name         string
	instructions string
	client       client.Client
	registry     *Registry
	session      *chat.Session
	maxTurns     int
	tracer       Tracer
}

// Option configures an Agent.
type Option func(*Agent)

// WithTools sets the agent's tool registry.
func WithTools(tools ...Tool) Option {
	return func(a *Agent) {
		for _, tool := range tools {
			a.registry.MustRegister(tool)
		}
	}
}

// WithMaxTurns bounds the tool-call loop for one Run.
func WithMaxTurns(n int) Option {
	return func(a *Agent) { a.maxTurns = n }
}

// WithTracer installs a verbose event tracer.
func WithTracer(t Tracer) Option {
	return func(a *Agent) { a.tracer = t }
}

// New creates an agent bound to a shared session.
func New(name, instructions string, c client.Client, session *chat.Session, opts ...Option) *Agent {
	a := &Agent{
		name:         name,
		instructions: instructions,
		client:       c,
		registry:     NewRegistry(),
		session:      session,
		maxTurns:     10,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *Registry { return a.registry }

// Run sends a message on the shared session and drives the tool-call
// loop until the model answers in text, a handoff tool fires, or the
// turn limit is reached.
func (a *Agent) Run(ctx context.Context, message string) (*Outcome, error) {
	a.client.SetSystemInstruction(a.instructions)
	a.client.SetTools(a.registry.GenaiTools())

	a.trace("agent.run", "agent", a.name, "message", message)

	resp, err := a.client.Send(ctx, a.session.History(), message)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.name, err)
	}
	if message != "" {
		a.session.AddUserMessage(message)
	}

	var output strings.Builder
	for turn := 0; turn < a.maxTurns; turn++ {
		a.session.AddContent(&genai.Content{
			Role:  genai.RoleModel,
			Parts: responseParts(resp),
		})
		if resp.Text != "" {
			output.WriteString(resp.Text)
		}

		if len(resp.FunctionCalls) == 0 {
			return &Outcome{Text: output.String()}, nil
		}

		results, handoff := a.executeTools(ctx, resp.FunctionCalls)
		if handoff != "" {
			a.addFunctionResults(results)
			a.trace("agent.handoff", "from", a.name, "to", handoff)
			return &Outcome{Text: output.String(), Handoff: handoff}, nil
		}

		resp, err = a.client.SendFunctionResponses(ctx, a.session.History(), results)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.name, err)
		}
		a.addFunctionResults(results)
	}

	return nil, fmt.Errorf("agent %s exceeded %d turns without answering", a.name, a.maxTurns)
}

// addFunctionResults records tool results in the shared session so later
// turns and other agents see them.
func (a *Agent) addFunctionResults(results []*genai.FunctionResponse) {
	funcParts := make([]*genai.Part, len(results))
	for i, result := range results {
		funcParts[i] = genai.NewPartFromFunctionResponse(result.Name, result.Response)
		funcParts[i].FunctionResponse.ID = result.ID
	}
	a.session.AddContent(&genai.Content{Role: genai.RoleUser, Parts: funcParts})
}

// executeTools runs the requested function calls in order. When a call
// targets a handoff tool, remaining calls still execute but the handoff
// target is reported to the caller.
func (a *Agent) executeTools(ctx context.Context, calls []*genai.FunctionCall) ([]*genai.FunctionResponse, string) {
	results := make([]*genai.FunctionResponse, 0, len(calls))
	handoff := ""

	for _, fc := range calls {
		a.trace("tool.call", "agent", a.name, "tool", fc.Name, "args", fc.Args)

		tool, ok := a.registry.Get(fc.Name)
		if !ok {
			logging.Warn("model requested unknown tool", "agent", a.name, "tool", fc.Name)
			results = append(results, &genai.FunctionResponse{
				ID:       fc.ID,
				Name:     fc.Name,
				Response: NewErrorResult(fmt.Sprintf("unknown tool: %s", fc.Name)).ToMap(),
			})
			continue
		}

		if h, ok := tool.(Handoffer); ok && handoff == "" {
			handoff = h.Target()
		}

		result := a.executeOne(ctx, tool, fc.Args)
		results = append(results, &genai.FunctionResponse{
			ID:       fc.ID,
			Name:     fc.Name,
			Response: result.ToMap(),
		})
	}

	return results, handoff
}

func (a *Agent) executeOne(ctx context.Context, tool Tool, args map[string]any) ToolResult {
	if err := tool.Validate(args); err != nil {
		return NewErrorResult(fmt.Sprintf("invalid arguments: %v", err))
	}
	result, err := tool.Execute(ctx, args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	return result
}

func (a *Agent) trace(event string, keyvals ...any) {
	if a.tracer != nil {
		a.tracer.Trace(event, keyvals...)
	}
	logging.Debug(event, keyvals...)
}

func responseParts(resp *client.Response) []*genai.Part {
	var parts []*genai.Part
	if resp.Text != "" {
		parts = append(parts, genai.NewPartFromText(resp.Text))
	}
	for _, fc := range resp.FunctionCalls {
		parts = append(parts, &genai.Part{FunctionCall: fc})
	}
	if len(parts) == 0 {
		parts = append(parts, genai.NewPartFromText(""))
	}
	return parts
}
