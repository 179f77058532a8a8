package agent

import (
	"context"
	"fmt"
	"testing"

	"mentor/internal/chat"
	"mentor/internal/client"

	"google.golang.org/genai"
)

type echoTool struct {
	name  string
	calls int
}

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return "echoes its input" }

func (t *echoTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.name,
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"text": {Type: genai.TypeString},
			},
			Required: []string{"text"},
		},
	}
}

func (t *echoTool) Validate(args map[string]any) error {
	if _, ok := args["text"].(string); !ok {
		return fmt.Errorf("text is required")
	}
	return nil
}

func (t *echoTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	t.calls++
	return NewSuccessResult(args["text"].(string)), nil
}

type transferTool struct {
	echoTool
	target string
}

func (t *transferTool) Target() string { return t.target }

func TestRunReturnsTextAnswer(t *testing.T) {
	c := client.NewScriptedClient(client.TextResponse("pick one priority"))
	session := chat.NewSession(0)
	a := New("advisor", "give advice", c, session)

	out, err := a.Run(context.Background(), "what should I do")
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "pick one priority" {
		t.Errorf("unexpected text: %q", out.Text)
	}
	if out.Handoff != "" {
		t.Errorf("unexpected handoff: %q", out.Handoff)
	}
	if session.MessageCount() != 2 {
		t.Errorf("expected user+model in session, got %d messages", session.MessageCount())
	}
}

func TestRunExecutesToolThenAnswers(t *testing.T) {
	c := client.NewScriptedClient(
		client.CallResponse("echo", map[string]any{"text": "noted"}),
		client.TextResponse("done"),
	)
	session := chat.NewSession(0)
	tool := &echoTool{name: "echo"}
	a := New("recorder", "record things", c, session, WithTools(tool))

	out, err := a.Run(context.Background(), "record this")
	if err != nil {
		t.Fatal(err)
	}
	if tool.calls != 1 {
		t.Errorf("tool executed %d times, want 1", tool.calls)
	}
	if out.Text != "done" {
		t.Errorf("unexpected text: %q", out.Text)
	}
	if len(c.FunctionResults) != 1 {
		t.Fatalf("expected 1 function result batch, got %d", len(c.FunctionResults))
	}
	if got := c.FunctionResults[0][0].Response["content"]; got != "noted" {
		t.Errorf("unexpected tool result: %v", got)
	}
}

func TestRunStopsOnHandoff(t *testing.T) {
	c := client.NewScriptedClient(
		client.CallResponse("transfer_to_career", map[string]any{"text": "go"}),
	)
	session := chat.NewSession(0)
	tool := &transferTool{echoTool: echoTool{name: "transfer_to_career"}, target: "career"}
	a := New("triage", "route requests", c, session, WithTools(tool))

	out, err := a.Run(context.Background(), "help with my job")
	if err != nil {
		t.Fatal(err)
	}
	if out.Handoff != "career" {
		t.Errorf("expected handoff to career, got %q", out.Handoff)
	}
}

func TestRunInvalidArgsReportedToModel(t *testing.T) {
	c := client.NewScriptedClient(
		client.CallResponse("echo", map[string]any{"wrong": 1}),
		client.TextResponse("ok"),
	)
	session := chat.NewSession(0)
	tool := &echoTool{name: "echo"}
	a := New("recorder", "record things", c, session, WithTools(tool))

	if _, err := a.Run(context.Background(), "record"); err != nil {
		t.Fatal(err)
	}
	if tool.calls != 0 {
		t.Errorf("tool must not run on invalid args")
	}
	resp := c.FunctionResults[0][0].Response
	if resp["success"] != false {
		t.Errorf("expected failure response, got %v", resp)
	}
}

func TestRunTurnLimit(t *testing.T) {
	c := client.NewScriptedClient(
		client.CallResponse("echo", map[string]any{"text": "a"}),
		client.CallResponse("echo", map[string]any{"text": "b"}),
		client.CallResponse("echo", map[string]any{"text": "c"}),
	)
	session := chat.NewSession(0)
	a := New("looper", "loop", c, session, WithTools(&echoTool{name: "echo"}), WithMaxTurns(2))

	if _, err := a.Run(context.Background(), "go"); err == nil {
		t.Fatal("expected turn limit error")
	}
}
