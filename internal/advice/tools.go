package advice

import (
	"context"
	"fmt"
	"strings"

	"mentor/internal/agent"
	"mentor/internal/knowledge"
	"mentor/internal/ui"

	"google.golang.org/genai"
)

// ClarificationTool relays the model's follow-up questions to the user
// and returns their answers. The question budget caps how many questions
// one invocation may ask.
type ClarificationTool struct {
	prompter ui.Prompter
	budget   int
}

// NewClarificationTool creates the tool.
func NewClarificationTool(prompter ui.Prompter, budget int) *ClarificationTool {
	if budget <= 0 {
		budget = 1
	}
	return &ClarificationTool{prompter: prompter, budget: budget}
}

func (t *ClarificationTool) Name() string { return "clarification" }

func (t *ClarificationTool) Description() string {
	return "Takes questions for clarification as input and returns the user's responses as output."
}

func (t *ClarificationTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"questions": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Questions to ask the user",
				},
			},
			Required: []string{"questions"},
		},
	}
}

func (t *ClarificationTool) Validate(args map[string]any) error {
	questions := stringSlice(args["questions"])
	if len(questions) == 0 {
		return fmt.Errorf("questions is required")
	}
	return nil
}

func (t *ClarificationTool) Execute(ctx context.Context, args map[string]any) (agent.ToolResult, error) {
	questions := stringSlice(args["questions"])
	if len(questions) > t.budget {
		questions = questions[:t.budget]
	}

	var sb strings.Builder
	for _, q := range questions {
		answer, err := t.prompter.Ask(q)
		if err != nil {
			return agent.ToolResult{}, err
		}
		fmt.Fprintf(&sb, "Question: %s\nResponse: %s\n", q, answer)
	}
	return agent.NewSuccessResult(sb.String()), nil
}

// LookupTool queries the knowledge index with the model's paraphrased
// statements. Results are concatenated in lookup order with no dedup or
// re-ranking.
type LookupTool struct {
	index         knowledge.Searcher
	topK          int
	rewriteFactor int
}

// NewLookupTool creates the tool. rewriteFactor is the minimum number of
// paraphrases a lookup must carry.
func NewLookupTool(index knowledge.Searcher, topK, rewriteFactor int) *LookupTool {
	return &LookupTool{index: index, topK: topK, rewriteFactor: rewriteFactor}
}

func (t *LookupTool) Name() string { return "look_up_principle_book" }

func (t *LookupTool) Description() string {
	return "Look up the principle book with rewritten queries. Gets the suggestions from the Principles book by Ray Dalio."
}

func (t *LookupTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"original_question": {Type: genai.TypeString, Description: "The user's original question"},
				"rewrote_statement": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Rewritten statements to look up",
				},
			},
			Required: []string{"original_question", "rewrote_statement"},
		},
	}
}

func (t *LookupTool) Validate(args map[string]any) error {
	statements := stringSlice(args["rewrote_statement"])
	if len(statements) < t.rewriteFactor {
		return fmt.Errorf("at least %d rewritten statements are required, got %d", t.rewriteFactor, len(statements))
	}
	return nil
}

func (t *LookupTool) Execute(ctx context.Context, args map[string]any) (agent.ToolResult, error) {
	statements := stringSlice(args["rewrote_statement"])

	var passages []string
	for _, statement := range statements {
		results, err := t.index.Search(ctx, statement, t.topK)
		if err != nil {
			return agent.ToolResult{}, fmt.Errorf("looking up %q: %w", statement, err)
		}
		for _, result := range results {
			passages = append(passages, result.Content)
		}
	}
	if len(passages) == 0 {
		return agent.NewSuccessResult("No relevant content found."), nil
	}
	return agent.NewSuccessResult(strings.Join(passages, "\n\n---\n\n")), nil
}

// HandoffTool transfers the conversation to a fixed target agent. One
// tool is registered per allowed target.
type HandoffTool struct {
	target string
}

// NewHandoffTool creates the tool for one target.
func NewHandoffTool(target string) *HandoffTool {
	return &HandoffTool{target: target}
}

func (t *HandoffTool) Target() string { return t.target }

func (t *HandoffTool) Name() string { return "handoff_to_" + t.target }

func (t *HandoffTool) Description() string {
	return fmt.Sprintf("Hand the conversation over to the %s agent when your part is done.", t.target)
}

func (t *HandoffTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"reason": {Type: genai.TypeString, Description: "Why control is being handed over"},
			},
		},
	}
}

func (t *HandoffTool) Validate(args map[string]any) error { return nil }

func (t *HandoffTool) Execute(ctx context.Context, args map[string]any) (agent.ToolResult, error) {
	return agent.NewSuccessResult("Handing over to " + t.target), nil
}

// stringSlice coerces a JSON array argument into []string.
func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
