package state

import (
	"context"
	"fmt"

	"mentor/internal/agent"

	"google.golang.org/genai"
)

// StoreCaseTool persists one reflection case. It refuses a second
// invocation within the same run; the workflow constructs a fresh tool
// per reflection.
type StoreCaseTool struct {
	store     Store
	sessionID string
	dialog    func() []string
	invoked   bool
	stored    *ReflectionCase
}

// NewStoreCaseTool creates the tool. dialog supplies the conversation
// transcript captured alongside the case.
func NewStoreCaseTool(store Store, sessionID string, dialog func() []string) *StoreCaseTool {
	return &StoreCaseTool{store: store, sessionID: sessionID, dialog: dialog}
}

func (t *StoreCaseTool) Name() string { return "store_reflection_case" }

func (t *StoreCaseTool) Description() string {
	return "Store the reflection case when the information of the case is sufficiently clarified."
}

// StoredCase returns the case persisted by this run, if any.
func (t *StoreCaseTool) StoredCase() *ReflectionCase { return t.stored }

func (t *StoreCaseTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"case_summary":      {Type: genai.TypeString, Description: "One or two sentence summary of the case"},
				"case_details":      {Type: genai.TypeString, Description: "What happened, in the user's words"},
				"principle_applied": {Type: genai.TypeString, Description: "Which principles were applied and how they were weighed"},
				"detail_analysis":   {Type: genai.TypeString, Description: "Analysis of the case"},
				"new_principle":     {Type: genai.TypeString, Description: "The new principle the user formulated"},
			},
			Required: []string{"case_summary", "case_details", "detail_analysis", "new_principle"},
		},
	}
}

func (t *StoreCaseTool) Validate(args map[string]any) error {
	for _, key := range []string{"case_summary", "case_details", "detail_analysis", "new_principle"} {
		if v, ok := args[key].(string); !ok || v == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	return nil
}

func (t *StoreCaseTool) Execute(ctx context.Context, args map[string]any) (agent.ToolResult, error) {
	if t.invoked {
		return agent.NewErrorResult("case already stored in this reflection"), nil
	}

	summary := args["case_summary"].(string)
	c := ReflectionCase{
		CaseID:           NewCaseID(summary),
		Summary:          summary,
		Detail:           args["case_details"].(string),
		PrincipleApplied: stringArg(args, "principle_applied"),
		DetailAnalysis:   args["detail_analysis"].(string),
		NewPrinciple:     args["new_principle"].(string),
		SessionID:        t.sessionID,
	}
	if t.dialog != nil {
		c.Dialog = t.dialog()
	}

	if err := t.store.PersistCase(c); err != nil {
		return agent.ToolResult{}, err
	}
	t.invoked = true
	t.stored = &c
	return agent.NewSuccessResult(fmt.Sprintf("Case persisted. Case ID: %s. Session ID: %s", c.CaseID, t.sessionID)), nil
}

// UpdateProfileTool writes one profile field. The bound key changes as
// the interview advances; the model only supplies the rewritten content.
type UpdateProfileTool struct {
	store Store
	key   string
}

// NewUpdateProfileTool creates the tool bound to no field; call Bind
// before each question.
func NewUpdateProfileTool(store Store) *UpdateProfileTool {
	return &UpdateProfileTool{store: store}
}

// Bind sets the profile field the next invocation writes.
func (t *UpdateProfileTool) Bind(key string) { t.key = key }

func (t *UpdateProfileTool) Name() string { return "update_profile" }

func (t *UpdateProfileTool) Description() string {
	return "Update the user profile when the answer meets the evaluation criteria. " +
		"The content parameter is the answer rewritten to meet the format requirement " +
		"without losing or adding any information."
}

func (t *UpdateProfileTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"content": {Type: genai.TypeString, Description: "The rewritten answer"},
			},
			Required: []string{"content"},
		},
	}
}

func (t *UpdateProfileTool) Validate(args map[string]any) error {
	if v, ok := args["content"].(string); !ok || v == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

func (t *UpdateProfileTool) Execute(ctx context.Context, args map[string]any) (agent.ToolResult, error) {
	if t.key == "" {
		return agent.NewErrorResult("no profile field bound"), nil
	}
	profile := &Profile{}
	if err := profile.Set(t.key, args["content"].(string)); err != nil {
		return agent.NewErrorResult(err.Error()), nil
	}
	if err := t.store.PersistProfile(profile); err != nil {
		return agent.ToolResult{}, err
	}
	return agent.NewSuccessResult("Profile saved"), nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
