package workflow

import (
	"context"
	"fmt"
	"strings"

	"mentor/internal/agent"
	"mentor/internal/chat"
	"mentor/internal/client"
	"mentor/internal/state"
	"mentor/internal/ui"
)

// reflectionInstructions guides the structured case interview.
var reflectionInstructions = fmt.Sprintf(
	"You are an assistant helping the user do a case reflection for practising "+
		"the instructions in Ray Dalio's Principles.\n"+
		"You should ask follow-up questions iteratively until you gather enough clear "+
		"and structured information about the case.\n"+
		"Be sympathetic and patient. Acknowledge and echo the user's feelings based on "+
		"the information shared.\n\n"+
		"A good case reflection should ideally include the following elements:\n"+
		"- [Required] Case at hand: describe what happened.\n"+
		"- [Optional] 'One of those': the high-level category this case falls into.\n"+
		"- [Optional] Principle applied: which principles were applied and how they were weighed.\n"+
		"- [Required] Reflection: the user's personal reflection or learning.\n"+
		"- [Required] New principle: guide the user to come up with a new principle to address this case.\n\n"+
		"Continue asking thoughtful questions until the reflection includes at least the "+
		"required elements. You should be able to generate the following from the user's "+
		"clarifications: case summary, case description, principle applied, detail analysis, "+
		"new principle.\n"+
		"**Once you are confident the reflection is sufficiently clarified, trigger the "+
		"store_reflection_case function call to store the case instead of asking the user "+
		"for permission.**\n"+
		"**After you have triggered the function call to store the case, respond '%s'. Nothing more.**",
	SentinelCaseCollected)

// CaseReflectionRunner interviews the user about one case and persists
// it through the store tool. Each run gets fresh conversation memory and
// a fresh single-use store tool.
type CaseReflectionRunner struct {
	client     client.Client
	store      state.Store
	prompter   ui.Prompter
	printer    ui.Printer
	sessionID  string
	tokenLimit int
	maxTurns   int
	tracer     agent.Tracer
}

// NewCaseReflectionRunner creates the runner.
func NewCaseReflectionRunner(c client.Client, store state.Store, prompter ui.Prompter, printer ui.Printer, sessionID string, tokenLimit, maxTurns int, tracer agent.Tracer) *CaseReflectionRunner {
	return &CaseReflectionRunner{
		client:     c,
		store:      store,
		prompter:   prompter,
		printer:    printer,
		sessionID:  sessionID,
		tokenLimit: tokenLimit,
		maxTurns:   maxTurns,
		tracer:     tracer,
	}
}

// Run drives the interview until the agent stores the case and emits the
// sentinel, or the turn budget runs out.
func (r *CaseReflectionRunner) Run(ctx context.Context) (string, error) {
	memory := chat.NewSession(r.tokenLimit)
	tool := state.NewStoreCaseTool(r.store, r.sessionID, func() []string {
		return transcript(memory)
	})
	interviewer := agent.New("case_reflection", reflectionInstructions, r.client, memory,
		agent.WithTools(tool),
		agent.WithTracer(r.tracer),
	)

	message := "Instruct me what should I do"
	for turn := 0; turn < r.maxTurns; turn++ {
		out, err := interviewer.Run(ctx, message)
		if err != nil {
			return "", err
		}
		if strings.Contains(out.Text, SentinelCaseCollected) {
			return SentinelCaseCollected, nil
		}
		r.printer.Assistant(out.Text)

		message, err = readNonEmpty(r.prompter)
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("case reflection did not complete within %d turns", r.maxTurns)
}

// readNonEmpty blocks until the user enters a non-empty line.
func readNonEmpty(prompter ui.Prompter) (string, error) {
	for {
		line, err := prompter.ReadLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
	}
}

// transcript renders session history as role-tagged lines.
func transcript(session *chat.Session) []string {
	var lines []string
	for _, content := range session.History() {
		var text strings.Builder
		for _, part := range content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		if text.Len() == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", content.Role, text.String()))
	}
	return lines
}
