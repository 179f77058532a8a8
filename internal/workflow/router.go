package workflow

import (
	"context"
	"fmt"
	"strings"

	"mentor/internal/agent"
	"mentor/internal/chat"
	"mentor/internal/client"
	"mentor/internal/logging"
	"mentor/internal/ui"
)

// routerInstructions is the intent classifier's system prompt.
var routerInstructions = fmt.Sprintf(
	"Your task is to identify the user's intention and determine which of the "+
		"available functions they want to use.\n"+
		"The available functions are:\n%s\n"+
		"Once you are confident about the user's intended function, respond with the "+
		"exact name of the function from the list above.\n"+
		"If you are not sure about the user's intention, seek clarification from the user.\n"+
		"**If you are sure about the user's intention, respond with only the function "+
		"name - no explanation, no extra words, just the function name.**\n"+
		"**If the user indicates they want to finish chatting, output 'Ending'.**",
	stageList())

func stageList() string {
	names := make([]string, len(AvailableStages))
	for i, s := range AvailableStages {
		names[i] = string(s)
	}
	return strings.Join(names, "\n")
}

// Router classifies the user's next intent into a stage.
type Router interface {
	Classify(ctx context.Context) (Stage, error)
}

// IntentRouter reads user lines and forwards them to a classifier agent
// sharing the session memory. An exact, case-sensitive stage token ends
// the exchange; any other model output is shown as a clarifying remark
// and the loop continues, bounded by the clarification budget.
type IntentRouter struct {
	agent             *agent.Agent
	prompter          ui.Prompter
	printer           ui.Printer
	maxClarifications int
}

// NewIntentRouter creates the router on the shared session.
func NewIntentRouter(c client.Client, session *chat.Session, prompter ui.Prompter, printer ui.Printer, maxClarifications int, tracer agent.Tracer) *IntentRouter {
	return &IntentRouter{
		agent:             agent.New("intent_router", routerInstructions, c, session, agent.WithTracer(tracer)),
		prompter:          prompter,
		printer:           printer,
		maxClarifications: maxClarifications,
	}
}

// Classify blocks for user input and returns the matched stage. Past the
// clarification budget it fails closed with ClassificationError.
func (r *IntentRouter) Classify(ctx context.Context) (Stage, error) {
	for attempt := 0; attempt < r.maxClarifications; attempt++ {
		line, err := r.prompter.ReadLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			continue
		}

		out, err := r.agent.Run(ctx, line)
		if err != nil {
			return "", err
		}

		token := strings.TrimSpace(out.Text)
		if stage, ok := ParseStage(token); ok {
			logging.Debug("intent classified", "stage", stage, "attempts", attempt+1)
			return stage, nil
		}
		r.printer.Assistant(token)
	}
	return "", &ClassificationError{Attempts: r.maxClarifications}
}
