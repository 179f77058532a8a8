package advice

import (
	"context"
	"fmt"

	"mentor/internal/agent"
	"mentor/internal/chat"
	"mentor/internal/logging"
)

// dynamicOpening frames the root agent's task.
const dynamicOpening = "Please advise me given the following question: %s.\n" +
	"You can seek clarification from me further if you want to.\n" +
	"I would like you to retrieve relevant content from the Principles book by Ray Dalio, " +
	"combine it with my profile and existing principles, and generate catered suggestions for me."

// DynamicStrategy lets the agents route control themselves: each agent
// carries handoff tools for its allowed targets and the dispatch loop
// follows the tagged outcomes over one shared conversation. The
// interviewer is the root; the advisor has no targets, so its answer
// ends the run.
type DynamicStrategy struct {
	deps        *deps
	maxHandoffs int
}

// Advise dispatches agents until one answers without handing off.
func (s *DynamicStrategy) Advise(ctx context.Context, question string) (string, error) {
	profile, err := s.deps.store.LoadProfile()
	if err != nil {
		return "", err
	}
	principles, err := s.deps.store.LoadPrinciplesFromCases()
	if err != nil {
		return "", err
	}

	shared := chat.NewSession(s.deps.tokenLimit)
	agents := map[string]*agent.Agent{
		RoleInterviewer: s.deps.newInterviewer(shared, RoleRetriever),
		RoleRetriever:   s.deps.newRetriever(shared, RoleAdvisor),
		RoleAdvisor:     s.deps.newAdvisor(shared, profile, principles, ""),
	}

	current := RoleInterviewer
	message := fmt.Sprintf(dynamicOpening, question)
	var lastAnswer string

	for hop := 0; hop <= s.maxHandoffs; hop++ {
		ag, ok := agents[current]
		if !ok {
			return "", fmt.Errorf("handoff to unknown agent %q", current)
		}

		out, err := ag.Run(ctx, message)
		if err != nil {
			return "", err
		}
		if out.Text != "" {
			lastAnswer = out.Text
		}
		if out.Handoff == "" {
			return lastAnswer, nil
		}

		logging.Debug("advice handoff", "from", current, "to", out.Handoff, "hop", hop+1)
		current = out.Handoff
		message = "Continue with the task based on the conversation so far."
	}
	return "", &HandoffLoopError{Hops: s.maxHandoffs}
}
