package advice

import (
	"context"
	"fmt"

	"mentor/internal/chat"
)

// StaticStrategy is the linear pipeline: interviewer, then retriever,
// then advisor. Each step gets a fresh stateless agent; a step failure
// aborts the pipeline with no retry.
type StaticStrategy struct {
	deps *deps
}

// Advise runs the three steps in order.
func (s *StaticStrategy) Advise(ctx context.Context, question string) (string, error) {
	interviewer := s.deps.newInterviewer(chat.NewSession(s.deps.tokenLimit), "")
	interviewed, err := interviewer.Run(ctx, question)
	if err != nil {
		return "", fmt.Errorf("interview step: %w", err)
	}

	retriever := s.deps.newRetriever(chat.NewSession(s.deps.tokenLimit), "")
	retrieved, err := retriever.Run(ctx, interviewed.Text)
	if err != nil {
		return "", fmt.Errorf("retrieval step: %w", err)
	}

	profile, err := s.deps.store.LoadProfile()
	if err != nil {
		return "", fmt.Errorf("advice step: %w", err)
	}
	principles, err := s.deps.store.LoadPrinciplesFromCases()
	if err != nil {
		return "", fmt.Errorf("advice step: %w", err)
	}

	advisor := s.deps.newAdvisor(chat.NewSession(s.deps.tokenLimit), profile, principles, retrieved.Text)
	advised, err := advisor.Run(ctx, interviewed.Text)
	if err != nil {
		return "", fmt.Errorf("advice step: %w", err)
	}
	return advised.Text, nil
}
