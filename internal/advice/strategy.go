package advice

import (
	"context"
	"fmt"

	"mentor/internal/agent"
	"mentor/internal/client"
	"mentor/internal/config"
	"mentor/internal/knowledge"
	"mentor/internal/state"
	"mentor/internal/ui"
)

// Strategy produces an advice answer for a question, drawing on the
// user's profile, accumulated principles, and the knowledge index.
// Static and dynamic implementations are interchangeable.
type Strategy interface {
	Advise(ctx context.Context, question string) (string, error)
}

// HandoffLoopError reports a dynamic pipeline that kept handing off past
// the hop budget.
type HandoffLoopError struct {
	Hops int
}

func (e *HandoffLoopError) Error() string {
	return fmt.Sprintf("advice pipeline exceeded %d handoffs without answering", e.Hops)
}

// newDeps assembles the shared collaborator set from config.
func newDeps(c client.Client, index knowledge.Searcher, store state.Store, prompter ui.Prompter, tracer agent.Tracer, cfg *config.Config) *deps {
	return &deps{
		client:        c,
		index:         index,
		store:         store,
		prompter:      prompter,
		tracer:        tracer,
		tokenLimit:    cfg.Session.TokenLimit,
		topK:          cfg.Retrieval.TopK,
		rewriteFactor: cfg.Retrieval.RewriteFactor,
		questionLimit: cfg.Flow.InterviewQuestions,
	}
}

// NewStrategy returns the configured strategy implementation.
func NewStrategy(c client.Client, index knowledge.Searcher, store state.Store, prompter ui.Prompter, tracer agent.Tracer, cfg *config.Config) Strategy {
	d := newDeps(c, index, store, prompter, tracer, cfg)
	if cfg.Flow.DynamicAdvice {
		return &DynamicStrategy{deps: d, maxHandoffs: cfg.Flow.MaxHandoffs}
	}
	return &StaticStrategy{deps: d}
}

// Runner is the Advice stage: it collects the question, runs the
// strategy, renders the answer, then offers the gated journal-template
// update.
type Runner struct {
	strategy Strategy
	gate     *TemplateGate
	prompter ui.Prompter
	printer  ui.Printer
}

// NewRunner creates the stage runner. gate may be nil to skip the
// template-update step.
func NewRunner(strategy Strategy, gate *TemplateGate, prompter ui.Prompter, printer ui.Printer) *Runner {
	return &Runner{strategy: strategy, gate: gate, prompter: prompter, printer: printer}
}

// Run executes one advice exchange.
func (r *Runner) Run(ctx context.Context) (string, error) {
	question, err := r.prompter.Ask("How can I help you today?")
	if err != nil {
		return "", err
	}

	answer, err := r.strategy.Advise(ctx, question)
	if err != nil {
		return "", err
	}
	r.printer.Markdown(answer)

	if r.gate != nil {
		if err := r.gate.Offer(ctx, answer); err != nil {
			return "", err
		}
	}
	return "Done", nil
}
