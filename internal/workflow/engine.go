package workflow

import (
	"context"
	"fmt"
	"strings"

	"mentor/internal/chat"
	"mentor/internal/logging"
	"mentor/internal/ui"
)

// greeting is printed once per session, before the first routing pass.
var greeting = fmt.Sprintf(
	"Great to see you! Let's dive into the art of thoughtful decision-making, "+
		"guided by Ray Dalio's Principles. Growth begins with radical honesty.\n"+
		"Here are my available functions for you to try:\n%s",
	stageList())

// StageRunner executes one non-terminal stage. The returned string is a
// completion note (often a stored-work sentinel); the engine only acts
// on the error.
type StageRunner interface {
	Run(ctx context.Context) (string, error)
}

// Engine drives the session state machine: greet once, classify intent,
// dispatch the stage runner, return to routing until Ending.
type Engine struct {
	session          *chat.Session
	router           Router
	printer          ui.Printer
	runners          map[Stage]StageRunner
	greeted          bool
	singleShotAdvice bool
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithSingleShotAdvice makes a completed Advice stage end the session
// instead of returning to routing.
func WithSingleShotAdvice() EngineOption {
	return func(e *Engine) { e.singleShotAdvice = true }
}

// NewEngine creates an engine with no runners registered.
func NewEngine(session *chat.Session, router Router, printer ui.Printer, opts ...EngineOption) *Engine {
	e := &Engine{
		session: session,
		router:  router,
		printer: printer,
		runners: make(map[Stage]StageRunner),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register binds a runner to a stage.
func (e *Engine) Register(stage Stage, runner StageRunner) {
	e.runners[stage] = runner
}

// Start runs the session to completion. It returns nil when the user
// ends the session and the first fatal stage or routing error otherwise.
func (e *Engine) Start(ctx context.Context) error {
	e.greet()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		stage, err := e.router.Classify(ctx)
		if err != nil {
			return err
		}
		if stage == StageEnding {
			logging.Info("session ended", "session_id", e.session.ID)
			return nil
		}
		if stage == StageRouting {
			continue
		}

		runner, ok := e.runners[stage]
		if !ok {
			return &UnknownStageError{Stage: stage}
		}

		logging.Info("stage started", "stage", stage, "session_id", e.session.ID)
		note, err := runner.Run(ctx)
		if err != nil {
			return fmt.Errorf("stage %s: %w", stage, err)
		}
		if note != "" && !strings.EqualFold(note, "done") {
			logging.Debug("stage completed", "stage", stage, "note", note)
		}

		if stage == StageAdvice && e.singleShotAdvice {
			return nil
		}
	}
}

// greet prints the one-shot greeting and records it in session memory.
func (e *Engine) greet() {
	if e.greeted {
		return
	}
	e.greeted = true
	e.printer.System(greeting)
	e.session.AddModelMessage(greeting)
}
