package workflow

import (
	"context"
	"time"

	"mentor/internal/state"
	"mentor/internal/ui"
)

// JournalRunner creates today's journal entry from the current template
// and reports where it was written. The template itself only changes
// through the gated advice step.
type JournalRunner struct {
	store   state.Store
	printer ui.Printer
}

// NewJournalRunner creates the runner.
func NewJournalRunner(store state.Store, printer ui.Printer) *JournalRunner {
	return &JournalRunner{store: store, printer: printer}
}

// Run creates the entry for today.
func (r *JournalRunner) Run(ctx context.Context) (string, error) {
	path, err := r.store.NewJournal(time.Now())
	if err != nil {
		return "", err
	}
	r.printer.System("Write your journal: " + path)
	return path, nil
}
