package workflow

import "fmt"

// ClassificationError reports that the router could not map the user's
// intent to a stage within the clarification budget. Fatal to the
// routing attempt.
type ClassificationError struct {
	Attempts int
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("could not classify intent after %d clarification attempts", e.Attempts)
}

// UnknownStageError reports a classified stage with no registered
// runner. It is surfaced, never silently defaulted.
type UnknownStageError struct {
	Stage Stage
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("no runner registered for stage %q", e.Stage)
}
