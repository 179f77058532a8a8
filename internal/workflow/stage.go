package workflow

// Stage is one named phase of the session state machine.
type Stage string

const (
	StageRouting        Stage = "Routing"
	StageCaseReflection Stage = "CaseReflection"
	StageRecordProfile  Stage = "RecordProfile"
	StageAdvice         Stage = "Advice"
	StageJournal        Stage = "Journal"
	StageEnding         Stage = "Ending"
)

// AvailableStages are the user-selectable stages, in the order they are
// announced in the greeting.
var AvailableStages = []Stage{
	StageCaseReflection,
	StageRecordProfile,
	StageAdvice,
	StageJournal,
}

// stageByToken is the fixed classifier-token lookup. Matching is exact
// and case sensitive; anything else is not a stage.
var stageByToken = func() map[string]Stage {
	m := map[string]Stage{
		string(StageRouting): StageRouting,
		string(StageEnding):  StageEnding,
	}
	for _, s := range AvailableStages {
		m[string(s)] = s
	}
	return m
}()

// ParseStage maps a classifier token to a Stage.
func ParseStage(token string) (Stage, bool) {
	s, ok := stageByToken[token]
	return s, ok
}

// Sentinels emitted by stage agents when their work is stored.
const (
	SentinelCaseCollected   = "CaseCollected"
	SentinelAnswerCollected = "AnswerCollected"
)
