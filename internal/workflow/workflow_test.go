package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"mentor/internal/chat"
	"mentor/internal/client"
	"mentor/internal/state"
	"mentor/internal/ui"
)

// scriptPrompter replays user lines; exhausted input reads as closed.
type scriptPrompter struct {
	lines []string
	next  int
}

func (p *scriptPrompter) ReadLine() (string, error) {
	if p.next >= len(p.lines) {
		return "", ui.ErrInputClosed
	}
	line := p.lines[p.next]
	p.next++
	return line, nil
}

func (p *scriptPrompter) Ask(question string) (string, error) { return p.ReadLine() }

func (p *scriptPrompter) Confirm(question string) (bool, error) {
	line, err := p.ReadLine()
	if err != nil {
		return false, err
	}
	return line == "y" || line == "yes", nil
}

// recordingPrinter captures output for assertions.
type recordingPrinter struct {
	assistant []string
	system    []string
	errors    []string
	markdown  []string
}

func (p *recordingPrinter) Assistant(msg string) { p.assistant = append(p.assistant, msg) }
func (p *recordingPrinter) System(msg string)    { p.system = append(p.system, msg) }
func (p *recordingPrinter) Error(msg string)     { p.errors = append(p.errors, msg) }
func (p *recordingPrinter) Markdown(msg string)  { p.markdown = append(p.markdown, msg) }

func newTestStore(t *testing.T) *state.FileStore {
	t.Helper()
	dir := t.TempDir()
	return state.NewFileStore(filepath.Join(dir, "notes"), filepath.Join(dir, "journal"))
}

func TestParseStageExactMatch(t *testing.T) {
	if _, ok := ParseStage("CaseReflection"); !ok {
		t.Error("known token must parse")
	}
	if _, ok := ParseStage("casereflection"); ok {
		t.Error("matching must be case sensitive")
	}
	if _, ok := ParseStage("MakeAPlan"); ok {
		t.Error("unknown token must not parse")
	}
	if s, ok := ParseStage("Ending"); !ok || s != StageEnding {
		t.Error("Ending must parse")
	}
}

func TestRouterClassifiesExactToken(t *testing.T) {
	c := client.NewScriptedClient(client.TextResponse("CaseReflection"))
	prompter := &scriptPrompter{lines: []string{"I want to reflect on something that happened"}}
	router := NewIntentRouter(c, chat.NewSession(0), prompter, &recordingPrinter{}, 8, nil)

	stage, err := router.Classify(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stage != StageCaseReflection {
		t.Errorf("got %q", stage)
	}
}

func TestRouterClarifiesThenClassifies(t *testing.T) {
	c := client.NewScriptedClient(
		client.TextResponse("Could you tell me more about what you want to do?"),
		client.TextResponse("Advice"),
	)
	prompter := &scriptPrompter{lines: []string{"hmm", "I need advice about my job"}}
	printer := &recordingPrinter{}
	router := NewIntentRouter(c, chat.NewSession(0), prompter, printer, 8, nil)

	stage, err := router.Classify(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stage != StageAdvice {
		t.Errorf("got %q", stage)
	}
	if len(printer.assistant) != 1 {
		t.Errorf("clarifying remark not shown to user")
	}
}

func TestRouterFailsClosedPastBudget(t *testing.T) {
	c := client.NewScriptedClient(
		client.TextResponse("not-a-stage"),
		client.TextResponse("still-not-a-stage"),
	)
	prompter := &scriptPrompter{lines: []string{"one", "two"}}
	router := NewIntentRouter(c, chat.NewSession(0), prompter, &recordingPrinter{}, 2, nil)

	_, err := router.Classify(context.Background())
	var classErr *ClassificationError
	if !errors.As(err, &classErr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
	if classErr.Attempts != 2 {
		t.Errorf("got %d attempts", classErr.Attempts)
	}
}

// scriptRouter returns stages in order.
type scriptRouter struct {
	stages []Stage
	next   int
}

func (r *scriptRouter) Classify(ctx context.Context) (Stage, error) {
	if r.next >= len(r.stages) {
		return "", ui.ErrInputClosed
	}
	s := r.stages[r.next]
	r.next++
	return s, nil
}

// stubRunner records being run.
type stubRunner struct {
	runs int
	note string
	err  error
}

func (r *stubRunner) Run(ctx context.Context) (string, error) {
	r.runs++
	return r.note, r.err
}

func TestEngineRunsStagesThenEnds(t *testing.T) {
	session := chat.NewSession(0)
	router := &scriptRouter{stages: []Stage{StageCaseReflection, StageJournal, StageEnding}}
	printer := &recordingPrinter{}
	engine := NewEngine(session, router, printer)

	reflection := &stubRunner{note: SentinelCaseCollected}
	journal := &stubRunner{note: "journal-2026-08-31.md"}
	engine.Register(StageCaseReflection, reflection)
	engine.Register(StageJournal, journal)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if reflection.runs != 1 || journal.runs != 1 {
		t.Errorf("runner invocations: reflection=%d journal=%d", reflection.runs, journal.runs)
	}
	if len(printer.system) != 1 || !strings.Contains(printer.system[0], "CaseReflection") {
		t.Errorf("greeting must be printed once and list the stages: %v", printer.system)
	}
	if session.MessageCount() != 1 {
		t.Errorf("greeting must be recorded in session memory")
	}
}

func TestEngineUnknownStage(t *testing.T) {
	engine := NewEngine(chat.NewSession(0), &scriptRouter{stages: []Stage{StageAdvice}}, &recordingPrinter{})

	err := engine.Start(context.Background())
	var unknownErr *UnknownStageError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownStageError, got %v", err)
	}
	if unknownErr.Stage != StageAdvice {
		t.Errorf("got stage %q", unknownErr.Stage)
	}
}

func TestEngineSingleShotAdvice(t *testing.T) {
	router := &scriptRouter{stages: []Stage{StageAdvice, StageJournal}}
	engine := NewEngine(chat.NewSession(0), router, &recordingPrinter{}, WithSingleShotAdvice())

	adviceRunner := &stubRunner{note: "Done"}
	journal := &stubRunner{}
	engine.Register(StageAdvice, adviceRunner)
	engine.Register(StageJournal, journal)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if adviceRunner.runs != 1 {
		t.Errorf("advice must run once")
	}
	if journal.runs != 0 {
		t.Errorf("engine must halt after single-shot advice")
	}
}

func TestEngineRoutingLoopsBackWithoutRunner(t *testing.T) {
	router := &scriptRouter{stages: []Stage{StageRouting, StageEnding}}
	engine := NewEngine(chat.NewSession(0), router, &recordingPrinter{})

	if err := engine.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestCaseReflectionStoresCaseAndReturnsSentinel(t *testing.T) {
	store := newTestStore(t)
	c := client.NewScriptedClient(
		client.CallResponse("store_reflection_case", map[string]any{
			"case_summary":      "lost my temper in a review",
			"case_details":      "pushed back hard on feedback instead of listening",
			"principle_applied": "radical open-mindedness",
			"detail_analysis":   "ego barrier triggered by public criticism",
			"new_principle":     "treat criticism as data, not attack",
		}),
		client.TextResponse(SentinelCaseCollected),
	)
	runner := NewCaseReflectionRunner(c, store, &scriptPrompter{}, &recordingPrinter{}, "session-1", 0, 10, nil)

	note, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if note != SentinelCaseCollected {
		t.Errorf("got note %q", note)
	}

	cases, err := store.LoadCases()
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected 1 stored case, got %d", len(cases))
	}
	stored := cases[0]
	if stored.NewPrinciple == "" {
		t.Error("new principle must be persisted")
	}
	if stored.CaseID != state.NewCaseID(stored.Summary) {
		t.Error("case id must derive from summary")
	}
	if stored.SessionID != "session-1" {
		t.Errorf("got session id %q", stored.SessionID)
	}
}

func TestCaseReflectionInterviewLoop(t *testing.T) {
	store := newTestStore(t)
	c := client.NewScriptedClient(
		client.TextResponse("What happened, and how did it make you feel?"),
		client.CallResponse("store_reflection_case", map[string]any{
			"case_summary":    "missed a commitment to a friend",
			"case_details":    "overbooked my week and cancelled last minute",
			"detail_analysis": "optimistic scheduling ignores past evidence",
			"new_principle":   "commit to less than I think I can do",
		}),
		client.TextResponse(SentinelCaseCollected),
	)
	prompter := &scriptPrompter{lines: []string{"I cancelled on a friend again"}}
	printer := &recordingPrinter{}
	runner := NewCaseReflectionRunner(c, store, prompter, printer, "s", 0, 10, nil)

	note, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if note != SentinelCaseCollected {
		t.Errorf("got %q", note)
	}
	if len(printer.assistant) != 1 {
		t.Errorf("follow-up question must be shown")
	}
}

func TestCaseReflectionTurnBudget(t *testing.T) {
	store := newTestStore(t)
	c := client.NewScriptedClient(
		client.TextResponse("tell me more"),
		client.TextResponse("and then?"),
		client.TextResponse("go on"),
	)
	prompter := &scriptPrompter{lines: []string{"a", "b", "c"}}
	runner := NewCaseReflectionRunner(c, store, prompter, &recordingPrinter{}, "s", 0, 2, nil)

	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected turn budget error")
	}
}

func TestRecordProfilePersistsRewrittenAnswers(t *testing.T) {
	store := newTestStore(t)

	// Each question: accept immediately (tool call, then sentinel).
	rewritten := map[string]string{
		state.FieldMBTI:                   "ENTP",
		state.FieldKeyStrength:            "curiosity; persistence; candour",
		state.FieldGreatestWeakness:       "impatience; overcommitting; avoiding conflict",
		state.FieldOneBigChallenge:        "Building a habit of honest self-review",
		state.FieldMostAppreciatedValues:  "To learn/evolve; To help others; To understand the world",
		state.FieldLeastAppreciatedValues: "To attain financial success",
		state.FieldPrinciples:             "Pain plus reflection equals progress",
	}
	var responses []*client.Response
	for _, key := range state.ProfileFields {
		responses = append(responses,
			client.CallResponse("update_profile", map[string]any{"content": rewritten[key]}),
			client.TextResponse(SentinelAnswerCollected),
		)
	}
	c := client.NewScriptedClient(responses...)

	answers := []string{
		"entp i think", "curious, persistent, candid", "impatient, overcommit, avoid conflict",
		"honest self-review", "learning, helping, understanding", "money", "pain + reflection = progress",
	}
	prompter := &scriptPrompter{lines: answers}
	printer := &recordingPrinter{}
	runner := NewRecordProfileRunner(c, store, prompter, printer, 0, 5, nil)

	note, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if note != "Profile updated" {
		t.Errorf("got note %q", note)
	}
	if len(printer.assistant) != len(profileQuestions) {
		t.Errorf("every question must be shown, got %d", len(printer.assistant))
	}

	profile, err := store.LoadProfile()
	if err != nil {
		t.Fatal(err)
	}
	for key, want := range rewritten {
		if got := profile.Get(key); got != want {
			t.Errorf("%s: got %q, want %q", key, got, want)
		}
	}
}

func TestRecordProfileRejectionLoopsLocally(t *testing.T) {
	store := newTestStore(t)

	var responses []*client.Response
	// First question: reject once, then accept on the clarified answer.
	responses = append(responses,
		client.TextResponse("That does not look like an MBTI type. Please answer with four letters, e.g. ENTP."),
		client.CallResponse("update_profile", map[string]any{"content": "INFJ"}),
		client.TextResponse(SentinelAnswerCollected),
	)
	// Remaining questions accept immediately.
	for range profileQuestions[1:] {
		responses = append(responses,
			client.CallResponse("update_profile", map[string]any{"content": "fine answer"}),
			client.TextResponse(SentinelAnswerCollected),
		)
	}
	c := client.NewScriptedClient(responses...)

	prompter := &scriptPrompter{lines: []string{
		"purple", "infj",
		"a", "b", "c", "d", "e", "f",
	}}
	runner := NewRecordProfileRunner(c, store, prompter, &recordingPrinter{}, 0, 5, nil)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	profile, err := store.LoadProfile()
	if err != nil {
		t.Fatal(err)
	}
	if profile.MBTI != "INFJ" {
		t.Errorf("clarified answer not persisted: %+v", profile)
	}
}

func TestJournalRunnerCreatesEntry(t *testing.T) {
	store := newTestStore(t)
	printer := &recordingPrinter{}
	runner := NewJournalRunner(store, printer)

	path, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(filepath.Base(path), "journal-") {
		t.Errorf("unexpected path %q", path)
	}
	if len(printer.system) != 1 || !strings.Contains(printer.system[0], path) {
		t.Errorf("path must be reported to the user")
	}
}
