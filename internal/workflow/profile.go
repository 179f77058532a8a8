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

// valueCandidates are offered when asking about appreciated values.
var valueCandidates = []string{
	"To be liked/loved",
	"To be ethically good",
	"To create something new",
	"To help others",
	"To learn/evolve",
	"To impact the world",
	"To achieve your career goals",
	"To live a peaceful life savoring the simple pleasures it has to offer",
	"To attain financial success",
	"To understand the world",
	"To have a life filled with fun and adventure",
	"To have good friends",
	"To have a thriving family",
}

// profileQuestion pairs an interview question with its formatting and
// evaluation rubric.
type profileQuestion struct {
	Key        string
	Question   string
	Formatting string
	Evaluation string
}

// profileQuestions is the fixed interview, asked in order.
var profileQuestions = []profileQuestion{
	{
		Key:        state.FieldMBTI,
		Question:   "What is your MBTI?",
		Formatting: "Capitalized string, e.g. ENTP, INFJ.",
		Evaluation: "Answer has to be a legitimate MBTI type.",
	},
	{
		Key:        state.FieldKeyStrength,
		Question:   "Can you share what are the three key strengths of yourself?",
		Formatting: "Legitimate English sentences without special characters. Three answers separated with ';'.",
		Evaluation: "Answer needs to clearly state the user's three strengths, each differentiated from the others.",
	},
	{
		Key:        state.FieldGreatestWeakness,
		Question:   "Can you share what are the three key weaknesses of yourself?",
		Formatting: "Legitimate English sentences without special characters. Three answers separated with ';'.",
		Evaluation: "Clearly states the three weaknesses, each differentiated from the others.",
	},
	{
		Key:        state.FieldOneBigChallenge,
		Question:   "What is your 'One Big Challenge'?",
		Formatting: "Legitimate English sentence, no special characters.",
		Evaluation: "Clearly describes the one big challenge the user has.",
	},
	{
		Key: state.FieldMostAppreciatedValues,
		Question: "What values are most important to you?\n" +
			strings.Join(valueCandidates, "\n") +
			"\nPick up to three, feel free to come up with your own.",
		Formatting: "Legitimate English words or short sentences. Three answers separated with ';'.",
		Evaluation: "Words that clearly describe the user's value preference.",
	},
	{
		Key: state.FieldLeastAppreciatedValues,
		Question: "What values are least important to you?\n" +
			strings.Join(valueCandidates, "\n") +
			"\nPick up to three, feel free to come up with your own.",
		Formatting: "Legitimate English words or short sentences. Three answers separated with ';'.",
		Evaluation: "Words that clearly describe values.",
	},
	{
		Key:        state.FieldPrinciples,
		Question:   "Do you have any existing principles you are operating with?",
		Formatting: "Legitimate English sentence.",
		Evaluation: "Answer clearly expresses the user's principles.",
	},
}

func evaluationInstructions(q profileQuestion, answer string) string {
	return fmt.Sprintf(
		"You are a helpful assistant evaluating whether the user's answer to a question meets the criteria.\n"+
			"- Question: %s\n"+
			"- Answer: %s\n"+
			"- Formatting: %s\n"+
			"- Evaluation: %s\n"+
			"**If you find the answer does not meet the criteria, respond to the user with how they can answer it properly.**\n"+
			"**If you find the answer meets the criteria, rewrite it according to the formatting requirement and update the profile.**\n"+
			"**When you have updated the profile, respond '%s'. Nothing more.**",
		q.Question, answer, q.Formatting, q.Evaluation, SentinelAnswerCollected)
}

// RecordProfileRunner walks the fixed question list. Each question gets
// a fresh evaluation sub-dialog carrying the update_profile tool; a
// rejected answer loops locally until the evaluator accepts it or the
// per-question turn budget runs out. Accepted answers are persisted one
// at a time, so an aborted interview keeps its completed questions.
type RecordProfileRunner struct {
	client       client.Client
	store        state.Store
	prompter     ui.Prompter
	printer      ui.Printer
	tokenLimit   int
	maxEvalTurns int
	tracer       agent.Tracer
}

// NewRecordProfileRunner creates the runner.
func NewRecordProfileRunner(c client.Client, store state.Store, prompter ui.Prompter, printer ui.Printer, tokenLimit, maxEvalTurns int, tracer agent.Tracer) *RecordProfileRunner {
	return &RecordProfileRunner{
		client:       c,
		store:        store,
		prompter:     prompter,
		printer:      printer,
		tokenLimit:   tokenLimit,
		maxEvalTurns: maxEvalTurns,
		tracer:       tracer,
	}
}

// Run asks every question in order.
func (r *RecordProfileRunner) Run(ctx context.Context) (string, error) {
	tool := state.NewUpdateProfileTool(r.store)
	for _, q := range profileQuestions {
		if err := r.askQuestion(ctx, q, tool); err != nil {
			return "", err
		}
	}
	return "Profile updated", nil
}

func (r *RecordProfileRunner) askQuestion(ctx context.Context, q profileQuestion, tool *state.UpdateProfileTool) error {
	r.printer.Assistant(q.Question)
	answer, err := readNonEmpty(r.prompter)
	if err != nil {
		return err
	}

	tool.Bind(q.Key)
	evaluator := agent.New("profile_evaluator", evaluationInstructions(q, answer), r.client, chat.NewSession(r.tokenLimit),
		agent.WithTools(tool),
		agent.WithTracer(r.tracer),
	)

	message := "Evaluate it."
	for turn := 0; turn < r.maxEvalTurns; turn++ {
		out, err := evaluator.Run(ctx, message)
		if err != nil {
			return err
		}
		if strings.TrimSpace(out.Text) == SentinelAnswerCollected {
			return nil
		}
		// Rejection: show the evaluator's guidance and collect a new
		// attempt, staying within this question.
		r.printer.Assistant(out.Text)
		message, err = readNonEmpty(r.prompter)
		if err != nil {
			return err
		}
	}
	return fmt.Errorf("question %q was not answered acceptably within %d evaluation turns", q.Key, r.maxEvalTurns)
}
