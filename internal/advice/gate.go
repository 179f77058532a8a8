package advice

import (
	"context"
	"fmt"

	"mentor/internal/agent"
	"mentor/internal/chat"
	"mentor/internal/client"
	"mentor/internal/state"
	"mentor/internal/ui"
)

func templateInstructions(template string) string {
	return fmt.Sprintf(
		"You maintain the user's daily journal template. Given a piece of advice the user "+
			"just received, rewrite the 'Today's Reflection', 'Key Learnings', and 'Tomorrow's "+
			"Goals' sections of the template with short prompts that help the user practise "+
			"that advice.\n"+
			"Return the complete markdown document and nothing else. Keep the {DATE} "+
			"placeholder and all headings intact.\n\n"+
			"Current template:\n```\n%s\n```",
		template)
}

// TemplateGate is the confirm-or-discard step after advice: an agent
// proposes a rewritten journal template, the user sees the full document
// and must confirm before it is persisted. Decline leaves the template
// byte-identical.
type TemplateGate struct {
	client     client.Client
	store      state.Store
	prompter   ui.Prompter
	printer    ui.Printer
	tokenLimit int
	tracer     agent.Tracer
}

// NewTemplateGate creates the gate.
func NewTemplateGate(c client.Client, store state.Store, prompter ui.Prompter, printer ui.Printer, tokenLimit int, tracer agent.Tracer) *TemplateGate {
	return &TemplateGate{
		client:     c,
		store:      store,
		prompter:   prompter,
		printer:    printer,
		tokenLimit: tokenLimit,
		tracer:     tracer,
	}
}

// Offer runs the template-update step for one piece of advice.
func (g *TemplateGate) Offer(ctx context.Context, advice string) error {
	wants, err := g.prompter.Confirm("Would you like to update your journal template based on this advice?")
	if err != nil {
		return err
	}
	if !wants {
		return nil
	}

	template, err := g.store.ReadJournalTemplate()
	if err != nil {
		return err
	}

	editor := agent.New("template_editor", templateInstructions(template), g.client, chat.NewSession(g.tokenLimit),
		agent.WithTracer(g.tracer))
	out, err := editor.Run(ctx, "Advice to fold into the template:\n"+advice)
	if err != nil {
		return err
	}
	if out.Text == "" {
		return fmt.Errorf("template editor returned an empty document")
	}

	g.printer.Markdown(out.Text)
	confirmed, err := g.prompter.Confirm("Save this as your new journal template?")
	if err != nil {
		return err
	}
	if !confirmed {
		g.printer.System("Template left unchanged.")
		return nil
	}
	return g.store.UpdateJournalTemplate(out.Text)
}
