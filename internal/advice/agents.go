package advice

import (
	"fmt"
	"strings"

	"mentor/internal/agent"
	"mentor/internal/chat"
	"mentor/internal/client"
	"mentor/internal/knowledge"
	"mentor/internal/state"
	"mentor/internal/ui"
)

// Agent role names used for handoff targets.
const (
	RoleInterviewer = "interviewer"
	RoleRetriever   = "reference_retriever"
	RoleAdvisor     = "principle_advisor"
)

const handoffAdjustment = "You should hand over to %s when you are done."

func interviewerInstructions(questionLimit int) string {
	return fmt.Sprintf(
		"You are a helpful agent built to raise clarifications to users by calling the clarification tool.\n"+
			"Your goal is getting the detailed information of the user's question to give thorough guidance.\n"+
			"You should ask no more than %d questions.\n"+
			"You should not attempt to answer the question but return summarised content as your output.",
		questionLimit)
}

func retrieverInstructions(rewriteFactor int) string {
	return fmt.Sprintf(
		"You are an assistant that helps reframe user questions into clear, concept-driven statements that match "+
			"the style and topics of Principles by Ray Dalio, and looks up the principle book for relevant content.\n\n"+
			"Background:\n"+
			"Principles teaches structured thinking about life and work decisions.\n"+
			"The key ideas are:\n"+
			"* Radical truth and radical transparency\n"+
			"* Decision-making frameworks\n"+
			"* Embracing mistakes as learning\n"+
			"* Diagnosing and solving problems systematically\n"+
			"* Building meritocratic organizations\n"+
			"The content style is practical, structured, focused on systems thinking, not emotional, not vague.\n\n"+
			"Task:\n"+
			"- Task 1: Rewrite the user's question into statements that match how Ray Dalio frames ideas in "+
			"Principles. Emphasize problem-solving, systems, truth-seeking, decision-making frameworks. Keep the "+
			"rewritten versions faithful to the user's original meaning. Use a formal, logical, neutral tone.\n"+
			"- Task 2: Look up the principle book with the rewritten statements. You should provide at least %d "+
			"rewritten versions.\n"+
			"- Task 3: Return the most relevant content as your final answer. You do not have to rewrite or "+
			"summarise the content.\n\n"+
			"Example rewrites:\n"+
			"- User question: \"How can I recover after making a mistake?\"\n"+
			"  Rewritten statements:\n"+
			"  - \"The process of learning from mistakes to make consistent progress aligns with the principle that pain plus reflection equals growth.\"\n"+
			"  - \"Mistakes are opportunities for learning through pain and reflection, which is essential for personal growth.\"\n"+
			"- User question: \"How do I know if my team is working well together?\"\n"+
			"  Rewritten statements:\n"+
			"  - \"A team's effectiveness is measured by the quality of meaningful work and meaningful relationships achieved through radical truth and transparency.\"\n"+
			"  - \"Evaluating team health requires assessing alignment to radical truth, open communication, and meritocratic collaboration.\"\n\n"+
			"Always phrase the output as a statement, not a question.",
		rewriteFactor)
}

func advisorInstructions(profile *state.Profile, principles []string, bookContent string) string {
	var profileLines []string
	for _, key := range state.ProfileFields {
		if value := profile.Get(key); value != "" {
			profileLines = append(profileLines, key+": "+value)
		}
	}

	prompt := fmt.Sprintf(
		"You are an AI assistant that provides thoughtful, practical, and deeply personalized suggestions by combining:\n"+
			"- The user's personal profile and principles\n"+
			"- Insights retrieved from Principles by Ray Dalio\n\n"+
			"User's profile:\n```\n%s\n```\n\n"+
			"User's principles:\n```\n%s\n```\n",
		strings.Join(profileLines, "\n"),
		strings.Join(principles, "\n"))

	if bookContent != "" {
		prompt += fmt.Sprintf("\nBook content:\n```\n%s\n```\n", bookContent)
	}

	prompt += "\nStyle guidelines:\n" +
		"- Provide the suggestions based on the content of the book when relevant.\n" +
		"- Ground your suggestions in something specific about the user (a strength, a weakness, past experiences).\n" +
		"- Provide the top 3 most relevant suggestions.\n" +
		"- Use a logical, structured, pragmatic, neutral tone and encourage reflection and iterative improvement."
	return prompt
}

// deps carries the collaborators every advice agent draws on.
type deps struct {
	client        client.Client
	index         knowledge.Searcher
	store         state.Store
	prompter      ui.Prompter
	tracer        agent.Tracer
	tokenLimit    int
	topK          int
	rewriteFactor int
	questionLimit int
}

func (d *deps) newInterviewer(session *chat.Session, handoffTo string) *agent.Agent {
	instructions := interviewerInstructions(d.questionLimit)
	tools := []agent.Tool{NewClarificationTool(d.prompter, d.questionLimit)}
	if handoffTo != "" {
		instructions += "\n" + fmt.Sprintf(handoffAdjustment, handoffTo)
		tools = append(tools, NewHandoffTool(handoffTo))
	}
	return agent.New(RoleInterviewer, instructions, d.client, session,
		agent.WithTools(tools...), agent.WithTracer(d.tracer))
}

func (d *deps) newRetriever(session *chat.Session, handoffTo string) *agent.Agent {
	instructions := retrieverInstructions(d.rewriteFactor)
	tools := []agent.Tool{
		NewLookupTool(d.index, d.topK, d.rewriteFactor),
		NewClarificationTool(d.prompter, d.questionLimit),
	}
	if handoffTo != "" {
		instructions += "\n" + fmt.Sprintf(handoffAdjustment, handoffTo)
		tools = append(tools, NewHandoffTool(handoffTo))
	}
	return agent.New(RoleRetriever, instructions, d.client, session,
		agent.WithTools(tools...), agent.WithTracer(d.tracer))
}

func (d *deps) newAdvisor(session *chat.Session, profile *state.Profile, principles []string, bookContent string) *agent.Agent {
	return agent.New(RoleAdvisor, advisorInstructions(profile, principles, bookContent), d.client, session,
		agent.WithTracer(d.tracer))
}
