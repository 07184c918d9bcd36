// Package composer builds the bounded-scope prompt sent to the completion API.
package composer

import (
	"fmt"
	"strings"

	"github.com/kalambet/grantdesk/internal/form"
	"github.com/kalambet/grantdesk/internal/proxy"
)

// Redirect is the fixed reply the assistant is told to give for questions
// outside grant-application help.
const Redirect = "I'm specifically designed to help with grant applications. Please ask me questions about federal assistance, eligibility requirements, or completing your application."

const guidelines = `You are a specialized AI assistant for the Navajo Grant Application website. Your ONLY purpose is to help Navajo Nation members complete federal grant applications.

STRICT GUIDELINES:
- ONLY answer questions related to federal grants, assistance programs, form completion, eligibility requirements, and Navajo Nation resources
- DO help with form field questions like "what is a social security number", "how do I format my phone number", "what does blood quantum mean", etc.
- DO explain grant types, eligibility criteria, application processes, and required documentation
- DO provide guidance on completing specific form sections
- If asked about anything completely unrelated to grants or form completion (entertainment, weather, general topics, etc.), politely redirect: "%s"
- Keep responses helpful but concise (under 150 words)
- Be culturally respectful and encouraging
- Focus on practical, actionable guidance`

// SystemPrompt returns the system message for question asked while the form
// is in the state captured by snap.
func SystemPrompt(snap form.Snapshot, question string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, guidelines, Redirect)
	sb.WriteString("\n\nCurrent user's form progress:\n")
	fmt.Fprintf(&sb, "- Step %d of %d\n", snap.Step.Clamp(), form.StepsTotal)
	fmt.Fprintf(&sb, "- Form data: %s\n\n", snap.JSON())
	fmt.Fprintf(&sb, "User question: %s", question)
	return sb.String()
}

// Messages returns the ordered messages for one question: the bounded
// system prompt followed by the literal question.
func Messages(snap form.Snapshot, question string) []proxy.Message {
	return []proxy.Message{
		{Role: proxy.RoleSystem, Content: SystemPrompt(snap, question)},
		{Role: proxy.RoleUser, Content: question},
	}
}
