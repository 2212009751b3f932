package llm

import (
	"fmt"
	"strings"

	"github.com/keeperhq/keeper/internal/intent"
)

const classifySystemPrompt = `You are the intent classifier for a personal productivity assistant.
Classify the user's message into exactly one intent and extract any parameters
they already provided. Respond with a single JSON object and nothing else:

{"intent": "<tag>", "params": {"field": "value"}, "confirmation": "<one short sentence to show the user>"}

Rules:
- intent must be one of the listed tags.
- Only extract parameters the user actually stated. Never invent values.
- For create_account (a stored login credential), return empty params; those
  details are collected separately.
- Use search_knowledge when the user asks a question about their own tasks,
  notes or journal. Use general_chat for anything else.`

// classifyPrompt lists the closed intent set with its parameter names so
// the model extracts fields under the same names the executor expects.
func classifyPrompt(userText string) string {
	var b strings.Builder
	b.WriteString("Intents:\n")
	for _, tag := range intent.All() {
		fields := intent.RequiredFields(tag)
		if len(fields) == 0 {
			fmt.Fprintf(&b, "- %s\n", tag)
			continue
		}
		fmt.Fprintf(&b, "- %s (params: %s)\n", tag, strings.Join(fields, ", "))
	}
	fmt.Fprintf(&b, "\nUser message: %q\n", userText)
	return b.String()
}
