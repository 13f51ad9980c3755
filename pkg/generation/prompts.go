package generation

import (
	"fmt"

	"ai-assistant-be/pkg/llm"
)

const systemStyle = "You are Corah, an AI assistant for Corvox. " +
	"Answer ONLY using the provided context. " +
	"Be concise and helpful: prefer 1-2 sentences or up to 3 short bullets. " +
	"Do not mention file names, paths, or where the info came from. " +
	"If context seems only loosely related, still give the best helpful answer; be clear and neutral."

const selfQueryInstruction = "Rewrite the user message into a concise search query for a company knowledge base. " +
	"Keep key nouns; remove chit-chat; no quotes; max ~12 words."

// fallbackAnswer covers the no-context case: never deflect, give the
// generic overview instead.
const fallbackAnswer = "Here's a quick overview: Corvox provides AI agents and assistants to help businesses " +
	"handle enquiries, capture leads, and automate routine tasks."

const lowConfidencePreamble = "The following materials may be loosely related; synthesize the best clear answer.\n\n"

func buildPrompt(context, question string) []llm.Message {
	user := fmt.Sprintf(
		"Context:\n%s\n\nQuestion:\n%s\n\nAnswer succinctly and professionally.",
		context, question,
	)
	return []llm.Message{
		{Role: "system", Content: systemStyle},
		{Role: "user", Content: user},
	}
}
