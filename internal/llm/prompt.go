package llm

import (
	"fmt"
	"strings"
)

// paragraphInstruction forces single-paragraph replies. Backends do not
// always obey it, so CleanResponse strips residual list punctuation too.
const paragraphInstruction = "IMPORTANT: Respond in paragraph format ONLY. " +
	"Never use bullet points, dashes, numbers, or any list formatting. " +
	"Use complete sentences in a single cohesive paragraph."

// BuildPrompt wraps a user query with the paragraph-only instruction
func BuildPrompt(query string) string {
	return fmt.Sprintf("%s Query: %s\n\nResponse:", paragraphInstruction, query)
}

// CleanResponse removes bullet glyphs and leading dash markers the backend
// may have produced despite the instruction
func CleanResponse(text string) string {
	text = strings.ReplaceAll(text, "•", "")
	text = strings.ReplaceAll(text, "- ", "")
	return strings.TrimSpace(text)
}
