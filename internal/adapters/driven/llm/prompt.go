// Package llm holds prompt construction shared by the answer-generation
// backends.
package llm

import "strings"

// AnswerMaxTokens bounds the generated answer length across backends.
const AnswerMaxTokens = 150

// AnswerPrompt renders the grounded question-answering prompt. The model
// is instructed to answer only from the retrieved snippets.
func AnswerPrompt(query string, snippets []string) string {
	var b strings.Builder
	b.WriteString("Answer based on the following query and retrieved relevant info:\n\n")
	b.WriteString("Query: ")
	b.WriteString(query)
	b.WriteString("\n\nRelevant Info: ")
	b.WriteString(strings.Join(snippets, "\n"))
	b.WriteString("\n\nPlease provide a concise and accurate answer based only on the provided information.")
	return b.String()
}
