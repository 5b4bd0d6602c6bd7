package rag

import (
	"fmt"
	"strings"
)

// noContextAnswer is returned without invoking the model when search finds
// no usable contexts.
const noContextAnswer = "I could not find any indexed content relevant to this question."

// buildPrompt assembles the retrieved contexts and the question into a
// single instruction. The model is told to answer only from the supplied
// context, never from its own knowledge.
func buildPrompt(question string, contexts []string) string {
	var b strings.Builder

	b.WriteString("Answer the question using only the context below. ")
	b.WriteString("If the context does not contain enough information to answer, say so instead of guessing.\n\n")
	b.WriteString("Context:\n")
	for i, context := range contexts {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, context)
	}
	fmt.Fprintf(&b, "Question: %s\n", question)

	return b.String()
}
