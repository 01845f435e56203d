package agents

import (
	"fmt"
	"strings"
)

// buildGeneratePrompt assembles the generator prompt. Rejected attempts are
// appended verbatim so the model sees exactly what was wrong and who said so.
func buildGeneratePrompt(req GenerateRequest) string {
	var b strings.Builder

	if req.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n\n", req.Context)
	}
	fmt.Fprintf(&b, "Question: %s\n", req.Question)

	if req.CharLimit > 0 {
		fmt.Fprintf(&b, "\nKeep the answer under %d characters.\n", req.CharLimit)
	}

	if len(req.History) > 0 {
		b.WriteString("\nPREVIOUS ATTEMPTS AND FEEDBACK:\n")
		for _, h := range req.History {
			fmt.Fprintf(&b, "\nAttempt %d:\n", h.Attempt)
			fmt.Fprintf(&b, "Answer: %s\n", h.Answer)
			fmt.Fprintf(&b, "Rejected by: %s\n", h.RejectedBy)
			fmt.Fprintf(&b, "Reason: %s\n", h.Reason)
		}
		b.WriteString("\nAddress the feedback above in the new answer.\n")
	}

	return b.String()
}

// buildCheckPrompt asks for a VALID/INVALID verdict on a candidate answer.
func buildCheckPrompt(question, answer string) string {
	var b strings.Builder
	b.WriteString("You are reviewing an answer for factual accuracy and completeness.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "Answer: %s\n\n", answer)
	b.WriteString("Reply with the single word VALID if the answer is accurate and complete.\n")
	b.WriteString("Otherwise reply INVALID followed by a short reason.\n")
	return b.String()
}

// buildClassifyPrompt asks the model to map sheet headers onto the three
// roles, in the fixed reply format the caller parses.
func buildClassifyPrompt(headers []string, samples [][]string) string {
	var b strings.Builder
	b.WriteString("Classify the columns of a spreadsheet.\n\n")
	fmt.Fprintf(&b, "Headers: %s\n", strings.Join(headers, " | "))
	for i, row := range samples {
		fmt.Fprintf(&b, "Row %d: %s\n", i+1, strings.Join(row, " | "))
	}
	b.WriteString("\nIdentify which column holds the question, which holds the answer, ")
	b.WriteString("and which holds documentation links. Use NONE when no column fits.\n")
	b.WriteString("Reply with exactly three lines:\n")
	b.WriteString("Question Column: <header or NONE>\n")
	b.WriteString("Response Column: <header or NONE>\n")
	b.WriteString("Documentation Column: <header or NONE>\n")
	return b.String()
}

// ParseVerdict applies the checker contract: the reply must contain VALID and
// must not contain INVALID, case-insensitively. Anything else is a rejection
// and the full reply becomes the feedback.
func ParseVerdict(reply string) Verdict {
	upper := strings.ToUpper(reply)
	valid := strings.Contains(upper, "VALID") && !strings.Contains(upper, "INVALID")
	return Verdict{Valid: valid, Feedback: strings.TrimSpace(reply)}
}
