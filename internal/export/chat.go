package export

import (
	"fmt"
	"strings"
)

// QA is one follow-up question and its answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChatLog renders the history as numbered "**Qn:**"/"**An:**" pairs
// separated by blank lines.
func ChatLog(history []QA) string {
	parts := make([]string, 0, len(history))
	for i, qa := range history {
		n := i + 1
		parts = append(parts, fmt.Sprintf("**Q%d:** %s\n**A%d:** %s", n, qa.Question, n, qa.Answer))
	}
	return strings.Join(parts, "\n\n")
}
