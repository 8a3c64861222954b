package crew

import (
	"fmt"
	"strings"
)

// Task is one templated instruction bound to an agent.
//
// Context selects which earlier outputs the agent sees: nil means every
// task that ran before this one, a non-nil empty slice means none.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          *Agent
	Context        []*Task
}

// TaskOutput is the result of running one task.
type TaskOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Agent       string `json:"agent"`
	Raw         string `json:"raw"`
}

// Render fills the description and expected output from inputs.
func (t *Task) Render(inputs map[string]string) (description, expected string, err error) {
	description, err = Interpolate(t.Description, inputs)
	if err != nil {
		return "", "", fmt.Errorf("task %q description: %w", t.Name, err)
	}
	expected, err = Interpolate(t.ExpectedOutput, inputs)
	if err != nil {
		return "", "", fmt.Errorf("task %q expected output: %w", t.Name, err)
	}
	return description, expected, nil
}

func (t *Task) validate() error {
	if t == nil {
		return fmt.Errorf("crew: nil task")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("crew: task name is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("crew: task %q has no description", t.Name)
	}
	if t.Agent == nil {
		return fmt.Errorf("crew: task %q has no agent", t.Name)
	}
	return nil
}

const contextSeparator = "\n\n----------\n\n"

func aggregateRaw(outputs []TaskOutput) string {
	parts := make([]string, 0, len(outputs))
	for _, o := range outputs {
		parts = append(parts, o.Raw)
	}
	return strings.Join(parts, contextSeparator)
}
