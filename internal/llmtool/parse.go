package llmtool

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionEnvelope describes the tool-loop action response from the LLM.
type ActionEnvelope struct {
	Action    string          `json:"action,omitempty"`
	ToolName  string          `json:"tool_name,omitempty"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`
	Final     json.RawMessage `json:"final,omitempty"`
}

// ParseAction parses the LLM response into an action envelope.
func ParseAction(raw json.RawMessage) (ActionEnvelope, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return ActionEnvelope{}, fmt.Errorf("llmtool: empty response")
	}
	// A bare string or array is a direct answer.
	if trimmed[0] != '{' {
		if !json.Valid([]byte(trimmed)) {
			return ActionEnvelope{}, fmt.Errorf("llmtool: response is not JSON")
		}
		return ActionEnvelope{Action: "final", Final: json.RawMessage(trimmed)}, nil
	}
	var env ActionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ActionEnvelope{}, err
	}
	// No envelope fields: treat the whole object as the final output.
	if env.Action == "" && env.ToolName == "" && len(env.Final) == 0 {
		env.Action = "final"
		env.Final = raw
	}

	if env.Action == "" {
		switch {
		case len(env.Final) > 0:
			env.Action = "final"
		case env.ToolName != "" || len(env.ToolInput) > 0:
			env.Action = "tool"
		}
	}
	switch env.Action {
	case "final", "tool":
		return env, nil
	default:
		return ActionEnvelope{}, fmt.Errorf("llmtool: invalid action %q", env.Action)
	}
}

// FinalText extracts the human-readable answer from a final payload.
// Accepted shapes: "text", {"answer": "text"}, {"result": "text"}.
// Anything else is returned as indented JSON.
func FinalText(final json.RawMessage) string {
	trimmed := strings.TrimSpace(string(final))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(final, &s); err == nil {
		return s
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(final, &obj); err == nil {
		for _, key := range []string{"answer", "result", "output", "text"} {
			if v, ok := obj[key]; ok {
				if err := json.Unmarshal(v, &s); err == nil {
					return s
				}
			}
		}
	}
	var v any
	if err := json.Unmarshal(final, &v); err == nil {
		if b, err := json.MarshalIndent(v, "", "  "); err == nil {
			return string(b)
		}
	}
	return trimmed
}
