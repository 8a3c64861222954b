package llmtool

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"tripplanner/internal/mcp"
)

// PromptField describes a single output field in a simple schema.
type PromptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// StructuredPromptSpec defines the sections for a structured prompt.
type StructuredPromptSpec struct {
	Persona      string
	Purpose      string
	Plan         string
	Context      string
	OutputFields []PromptField
	Constraints  []string
	Rules        []string
	OutputFormat string
	Language     string
}

const toolProtocol = `Reply with exactly one JSON object per turn.
To call a tool: {"action":"tool","tool_name":"<name>","tool_input":{...}}
To finish:      {"action":"final","final":{<OUTPUT fields>}}
Tool outputs from earlier turns appear under TOOL_RESULTS.`

// StructuredPromptBuilder renders a structured prompt including tool specs and tool results.
// The TOOLS and TOOL_PROTOCOL sections are omitted when no tools are available.
func StructuredPromptBuilder(spec StructuredPromptSpec) PromptBuilder {
	return func(_ context.Context, state *ToolState, tools []mcp.ToolSpec) (string, error) {
		if strings.TrimSpace(spec.Purpose) == "" {
			return "", fmt.Errorf("llmtool: purpose is empty")
		}
		if len(spec.OutputFields) == 0 {
			return "", fmt.Errorf("llmtool: output fields are empty")
		}

		var buf bytes.Buffer
		writeSection(&buf, "PERSONA", spec.Persona)
		writeSection(&buf, "PURPOSE", spec.Purpose)
		writeSection(&buf, "PLAN", spec.Plan)
		writeSection(&buf, "CONTEXT", spec.Context)
		writeSection(&buf, "OUTPUT", formatFields(spec.OutputFields))
		writeSection(&buf, "CONSTRAINTS", formatList(spec.Constraints))
		writeSection(&buf, "RULES", formatList(spec.Rules))
		writeSection(&buf, "OUTPUT_FORMAT", spec.OutputFormat)
		writeSection(&buf, "LANGUAGE", spec.Language)
		if len(tools) > 0 {
			writeSection(&buf, "TOOL_PROTOCOL", toolProtocol)
			writeSection(&buf, "TOOLS", FormatToolSpecs(tools))
		}
		if state != nil && len(state.ToolResults) > 0 {
			writeSection(&buf, "TOOL_RESULTS", FormatToolResults(state.ToolResults))
		}

		return strings.TrimSpace(buf.String()) + "\n", nil
	}
}

func formatFields(fields []PromptField) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		req := "optional"
		if f.Required {
			req = "required"
		}
		if f.Description != "" {
			fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", name, f.Type, req, f.Description)
		} else {
			fmt.Fprintf(&buf, "- %s (%s, %s)\n", name, f.Type, req)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
