package llmtool

import (
	"bytes"
	"encoding/json"

	"tripplanner/internal/mcp"
)

// FormatToolSpecs renders the tool specs as a JSON array for the TOOLS section.
func FormatToolSpecs(tools []mcp.ToolSpec) string {
	if tools == nil {
		tools = []mcp.ToolSpec{}
	}
	return jsonBlock(tools)
}

// FormatToolResults renders earlier tool calls as a JSON array. The crew
// also uses it to hand gathered research to a forced final answer.
func FormatToolResults(results []ToolResult) string {
	if results == nil {
		results = []ToolResult{}
	}
	return jsonBlock(results)
}

// jsonBlock keeps URLs and markdown readable: no HTML escaping.
func jsonBlock(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "[]\n"
	}
	return buf.String()
}
