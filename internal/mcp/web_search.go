package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------- web.search ---------------------

const WebSearchToolName = "web.search"

type webSearchTool struct{ host Host }

func newWebSearchTool(h Host) *webSearchTool { return &webSearchTool{host: h} }

func (t *webSearchTool) Spec() ToolSpec {
	return ToolSpec{
		Name:         WebSearchToolName,
		Description:  "Search the web with DuckDuckGo and return the top result URLs.",
		InputSchema:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`),
		OutputSchema: json.RawMessage(`{"type":"object","properties":{"urls":{"type":"array","items":{"type":"string"}}}}`),
	}
}

type webSearchInput struct {
	Query string `json:"query"`
}

type webSearchOutput struct {
	URLs []string `json:"urls"`
}

func (t *webSearchTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in webSearchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("web.search: %w", err)
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("web.search: query required")
	}
	return json.Marshal(webSearchOutput{URLs: t.host.Search.Search(ctx, in.Query)})
}
