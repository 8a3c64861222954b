package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------- web.fetch ---------------------

const WebFetchToolName = "web.fetch"

type webFetchTool struct{ host Host }

func newWebFetchTool(h Host) *webFetchTool { return &webFetchTool{host: h} }

func (t *webFetchTool) Spec() ToolSpec {
	return ToolSpec{
		Name:         WebFetchToolName,
		Description:  "Fetch an article URL and return up to 3000 characters of its text.",
		InputSchema:  json.RawMessage(`{"type":"object","properties":{"url":{"type":"string"}},"required":["url"]}`),
		OutputSchema: json.RawMessage(`{"type":"object","properties":{"url":{"type":"string"},"content":{"type":"string"}}}`),
	}
}

type webFetchInput struct {
	URL string `json:"url"`
}

type webFetchOutput struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

func (t *webFetchTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in webFetchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("web.fetch: %w", err)
	}
	if strings.TrimSpace(in.URL) == "" {
		return nil, fmt.Errorf("web.fetch: url required")
	}
	return json.Marshal(webFetchOutput{URL: in.URL, Content: t.host.Fetch.Fetch(ctx, in.URL)})
}
