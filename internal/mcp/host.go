package mcp

import "context"

// Searcher runs a web search and returns result URLs (or error text).
type Searcher interface {
	Search(ctx context.Context, query string) []string
}

// Fetcher downloads one page and returns its text (or error text).
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

// Host wires the research backends the tools call into.
type Host struct {
	Search Searcher
	Fetch  Fetcher
}

// RegisterDefaultTools installs the default tool set into a registry.
// Tools whose backend is missing are skipped.
func RegisterDefaultTools(r *Registry, h Host) {
	if r == nil {
		return
	}
	if h.Search != nil {
		r.Register(newWebSearchTool(h))
	}
	if h.Fetch != nil {
		r.Register(newWebFetchTool(h))
	}
}
