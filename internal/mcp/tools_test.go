package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct{ queries []string }

func (s *stubSearcher) Search(_ context.Context, query string) []string {
	s.queries = append(s.queries, query)
	return []string{"https://a.example", "https://b.example"}
}

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, url string) string { return "text of " + url }

func TestRegisterDefaultTools(t *testing.T) {
	r := NewRegistry()
	RegisterDefaultTools(r, Host{Search: &stubSearcher{}, Fetch: stubFetcher{}})

	specs := r.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, WebFetchToolName, specs[0].Name)
	assert.Equal(t, WebSearchToolName, specs[1].Name)
}

func TestRegisterDefaultTools_SkipsMissingBackends(t *testing.T) {
	r := NewRegistry()
	RegisterDefaultTools(r, Host{Fetch: stubFetcher{}})
	specs := r.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, WebFetchToolName, specs[0].Name)
}

func TestWebSearchTool(t *testing.T) {
	s := &stubSearcher{}
	r := NewRegistry()
	RegisterDefaultTools(r, Host{Search: s, Fetch: stubFetcher{}})

	raw, err := r.Call(context.Background(), WebSearchToolName, json.RawMessage(`{"query":"lisbon food"}`))
	require.NoError(t, err)
	var out webSearchOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, out.URLs)
	assert.Equal(t, []string{"lisbon food"}, s.queries)

	_, err = r.Call(context.Background(), WebSearchToolName, json.RawMessage(`{"query":" "}`))
	assert.Error(t, err)
}

func TestWebFetchTool(t *testing.T) {
	r := NewRegistry()
	RegisterDefaultTools(r, Host{Search: &stubSearcher{}, Fetch: stubFetcher{}})

	raw, err := r.Call(context.Background(), WebFetchToolName, json.RawMessage(`{"url":"https://a.example"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://a.example","content":"text of https://a.example"}`, string(raw))

	_, err = r.Call(context.Background(), WebFetchToolName, json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestRegistry_UnknownTool(t *testing.T) {
	_, err := NewRegistry().Call(context.Background(), "fs.read", nil)
	assert.EqualError(t, err, `mcp: unknown tool "fs.read"`)

	var nilReg *Registry
	_, err = nilReg.Call(context.Background(), "x", nil)
	assert.Error(t, err)
	assert.Nil(t, nilReg.Specs())
}
