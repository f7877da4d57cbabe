package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino/components/tool"
)

// ProviderQuery is one outbound provider call: the query plus the resource
// and content hints and the project context. Backends that cannot use a
// field ignore it, but the hints always reach the provider, so content-type
// awareness survives even when query optimization is unavailable.
type ProviderQuery struct {
	Query        string
	ResourceType string
	ContentType  string
	NumResults   int
	Context      *Context
}

// Provider is an external web-search backend.
type Provider interface {
	Search(ctx context.Context, q *ProviderQuery) ([]ProviderResult, error)
}

// ProviderResult is one raw hit from the search backend.
type ProviderResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// NewDuckDuckGoProvider builds the default provider on top of the eino-ext
// DuckDuckGo text search tool. Returns a stub that always fails gracefully
// when the tool cannot be constructed.
func NewDuckDuckGoProvider(ctx context.Context, maxResults int) Provider {
	if maxResults <= 0 {
		maxResults = 10
	}
	searchTool, err := duckduckgo.NewTextSearchTool(ctx, &duckduckgo.Config{
		ToolName:   "web_search",
		ToolDesc:   "Search the web for DIY and home-improvement resources.",
		MaxResults: maxResults,
	})
	if err != nil {
		log.Printf("Warning: failed to create duckduckgo search tool: %v", err)
		return &stubProvider{}
	}
	return &ddgProvider{tool: searchTool}
}

// ddgProvider adapts the eino-ext DuckDuckGo tool to the Provider interface.
// DuckDuckGo only accepts query text, so the resource and content hints are
// folded into the query deterministically.
type ddgProvider struct {
	tool tool.InvokableTool
}

func (p *ddgProvider) Search(ctx context.Context, q *ProviderQuery) ([]ProviderResult, error) {
	args, err := json.Marshal(map[string]interface{}{"query": queryWithHints(q)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search arguments: %w", err)
	}

	out, err := p.tool.InvokableRun(ctx, string(args))
	if err != nil {
		return nil, fmt.Errorf("search provider failed: %w", err)
	}

	results := parseProviderOutput(out)
	if q.NumResults > 0 && len(results) > q.NumResults {
		results = results[:q.NumResults]
	}
	return results, nil
}

// queryWithHints appends the resource and content hint terms to the query
// text, skipping terms the query already carries.
func queryWithHints(q *ProviderQuery) string {
	terms := make([]string, 0, 2)
	switch q.ResourceType {
	case "tutorial":
		terms = append(terms, "tutorial")
	case "inspiration":
		terms = append(terms, "inspiration ideas")
	case "materials":
		terms = append(terms, "materials")
	}
	switch q.ContentType {
	case "video":
		terms = append(terms, "video")
	case "visual":
		terms = append(terms, "photos")
	}

	text := q.Query
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, strings.Fields(term)[0]) {
			continue
		}
		text += " " + term
	}
	return text
}

// parseProviderOutput extracts result entries from the tool's JSON output.
// The tool output shape is not part of our contract, so the parse walks the
// document generically and picks up title/url/description style fields.
func parseProviderOutput(out string) []ProviderResult {
	var doc interface{}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		return nil
	}

	var results []ProviderResult
	collectResults(doc, &results)
	return results
}

func collectResults(node interface{}, results *[]ProviderResult) {
	switch v := node.(type) {
	case []interface{}:
		for _, item := range v {
			collectResults(item, results)
		}
	case map[string]interface{}:
		url := stringField(v, "url", "link", "href")
		if url != "" {
			*results = append(*results, ProviderResult{
				Title:       stringField(v, "title", "name"),
				URL:         url,
				Description: stringField(v, "description", "snippet", "body", "summary"),
			})
			return
		}
		for _, item := range v {
			collectResults(item, results)
		}
	}
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// stubProvider stands in when no real backend is available.
type stubProvider struct{}

func (p *stubProvider) Search(ctx context.Context, q *ProviderQuery) ([]ProviderResult, error) {
	return nil, fmt.Errorf("web search is not available")
}
