// Package search finds web resources for a project, optimizing the query
// against project context before calling the external search provider.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/hearthside/hearthside-ai/internal/service/jsonfix"
)

// MaxResults caps how many resources one search may return, regardless of
// what the caller asks for.
const MaxResults = 5

// Resource is a normalized search hit.
type Resource struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	IsVideo     bool     `json:"is_video"`
	VideoID     string   `json:"video_id,omitempty"`
	Relevance   float64  `json:"relevance"`
	PublishedAt string   `json:"published_at,omitempty"`
}

// Optimization records how the raw query was rewritten.
type Optimization struct {
	Original  string `json:"original"`
	Optimized string `json:"optimized"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Context carries project facts used to focus the query.
type Context struct {
	ProjectTitle       string
	ProjectGoal        string
	ProjectDescription string
	Materials          []string
	FocusAreas         []string
}

// Request is one search invocation.
type Request struct {
	Query        string
	ResourceType string // tutorial, inspiration, materials
	ContentType  string // video, visual, article, mixed
	NumResults   int
	Context      *Context
}

// Result is the adapter's answer. Zero hits is not an error: Success stays
// true and Suggestion proposes an alternate phrase.
type Result struct {
	Success      bool          `json:"success"`
	Resources    []Resource    `json:"resources"`
	Optimization *Optimization `json:"query_optimization,omitempty"`
	Suggestion   string        `json:"suggestion,omitempty"`
}

// Adapter optimizes queries with the chat model and searches the provider.
type Adapter struct {
	chatModel model.BaseChatModel
	provider  Provider
}

// NewAdapter creates the search adapter. chatModel may be nil, in which case
// queries are used unmodified.
func NewAdapter(chatModel model.BaseChatModel, provider Provider) *Adapter {
	return &Adapter{chatModel: chatModel, provider: provider}
}

// Search runs query optimization and the provider search, returning at most
// MaxResults normalized resources. Provider failures degrade to an empty
// result rather than an error.
func (a *Adapter) Search(ctx context.Context, req *Request) *Result {
	opt := a.optimizeQuery(ctx, req)

	limit := req.NumResults
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	// over-fetch so that filtering and dedup still fill the cap
	raw, err := a.provider.Search(ctx, &ProviderQuery{
		Query:        opt.Optimized,
		ResourceType: req.ResourceType,
		ContentType:  req.ContentType,
		NumResults:   limit * 2,
		Context:      req.Context,
	})
	if err != nil {
		log.Printf("Warning: web search failed: %v", err)
		raw = nil
	}

	resources := normalizeResults(raw, req, limit)

	result := &Result{
		Success:      true,
		Resources:    resources,
		Optimization: opt,
	}
	if len(resources) == 0 {
		result.Suggestion = alternatePhrase(req.Query)
	}
	return result
}

const optimizePrompt = `You are a search query expert for DIY home-improvement projects.
Rewrite the user's query into one focused web-search string, using the project
context when it sharpens the query. Respond with JSON only:
{"query": "<optimized search string>", "reasoning": "<one sentence>"}`

// optimizeQuery rewrites the raw query with the chat model, falling back to
// the raw query on any failure.
func (a *Adapter) optimizeQuery(ctx context.Context, req *Request) *Optimization {
	fallback := &Optimization{Original: req.Query, Optimized: req.Query}

	if a.chatModel == nil || strings.TrimSpace(req.Query) == "" {
		return fallback
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n", req.Query)
	if req.ResourceType != "" {
		fmt.Fprintf(&sb, "Looking for: %s\n", req.ResourceType)
	}
	if req.ContentType != "" {
		fmt.Fprintf(&sb, "Preferred content: %s\n", req.ContentType)
	}
	if c := req.Context; c != nil {
		if c.ProjectTitle != "" {
			fmt.Fprintf(&sb, "Project: %s\n", c.ProjectTitle)
		}
		if c.ProjectGoal != "" {
			fmt.Fprintf(&sb, "Goal: %s\n", c.ProjectGoal)
		}
		if c.ProjectDescription != "" {
			fmt.Fprintf(&sb, "Description: %s\n", c.ProjectDescription)
		}
		if len(c.Materials) > 0 {
			fmt.Fprintf(&sb, "Materials: %s\n", strings.Join(c.Materials, ", "))
		}
		if len(c.FocusAreas) > 0 {
			fmt.Fprintf(&sb, "Focus areas: %s\n", strings.Join(c.FocusAreas, ", "))
		}
	}

	messages := []*schema.Message{
		schema.SystemMessage(optimizePrompt),
		schema.UserMessage(sb.String()),
	}

	resp, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return fallback
	}

	var parsed struct {
		Query     string `json:"query"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(jsonfix.Repair(resp.Content)), &parsed); err != nil {
		return fallback
	}
	if strings.TrimSpace(parsed.Query) == "" {
		return fallback
	}

	return &Optimization{
		Original:  req.Query,
		Optimized: strings.TrimSpace(parsed.Query),
		Reasoning: strings.TrimSpace(parsed.Reasoning),
	}
}

// normalizeResults converts raw provider hits into the common resource shape,
// deduplicating by URL and clamping to limit. When the request asks for video
// content, video hits are ranked ahead of articles before the clamp.
func normalizeResults(raw []ProviderResult, req *Request, limit int) []Resource {
	resources := make([]Resource, 0, len(raw))
	seen := make(map[string]bool)

	for _, hit := range raw {
		if hit.URL == "" || seen[hit.URL] {
			continue
		}
		seen[hit.URL] = true

		videoID := ExtractVideoID(hit.URL)
		res := Resource{
			Title:   strings.TrimSpace(hit.Title),
			URL:     hit.URL,
			Source:  sourceFromURL(hit.URL),
			Excerpt: truncateExcerpt(hit.Description, 200),
			IsVideo: videoID != "",
			VideoID: videoID,
		}
		res.Difficulty = inferDifficulty(hit.Title + " " + hit.Description)
		res.Tags = buildTags(req, res.IsVideo)
		resources = append(resources, res)
	}

	if req.ContentType == "video" {
		sort.SliceStable(resources, func(i, j int) bool {
			return resources[i].IsVideo && !resources[j].IsVideo
		})
	}
	if len(resources) > limit {
		resources = resources[:limit]
	}
	for i := range resources {
		resources[i].Relevance = relevanceForRank(i)
	}
	return resources
}

var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([\w-]{6,})`),
	regexp.MustCompile(`(?:youtu\.be/)([\w-]{6,})`),
	regexp.MustCompile(`(?:youtube\.com/(?:embed|shorts)/)([\w-]{6,})`),
	regexp.MustCompile(`(?:vimeo\.com/)(\d{6,})`),
}

// ExtractVideoID pulls the video identifier out of common video-host URL
// shapes. Returns empty when the URL is not a recognized video page.
func ExtractVideoID(rawURL string) string {
	for _, pattern := range videoPatterns {
		if m := pattern.FindStringSubmatch(rawURL); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

func sourceFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func inferDifficulty(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "beginner") || strings.Contains(lower, "easy") || strings.Contains(lower, "simple"):
		return "beginner"
	case strings.Contains(lower, "advanced") || strings.Contains(lower, "expert") || strings.Contains(lower, "professional"):
		return "advanced"
	case strings.Contains(lower, "intermediate"):
		return "intermediate"
	}
	return ""
}

func buildTags(req *Request, isVideo bool) []string {
	tags := make([]string, 0, 3)
	if req.ResourceType != "" {
		tags = append(tags, req.ResourceType)
	}
	if req.ContentType != "" && req.ContentType != "mixed" {
		tags = append(tags, req.ContentType)
	}
	if isVideo && req.ContentType != "video" {
		tags = append(tags, "video")
	}
	return tags
}

// relevanceForRank maps result position to a descending score in [0.5, 1.0].
func relevanceForRank(rank int) float64 {
	score := 1.0 - float64(rank)*0.1
	if score < 0.5 {
		score = 0.5
	}
	return score
}

// truncateExcerpt clamps to maxLen runes so multibyte text never splits.
func truncateExcerpt(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// alternatePhrase proposes a different search phrasing for a query that
// returned nothing.
func alternatePhrase(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return "DIY home improvement ideas"
	}
	return fmt.Sprintf("how to %s step by step", strings.TrimPrefix(strings.ToLower(q), "how to "))
}
