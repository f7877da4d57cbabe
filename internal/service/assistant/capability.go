package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/hearthside/hearthside-ai/internal/service/jsonfix"
	"github.com/hearthside/hearthside-ai/internal/service/search"
)

// Capability identifies one of the tools the assistant may invoke. The set is
// closed; a tool name outside it is never dispatched.
type Capability string

const (
	CapGenerateMaterials  Capability = "generate_materials"
	CapGenerateChecklist  Capability = "generate_checklist"
	CapSearchWebResources Capability = "search_web_resources"
	CapSummarizeWebpage   Capability = "summarize_webpage"
	CapSummarizeNotes     Capability = "summarize_notes"
)

// ParseCapability maps a tool name to its capability. ok is false for any
// name outside the closed set.
func ParseCapability(name string) (Capability, bool) {
	switch Capability(name) {
	case CapGenerateMaterials, CapGenerateChecklist, CapSearchWebResources,
		CapSummarizeWebpage, CapSummarizeNotes:
		return Capability(name), true
	}
	return "", false
}

// MaterialSuggestion is one proposed material. It is returned to the user for
// review and never written to the project by the engine.
type MaterialSuggestion struct {
	Name           string    `json:"name"`
	Quantity       string    `json:"quantity,omitempty"`
	EstimatedPrice flexPrice `json:"estimated_price,omitempty"`
	Category       string    `json:"category,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

// ChecklistSuggestion is one proposed task, ordered for presentation.
type ChecklistSuggestion struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Order         int    `json:"order"`
	EstimatedTime string `json:"estimated_time,omitempty"`
	Difficulty    string `json:"difficulty,omitempty"`
}

// flexPrice tolerates providers emitting prices as numbers or as strings
// with currency noise ("$12.99", "about 15").
type flexPrice float64

func (p *flexPrice) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = flexPrice(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("price must be a number or string")
	}
	cleaned := strings.TrimFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if cleaned == "" {
		*p = 0
		return nil
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		*p = 0
		return nil
	}
	*p = flexPrice(n)
	return nil
}

func (p flexPrice) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(p))
}

// WebpageSummary is the structured extraction of a shared webpage.
type WebpageSummary struct {
	Title        string   `json:"title,omitempty"`
	Summary      string   `json:"summary"`
	Techniques   []string `json:"techniques,omitempty"`
	Materials    []string `json:"materials,omitempty"`
	Steps        []string `json:"steps,omitempty"`
	Tips         []string `json:"tips,omitempty"`
	SafetyNotes  []string `json:"safety_notes,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	TimeEstimate string   `json:"time_estimate,omitempty"`
}

// ToolResult is the uniform outcome of one capability dispatch. A failed
// dispatch still produces a result; the failure is carried in Error.
type ToolResult struct {
	Success      bool                  `json:"success"`
	Message      string                `json:"message,omitempty"`
	Materials    []MaterialSuggestion  `json:"materials,omitempty"`
	Checklist    []ChecklistSuggestion `json:"checklist,omitempty"`
	Resources    []search.Resource     `json:"resources,omitempty"`
	Optimization *search.Optimization  `json:"query_optimization,omitempty"`
	Webpage      *WebpageSummary       `json:"webpage,omitempty"`
	Suggestion   string                `json:"suggestion,omitempty"`
	Error        string                `json:"error,omitempty"`
}

func failedResult(format string, args ...any) *ToolResult {
	return &ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// ToolInvocation records one dispatched tool call of a turn.
type ToolInvocation struct {
	Capability Capability      `json:"capability"`
	Arguments  json.RawMessage `json:"arguments"`
	Result     *ToolResult     `json:"result"`
}

// catalogToolInfos describes the closed capability set to the tool-calling
// model. The generator tools take the generated items as arguments; the
// handler validates and normalizes rather than generating.
func catalogToolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: string(CapGenerateMaterials),
			Desc: "Propose materials for the project. Suggestions only; the user decides what to add.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"materials": {
					Type:     schema.Array,
					Desc:     "The proposed materials",
					Required: true,
					ElemInfo: &schema.ParameterInfo{
						Type: schema.Object,
						SubParams: map[string]*schema.ParameterInfo{
							"name":            {Type: schema.String, Desc: "Material name", Required: true},
							"quantity":        {Type: schema.String, Desc: "How much is needed, e.g. '8 boards'"},
							"estimated_price": {Type: schema.Number, Desc: "Estimated price in dollars"},
							"category":        {Type: schema.String, Desc: "Category, e.g. lumber, hardware, paint"},
							"notes":           {Type: schema.String, Desc: "Buying advice"},
						},
					},
				},
			}),
		},
		{
			Name: string(CapGenerateChecklist),
			Desc: "Propose an ordered task checklist for the project. Suggestions only; the user decides what to add.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"tasks": {
					Type:     schema.Array,
					Desc:     "The proposed tasks in execution order",
					Required: true,
					ElemInfo: &schema.ParameterInfo{
						Type: schema.Object,
						SubParams: map[string]*schema.ParameterInfo{
							"title":          {Type: schema.String, Desc: "Task title", Required: true},
							"description":    {Type: schema.String, Desc: "What the task involves"},
							"order":          {Type: schema.Integer, Desc: "Position in the sequence, starting at 1"},
							"estimated_time": {Type: schema.String, Desc: "Rough time estimate, e.g. '2 hours'"},
							"difficulty":     {Type: schema.String, Desc: "beginner, intermediate or advanced"},
						},
					},
				},
			}),
		},
		{
			Name: string(CapSearchWebResources),
			Desc: "Search the web for tutorials, inspiration or material resources relevant to the project.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "The search query",
					Required: true,
				},
				"resource_type": {
					Type: schema.String,
					Desc: "tutorial, inspiration or materials",
				},
				"content_type": {
					Type: schema.String,
					Desc: "video, visual, article or mixed",
				},
				"num_results": {
					Type: schema.Integer,
					Desc: "How many results to return (max 5)",
				},
			}),
		},
		{
			Name: string(CapSummarizeWebpage),
			Desc: "Fetch a webpage the user shared and extract its techniques, materials, steps and safety notes.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"url": {
					Type:     schema.String,
					Desc:     "The webpage URL",
					Required: true,
				},
			}),
		},
		{
			Name: string(CapSummarizeNotes),
			Desc: "Summarize the notes saved on the project.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"focus": {
					Type: schema.String,
					Desc: "Optional aspect to focus the summary on",
				},
			}),
		},
	}
}

// dispatcher routes capability invocations to their handlers.
type dispatcher struct {
	searcher   ResourceSearcher
	chatModel  model.BaseChatModel
	httpClient *http.Client
}

func newDispatcher(searcher ResourceSearcher, chatModel model.BaseChatModel) *dispatcher {
	return &dispatcher{
		searcher:  searcher,
		chatModel: chatModel,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Dispatch runs one capability. A handler failure, including a panic, is
// converted into a failed ToolResult so the orchestration loop keeps going.
func (d *dispatcher) Dispatch(ctx context.Context, cap Capability, args json.RawMessage, profile *ProjectProfile) (result *ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: tool %s panicked: %v", cap, r)
			result = failedResult("tool %s failed unexpectedly", cap)
		}
	}()

	switch cap {
	case CapGenerateMaterials:
		return d.generateMaterials(args)
	case CapGenerateChecklist:
		return d.generateChecklist(args)
	case CapSearchWebResources:
		return d.searchWebResources(ctx, args, profile)
	case CapSummarizeWebpage:
		return d.summarizeWebpage(ctx, args)
	case CapSummarizeNotes:
		return d.summarizeNotes(ctx, args, profile)
	}
	return failedResult("unknown capability %q", cap)
}

// generateMaterials validates the model-proposed materials and returns them
// as suggestions. It never writes to the project.
func (d *dispatcher) generateMaterials(args json.RawMessage) *ToolResult {
	var params struct {
		Materials []MaterialSuggestion `json:"materials"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return failedResult("invalid arguments: %v", err)
	}

	materials := params.Materials[:0]
	for _, m := range params.Materials {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			continue
		}
		materials = append(materials, m)
	}
	if len(materials) == 0 {
		return failedResult("no usable materials supplied")
	}

	return &ToolResult{
		Success:   true,
		Message:   fmt.Sprintf("Suggested %d materials for review", len(materials)),
		Materials: materials,
	}
}

// generateChecklist validates the model-proposed tasks, keeping supplied
// order values and filling in the gaps by position.
func (d *dispatcher) generateChecklist(args json.RawMessage) *ToolResult {
	var params struct {
		Tasks []ChecklistSuggestion `json:"tasks"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return failedResult("invalid arguments: %v", err)
	}

	tasks := params.Tasks[:0]
	for _, task := range params.Tasks {
		task.Title = strings.TrimSpace(task.Title)
		if task.Title == "" {
			continue
		}
		tasks = append(tasks, task)
	}
	if len(tasks) == 0 {
		return failedResult("no usable tasks supplied")
	}
	for i := range tasks {
		if tasks[i].Order <= 0 {
			tasks[i].Order = i + 1
		}
	}

	return &ToolResult{
		Success:   true,
		Message:   fmt.Sprintf("Suggested %d tasks for review", len(tasks)),
		Checklist: tasks,
	}
}

func (d *dispatcher) searchWebResources(ctx context.Context, args json.RawMessage, profile *ProjectProfile) *ToolResult {
	if d.searcher == nil {
		return failedResult("web search is unavailable")
	}

	var params struct {
		Query        string `json:"query"`
		ResourceType string `json:"resource_type"`
		ContentType  string `json:"content_type"`
		NumResults   int    `json:"num_results"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return failedResult("invalid arguments: %v", err)
		}
	}
	if strings.TrimSpace(params.Query) == "" {
		return failedResult("query is required")
	}

	result := d.searcher.Search(ctx, &search.Request{
		Query:        params.Query,
		ResourceType: params.ResourceType,
		ContentType:  params.ContentType,
		NumResults:   params.NumResults,
		Context:      searchContext(profile),
	})

	return &ToolResult{
		Success:      true,
		Message:      fmt.Sprintf("Found %d resources", len(result.Resources)),
		Resources:    result.Resources,
		Optimization: result.Optimization,
		Suggestion:   result.Suggestion,
	}
}

// searchContext projects the profile into the adapter's context shape.
func searchContext(profile *ProjectProfile) *search.Context {
	c := &search.Context{
		ProjectTitle:       profile.Title,
		ProjectGoal:        profile.Goal,
		ProjectDescription: profile.Description,
		Materials:          profile.Materials,
	}
	if profile.Interview != nil {
		c.FocusAreas = profile.Interview.FocusAreas
	}
	return c
}

const webpagePrompt = `You are a DIY home-improvement expert. Extract what matters from the
webpage text below. Respond with JSON only:
{
  "title": "...",
  "summary": "...",
  "techniques": ["..."],
  "materials": ["..."],
  "steps": ["..."],
  "tips": ["..."],
  "safety_notes": ["..."],
  "difficulty": "beginner" | "intermediate" | "advanced" | "",
  "time_estimate": "..."
}`

func (d *dispatcher) summarizeWebpage(ctx context.Context, args json.RawMessage) *ToolResult {
	if d.chatModel == nil {
		return failedResult("webpage summarization is unavailable")
	}

	var params struct {
		URL string `json:"url"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return failedResult("invalid arguments: %v", err)
		}
	}
	if strings.TrimSpace(params.URL) == "" {
		return failedResult("url is required")
	}

	text, err := d.fetchPageText(ctx, params.URL)
	if err != nil {
		return failedResult("could not fetch %s: %v", params.URL, err)
	}

	resp, err := d.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(webpagePrompt),
		schema.UserMessage(fmt.Sprintf("URL: %s\n\n%s", params.URL, text)),
	})
	if err != nil {
		return failedResult("webpage summarization failed: %v", err)
	}

	var summary WebpageSummary
	if err := json.Unmarshal([]byte(jsonfix.Repair(resp.Content)), &summary); err != nil {
		return failedResult("could not parse webpage summary: %v", err)
	}

	return &ToolResult{
		Success: true,
		Message: formatWebpageSummary(&summary),
		Webpage: &summary,
	}
}

// formatWebpageSummary renders the extraction as one text block. The block is
// a suggestion for the user; nothing is persisted from it.
func formatWebpageSummary(s *WebpageSummary) string {
	var sb strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&sb, "**%s**\n\n", s.Title)
	}
	sb.WriteString(s.Summary)

	writeSection := func(heading string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n\n%s:\n", heading)
		for _, item := range items {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
	}
	writeSection("Techniques", s.Techniques)
	writeSection("Materials mentioned", s.Materials)
	writeSection("Steps", s.Steps)
	writeSection("Tips", s.Tips)
	writeSection("Safety", s.SafetyNotes)

	if s.Difficulty != "" || s.TimeEstimate != "" {
		sb.WriteString("\n")
		if s.Difficulty != "" {
			fmt.Fprintf(&sb, "\nDifficulty: %s", s.Difficulty)
		}
		if s.TimeEstimate != "" {
			fmt.Fprintf(&sb, "\nTime estimate: %s", s.TimeEstimate)
		}
	}
	return strings.TrimSpace(sb.String())
}

// pageTextLimit bounds how much page text is passed to the model.
const pageTextLimit = 8000

var (
	scriptRe = regexp.MustCompile(`(?is)<(?:script|style|noscript)[^>]*>.*?</(?:script|style|noscript)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

func (d *dispatcher) fetchPageText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "hearthside-ai/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", err
	}

	text := scriptRe.ReplaceAllString(string(body), " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) > pageTextLimit {
		text = string(runes[:pageTextLimit])
	}
	if text == "" {
		return "", fmt.Errorf("page had no readable text")
	}
	return text, nil
}

const notesPrompt = `You are a DIY home-improvement assistant. Summarize the user's project
notes. Respond with JSON only:
{"summary": "...", "key_points": ["..."], "recommendations": ["..."]}`

func (d *dispatcher) summarizeNotes(ctx context.Context, args json.RawMessage, profile *ProjectProfile) *ToolResult {
	if len(profile.Notes) == 0 {
		return &ToolResult{
			Success: true,
			Message: "There are no notes on this project yet.",
		}
	}

	var params struct {
		Focus string `json:"focus"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return failedResult("invalid arguments: %v", err)
		}
	}

	if d.chatModel == nil {
		return &ToolResult{
			Success: true,
			Message: fmt.Sprintf("The project has %d notes:\n%s", len(profile.Notes), strings.Join(profile.Notes, "\n")),
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s\n", profile.Title)
	if params.Focus != "" {
		fmt.Fprintf(&sb, "Focus on: %s\n", params.Focus)
	}
	sb.WriteString("Notes:\n")
	for i, note := range profile.Notes {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, note)
	}

	resp, err := d.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(notesPrompt),
		schema.UserMessage(sb.String()),
	})
	if err != nil {
		return failedResult("note summarization failed: %v", err)
	}

	var parsed struct {
		Summary         string   `json:"summary"`
		KeyPoints       []string `json:"key_points"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(jsonfix.Repair(resp.Content)), &parsed); err != nil {
		return failedResult("could not parse note summary: %v", err)
	}

	var out strings.Builder
	out.WriteString(parsed.Summary)
	if len(parsed.KeyPoints) > 0 {
		out.WriteString("\n\nKey points:\n")
		for _, p := range parsed.KeyPoints {
			fmt.Fprintf(&out, "- %s\n", p)
		}
	}
	if len(parsed.Recommendations) > 0 {
		out.WriteString("\nRecommendations:\n")
		for _, r := range parsed.Recommendations {
			fmt.Fprintf(&out, "- %s\n", r)
		}
	}

	return &ToolResult{
		Success: true,
		Message: strings.TrimSpace(out.String()),
	}
}
