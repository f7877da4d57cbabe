package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	appmodel "github.com/hearthside/hearthside-ai/internal/model"
	"github.com/hearthside/hearthside-ai/internal/service/jsonfix"
)

// Intent categorizes what the user is asking for.
type Intent string

const (
	IntentResourceSearch  Intent = "resource-search"
	IntentGeneralGuidance Intent = "general-guidance"
	IntentWebpageSummary  Intent = "webpage-summary"
	IntentAddResources    Intent = "add-resources"
	IntentProjectPlanning Intent = "project-planning"
	IntentOffTopic        Intent = "off-topic"
)

func (i Intent) valid() bool {
	switch i {
	case IntentResourceSearch, IntentGeneralGuidance, IntentWebpageSummary,
		IntentAddResources, IntentProjectPlanning, IntentOffTopic:
		return true
	}
	return false
}

// Classification is the ephemeral result of intent classification. It steers
// prompt assembly and fallback synthesis and is never persisted on its own.
type Classification struct {
	Intent       Intent  `json:"intent"`
	ResourceType string  `json:"resource_type,omitempty"` // tutorial, inspiration, materials
	ContentType  string  `json:"content_type,omitempty"`  // video, visual, article, mixed
	NeedsSearch  bool    `json:"needs_search"`
	Query        string  `json:"query,omitempty"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning,omitempty"`
}

// defaultClassification is the safe degradation used whenever the provider
// call or the parse fails. Classification failure must never block the turn.
func defaultClassification() *Classification {
	return &Classification{
		Intent:      IntentGeneralGuidance,
		NeedsSearch: false,
		Confidence:  0.3,
		Reasoning:   "classification unavailable, defaulting to general guidance",
	}
}

const classifyPrompt = `You are an intent classifier for a DIY home-improvement project assistant.
Classify the user's latest message into EXACTLY ONE intent:

- resource-search: the user wants tutorials, inspiration or material resources from the web
- general-guidance: the user asks for advice or how-to help the assistant can answer directly
- webpage-summary: the user shares a URL and wants it analyzed or summarized
- add-resources: the user wants materials or checklist tasks generated for the project
- project-planning: the user wants help planning, sequencing or scoping the project
- off-topic: the message is unrelated to the project and to home improvement in general

Respond with JSON only:
{
  "intent": "<one of the six categories>",
  "resource_type": "tutorial" | "inspiration" | "materials" | "",
  "content_type": "video" | "visual" | "article" | "mixed" | "",
  "needs_search": true | false,
  "query": "<concrete search query if one is implied, else empty>",
  "confidence": <0.0-1.0>,
  "reasoning": "<one sentence>"
}`

// classify labels the user's message with an intent category and search
// parameters. It degrades to defaultClassification on any provider error.
func (s *Service) classify(ctx context.Context, message string, profile *ProjectProfile, history []*appmodel.ChatMessage) *Classification {
	if s.chatModel == nil {
		return defaultClassification()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s\n", profile.Title)
	if profile.Goal != "" {
		fmt.Fprintf(&sb, "Goal: %s\n", profile.Goal)
	}
	if profile.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", profile.Description)
	}
	fmt.Fprintf(&sb, "Resources: %d materials, %d checklist items, %d notes\n",
		len(profile.Materials), len(profile.ChecklistItems), len(profile.Notes))

	if recent := lastTurns(history, 6); len(recent) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, msg := range recent {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
		}
	}

	fmt.Fprintf(&sb, "\nUser message: %s\n", message)

	messages := []*schema.Message{
		schema.SystemMessage(classifyPrompt),
		schema.UserMessage(sb.String()),
	}

	resp, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return defaultClassification()
	}

	var c Classification
	if err := json.Unmarshal([]byte(jsonfix.Repair(resp.Content)), &c); err != nil {
		return defaultClassification()
	}
	if !c.Intent.valid() {
		return defaultClassification()
	}
	if c.Confidence < 0 {
		c.Confidence = 0
	}
	if c.Confidence > 1 {
		c.Confidence = 1
	}
	return &c
}

// lastTurns returns up to n of the most recent messages, oldest first.
func lastTurns(history []*appmodel.ChatMessage, n int) []*appmodel.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
