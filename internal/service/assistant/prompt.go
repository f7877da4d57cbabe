package assistant

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	appmodel "github.com/hearthside/hearthside-ai/internal/model"
)

// contextWindow is the number of prior messages included in the prompt.
const contextWindow = 20

// assemblePrompt deterministically builds the instruction plus the ordered
// message list: system instruction, windowed history, new user message.
func assemblePrompt(profile *ProjectProfile, classification *Classification, history []*appmodel.ChatMessage, message string) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(buildInstruction(profile, classification)))

	for _, msg := range history {
		switch msg.Role {
		case RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(msg.Content))
		}
	}

	messages = append(messages, schema.UserMessage(message))
	return messages
}

// buildInstruction renders the system instruction from project facts, prior
// interview context, and the intent-specific directive block.
func buildInstruction(profile *ProjectProfile, classification *Classification) string {
	var sb strings.Builder

	sb.WriteString("You are Hearthside, a friendly and practical DIY home-improvement assistant. ")
	sb.WriteString("You help the user plan and execute their project with concrete, safe, step-by-step advice.\n\n")

	sb.WriteString("## Project\n")
	fmt.Fprintf(&sb, "Title: %s\n", profile.Title)
	if profile.Goal != "" {
		fmt.Fprintf(&sb, "Goal: %s\n", profile.Goal)
	}
	if profile.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", profile.Description)
	}
	if len(profile.Materials) > 0 {
		fmt.Fprintf(&sb, "Materials (%d): %s\n", len(profile.Materials), strings.Join(profile.Materials, ", "))
	}
	if len(profile.ChecklistItems) > 0 {
		fmt.Fprintf(&sb, "Checklist (%d): %s\n", len(profile.ChecklistItems), strings.Join(profile.ChecklistItems, "; "))
	}
	fmt.Fprintf(&sb, "Notes on file: %d\n", len(profile.Notes))

	sb.WriteString("\n## Project interview\n")
	if iv := profile.Interview; iv != nil && len(iv.Answers) > 0 {
		for _, qa := range iv.Answers {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", qa.Question, qa.Answer)
		}
		if len(iv.FocusAreas) > 0 {
			fmt.Fprintf(&sb, "Focus areas: %s\n", strings.Join(iv.FocusAreas, ", "))
		}
	} else {
		sb.WriteString("No interview has been completed. You are operating with incomplete project context, so ask clarifying questions instead of guessing at specifics.\n")
	}

	sb.WriteString("\n## Capabilities\n")
	sb.WriteString("You can call these tools when they help: generate_materials, generate_checklist, search_web_resources, summarize_webpage, summarize_notes. ")
	sb.WriteString("Everything a tool produces is a suggestion for the user to review; nothing is added to the project automatically.\n")

	if directive := intentDirective(classification); directive != "" {
		sb.WriteString("\n## Instruction\n")
		sb.WriteString(directive)
		sb.WriteString("\n")
	}

	return sb.String()
}

// intentDirective returns the intent-specific directive block.
func intentDirective(classification *Classification) string {
	if classification == nil {
		return ""
	}
	switch classification.Intent {
	case IntentResourceSearch:
		if classification.NeedsSearch {
			return "The user is asking for web resources. You MUST call the search_web_resources tool before answering; base your answer on its results."
		}
	case IntentOffTopic:
		return "The user's message is off-topic for this project. Politely decline to go down that path, then re-engage them with their home-improvement project."
	case IntentWebpageSummary:
		return "The user shared a webpage. Call summarize_webpage with the URL to extract its techniques, materials and steps, then present the summary."
	}
	return ""
}
