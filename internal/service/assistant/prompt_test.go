package assistant

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	appmodel "github.com/hearthside/hearthside-ai/internal/model"
)

func TestAssemblePrompt_Order(t *testing.T) {
	history := []*appmodel.ChatMessage{
		{Role: RoleUser, Content: "How big should the bench be?"},
		{Role: RoleAssistant, Content: "Six feet works for most garages."},
	}

	messages := assemblePrompt(testProfile(), defaultClassification(), history, "And how tall?")

	if len(messages) != 4 {
		t.Fatalf("assemblePrompt() = %d messages, want 4", len(messages))
	}
	if messages[0].Role != schema.System {
		t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if messages[1].Role != schema.User || messages[1].Content != "How big should the bench be?" {
		t.Errorf("messages[1] = %q %q", messages[1].Role, messages[1].Content)
	}
	if messages[2].Role != schema.Assistant {
		t.Errorf("messages[2].Role = %q, want assistant", messages[2].Role)
	}
	if last := messages[len(messages)-1]; last.Role != schema.User || last.Content != "And how tall?" {
		t.Errorf("last message = %q %q, want the new user message", last.Role, last.Content)
	}
}

func TestBuildInstruction_IncludesProjectFacts(t *testing.T) {
	profile := testProfile()
	profile.Materials = []string{"plywood", "screws"}
	profile.ChecklistItems = []string{"Clear space"}

	instruction := buildInstruction(profile, nil)

	for _, want := range []string{"Basement workshop", "woodworking shop", "plywood", "Clear space"} {
		if !strings.Contains(instruction, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
}

func TestBuildInstruction_InterviewVerbatim(t *testing.T) {
	profile := testProfile()
	profile.Interview = &InterviewContext{
		Answers: []InterviewQA{
			{Question: "What's your budget?", Answer: "Around $500, maybe less."},
		},
		FocusAreas: []string{"budget", "skills"},
	}

	instruction := buildInstruction(profile, nil)

	if !strings.Contains(instruction, "What's your budget?") {
		t.Error("instruction missing interview question")
	}
	if !strings.Contains(instruction, "Around $500, maybe less.") {
		t.Error("instruction missing interview answer verbatim")
	}
	if !strings.Contains(instruction, "budget, skills") {
		t.Error("instruction missing focus areas")
	}
	if strings.Contains(instruction, "No interview") {
		t.Error("instruction flags a missing interview despite answers")
	}
}

func TestBuildInstruction_MissingInterviewFlagged(t *testing.T) {
	instruction := buildInstruction(testProfile(), nil)

	if !strings.Contains(instruction, "No interview has been completed") {
		t.Error("instruction does not flag the missing interview")
	}
}

func TestIntentDirective(t *testing.T) {
	tests := []struct {
		name           string
		classification *Classification
		wantContains   string
		wantEmpty      bool
	}{
		{
			name:           "search intent mandates the tool",
			classification: &Classification{Intent: IntentResourceSearch, NeedsSearch: true},
			wantContains:   "search_web_resources",
		},
		{
			name:           "search intent without needs_search",
			classification: &Classification{Intent: IntentResourceSearch, NeedsSearch: false},
			wantEmpty:      true,
		},
		{
			name:           "off topic redirects",
			classification: &Classification{Intent: IntentOffTopic},
			wantContains:   "re-engage",
		},
		{
			name:           "webpage summary",
			classification: &Classification{Intent: IntentWebpageSummary},
			wantContains:   "summarize_webpage",
		},
		{
			name:           "general guidance has no directive",
			classification: &Classification{Intent: IntentGeneralGuidance},
			wantEmpty:      true,
		},
		{
			name:      "nil classification",
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directive := intentDirective(tt.classification)
			if tt.wantEmpty {
				if directive != "" {
					t.Errorf("intentDirective() = %q, want empty", directive)
				}
				return
			}
			if !strings.Contains(directive, tt.wantContains) {
				t.Errorf("intentDirective() = %q, missing %q", directive, tt.wantContains)
			}
		})
	}
}
