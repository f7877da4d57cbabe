package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	appmodel "github.com/hearthside/hearthside-ai/internal/model"
)

func newTestService(store *fakeStore, projects *fakeProjects, chatModel *fakeChatModel, toolModel *fakeToolModel, searcher *fakeSearcher) *Service {
	svc := &Service{
		store:    store,
		projects: projects,
		locks:    newProjectLocks(),
	}
	if chatModel != nil {
		svc.chatModel = chatModel
	}
	if toolModel != nil {
		svc.toolModel = toolModel
	}
	var s ResourceSearcher
	if searcher != nil {
		s = searcher
	}
	svc.dispatcher = newDispatcher(s, svc.chatModel)
	return svc
}

func testProjects() *fakeProjects {
	return &fakeProjects{profiles: map[string]*ProjectProfile{
		"proj-1": testProfile(),
	}}
}

func TestSendMessage_RejectsEmptyMessage(t *testing.T) {
	svc := newTestService(newFakeStore(), testProjects(), nil, nil, nil)

	_, err := svc.SendMessage(context.Background(), &SendMessageRequest{
		ProjectID: "proj-1",
		Message:   "   ",
	})
	if err == nil {
		t.Error("SendMessage() accepted a blank message")
	}
}

func TestSendMessage_ProjectNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), testProjects(), nil, nil, nil)

	_, err := svc.SendMessage(context.Background(), &SendMessageRequest{
		ProjectID: "missing",
		Message:   "hello",
	})
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("SendMessage() error = %v, want ErrProjectNotFound", err)
	}
}

func TestSendMessage_ThreadNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), testProjects(), nil, nil, nil)

	_, err := svc.SendMessage(context.Background(), &SendMessageRequest{
		ProjectID: "proj-1",
		Message:   "hello",
		ThreadID:  "no-such-thread",
	})
	if !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("SendMessage() error = %v, want ErrThreadNotFound", err)
	}
}

func TestSendMessage_NoModelsPersistsTurn(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, testProjects(), nil, nil, nil)

	resp, err := svc.SendMessage(context.Background(), &SendMessageRequest{
		ProjectID: "proj-1",
		Message:   "Where do I start?",
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	// nothing to rescue the empty generation with, so the text stays empty;
	// the turn is still persisted in full
	if resp.Message != "" {
		t.Errorf("Message = %q, want empty without models or a searcher", resp.Message)
	}
	if resp.ThreadID == "" {
		t.Error("SendMessage() returned no thread id")
	}
	if resp.ResponseType != ResponseTypeConversation {
		t.Errorf("ResponseType = %q, want conversation", resp.ResponseType)
	}

	msgs, _ := store.ListMessages(resp.ThreadID)
	if len(msgs) != 2 {
		t.Fatalf("persisted %d messages, want user and assistant", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Errorf("message roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}
	if _, touched := store.touched[resp.ThreadID]; !touched {
		t.Error("thread recency was not bumped")
	}
}

func TestSendMessage_SearchFallback(t *testing.T) {
	store := newFakeStore()
	chatModel := &fakeChatModel{responses: []*schema.Message{
		// classification, then an empty generation that forces the fallback
		schema.AssistantMessage(`{"intent": "resource-search", "resource_type": "tutorial", "content_type": "video", "needs_search": true, "query": "tile a backsplash", "confidence": 0.9}`, nil),
		schema.AssistantMessage("", nil),
	}}
	searcher := &fakeSearcher{result: searchResultWithHits(2)}
	svc := newTestService(store, testProjects(), chatModel, nil, searcher)

	resp, err := svc.SendMessage(context.Background(), &SendMessageRequest{
		ProjectID: "proj-1",
		Message:   "show me backsplash videos",
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	if resp.ResponseType != ResponseTypeSearchResults {
		t.Errorf("ResponseType = %q, want search_results", resp.ResponseType)
	}
	if len(resp.Resources) != 2 {
		t.Errorf("resources = %d, want 2", len(resp.Resources))
	}
	if !resp.Metadata.HasSearchResults || resp.Metadata.SearchResultsCount != 2 {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
	if resp.Metadata.ContentType != "video" || resp.Metadata.ResourceType != "tutorial" {
		t.Errorf("metadata types = %q/%q", resp.Metadata.ContentType, resp.Metadata.ResourceType)
	}
	if resp.Metadata.QueryOptimization == nil {
		t.Error("metadata missing query optimization")
	}
	if resp.Message == "" {
		t.Error("fallback produced no text")
	}
}

func TestSendMessage_ToolInvocationPersisted(t *testing.T) {
	store := newFakeStore()
	searcher := &fakeSearcher{result: searchResultWithHits(1)}
	toolModel := &fakeToolModel{fakeChatModel: fakeChatModel{
		responses: []*schema.Message{
			toolCallMessage(string(CapSearchWebResources), `{"query": "tile a backsplash"}`),
			schema.AssistantMessage("Here are some tutorials to get you going.", nil),
		},
	}}
	svc := newTestService(store, testProjects(), nil, toolModel, searcher)

	resp, err := svc.SendMessage(context.Background(), &SendMessageRequest{
		ProjectID: "proj-1",
		Message:   "find me tiling tutorials",
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	if len(resp.Invocations) != 1 {
		t.Fatalf("invocations = %d, want 1", len(resp.Invocations))
	}
	if resp.Invocations[0].Capability != CapSearchWebResources {
		t.Errorf("capability = %q", resp.Invocations[0].Capability)
	}
	if resp.ResponseType != ResponseTypeSearchResults {
		t.Errorf("ResponseType = %q, want search_results", resp.ResponseType)
	}

	msgs, _ := store.ListMessages(resp.ThreadID)
	assistantID := msgs[len(msgs)-1].ID
	attached, ok := store.attached[assistantID]
	if !ok {
		t.Fatal("tool call not attached to the assistant message")
	}
	if attached[0] != string(CapSearchWebResources) {
		t.Errorf("attached tool = %q", attached[0])
	}
}

func TestSendMessage_PromptWindowBounded(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.threads["t-1"] = &appmodel.ChatThread{
		ID:            "t-1",
		ProjectID:     "proj-1",
		LastMessageAt: now,
	}
	base := now.Add(-time.Hour)
	for i := 0; i < 30; i++ {
		store.messages = append(store.messages, &appmodel.ChatMessage{
			ID:        fmt.Sprintf("m-%d", i),
			ProjectID: "proj-1",
			ThreadID:  "t-1",
			Role:      RoleUser,
			Content:   fmt.Sprintf("turn %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	toolModel := &fakeToolModel{fakeChatModel: fakeChatModel{
		responses: []*schema.Message{schema.AssistantMessage("All set.", nil)},
	}}
	svc := newTestService(store, testProjects(), nil, toolModel, nil)

	_, err := svc.SendMessage(context.Background(), &SendMessageRequest{
		ProjectID: "proj-1",
		ThreadID:  "t-1",
		Message:   "so what comes next?",
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	got := toolModel.lastInput
	// system + the 20 most recent turns + the new user message
	if len(got) != 22 {
		t.Fatalf("prompt carried %d messages, want 22", len(got))
	}
	if got[0].Role != schema.System {
		t.Errorf("prompt does not open with the system instruction")
	}
	if got[1].Content != "turn 10" {
		t.Errorf("window starts at %q, want turn 10", got[1].Content)
	}
	for i := 1; i <= 20; i++ {
		if want := fmt.Sprintf("turn %d", i+9); got[i].Content != want {
			t.Fatalf("window position %d = %q, want %q", i, got[i].Content, want)
		}
	}
	if last := got[21]; last.Role != schema.User || last.Content != "so what comes next?" {
		t.Errorf("last message = %q %q, want the new user message", last.Role, last.Content)
	}
}

func TestSendMessage_ReusesThreadAcrossTurns(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, testProjects(), nil, nil, nil)
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, &SendMessageRequest{ProjectID: "proj-1", Message: "first question"})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	second, err := svc.SendMessage(ctx, &SendMessageRequest{ProjectID: "proj-1", Message: "second question"})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	if first.ThreadID != second.ThreadID {
		t.Errorf("threads differ across back-to-back turns: %q vs %q", first.ThreadID, second.ThreadID)
	}

	msgs, _ := store.ListMessages(first.ThreadID)
	if len(msgs) != 4 {
		t.Errorf("persisted %d messages, want 4", len(msgs))
	}
}
