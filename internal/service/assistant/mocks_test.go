package assistant

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"gorm.io/gorm"

	appmodel "github.com/hearthside/hearthside-ai/internal/model"
	"github.com/hearthside/hearthside-ai/internal/service/search"
)

// fakeStore is an in-memory ChatStore.
type fakeStore struct {
	threads  map[string]*appmodel.ChatThread
	messages []*appmodel.ChatMessage

	createThreadErr  error
	createMessageErr error
	listErr          error

	touched  map[string]time.Time
	attached map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		threads:  make(map[string]*appmodel.ChatThread),
		touched:  make(map[string]time.Time),
		attached: make(map[string][]string),
	}
}

func (f *fakeStore) CreateThread(thread *appmodel.ChatThread) error {
	if f.createThreadErr != nil {
		return f.createThreadErr
	}
	copied := *thread
	f.threads[thread.ID] = &copied
	return nil
}

func (f *fakeStore) GetThread(projectID, threadID string) (*appmodel.ChatThread, error) {
	thread, ok := f.threads[threadID]
	if !ok || thread.ProjectID != projectID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *thread
	return &copied, nil
}

func (f *fakeStore) FindActiveThread(projectID string, since time.Time) (*appmodel.ChatThread, error) {
	var best *appmodel.ChatThread
	for _, thread := range f.threads {
		if thread.ProjectID != projectID || !thread.LastMessageAt.After(since) {
			continue
		}
		if best == nil || thread.LastMessageAt.After(best.LastMessageAt) {
			best = thread
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *best
	return &copied, nil
}

func (f *fakeStore) TouchThread(threadID string, at time.Time) error {
	if thread, ok := f.threads[threadID]; ok {
		thread.LastMessageAt = at
	}
	f.touched[threadID] = at
	return nil
}

func (f *fakeStore) ListThreads(projectID string, offset, limit int) ([]*appmodel.ChatThread, error) {
	var threads []*appmodel.ChatThread
	for _, thread := range f.threads {
		if thread.ProjectID == projectID {
			threads = append(threads, thread)
		}
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].LastMessageAt.After(threads[j].LastMessageAt)
	})
	return threads, nil
}

func (f *fakeStore) CreateMessage(msg *appmodel.ChatMessage) error {
	if f.createMessageErr != nil {
		return f.createMessageErr
	}
	copied := *msg
	f.messages = append(f.messages, &copied)
	return nil
}

func (f *fakeStore) ListRecentMessages(threadID string, limit int) ([]*appmodel.ChatMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	all, _ := f.ListMessages(threadID)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (f *fakeStore) ListMessages(threadID string) ([]*appmodel.ChatMessage, error) {
	var msgs []*appmodel.ChatMessage
	for _, msg := range f.messages {
		if msg.ThreadID == threadID {
			msgs = append(msgs, msg)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (f *fakeStore) AttachToolCall(messageID, name, args, result string) error {
	if _, done := f.attached[messageID]; done {
		return nil
	}
	f.attached[messageID] = []string{name, args, result}
	return nil
}

// fakeProjects serves canned project profiles.
type fakeProjects struct {
	profiles map[string]*ProjectProfile
}

func (f *fakeProjects) Profile(projectID string) (*ProjectProfile, error) {
	profile, ok := f.profiles[projectID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

// fakeChatModel replays scripted responses and records the last input.
type fakeChatModel struct {
	responses []*schema.Message
	err       error
	calls     int
	lastInput []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return schema.AssistantMessage("", nil), nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented")
}

// fakeToolModel adds WithTools on top of fakeChatModel.
type fakeToolModel struct {
	fakeChatModel
}

func (f *fakeToolModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return f, nil
}

// fakeSearcher returns a fixed result and records the last request.
type fakeSearcher struct {
	result  *search.Result
	lastReq *search.Request
	panics  bool
}

func (f *fakeSearcher) Search(ctx context.Context, req *search.Request) *search.Result {
	if f.panics {
		panic("searcher exploded")
	}
	f.lastReq = req
	if f.result != nil {
		return f.result
	}
	return &search.Result{Success: true}
}

func toolCallMessage(name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{
				ID: "call-1",
				Function: schema.FunctionCall{
					Name:      name,
					Arguments: args,
				},
			},
		},
	}
}

func searchResultWithHits(n int) *search.Result {
	result := &search.Result{
		Success: true,
		Optimization: &search.Optimization{
			Original:  "raw query",
			Optimized: "better query",
		},
	}
	for i := 0; i < n; i++ {
		result.Resources = append(result.Resources, search.Resource{
			Title:     "Tiling tutorial",
			URL:       "https://example.com/" + string(rune('a'+i)),
			Relevance: 1.0,
		})
	}
	return result
}

func testProfile() *ProjectProfile {
	return &ProjectProfile{
		ID:    "proj-1",
		Title: "Basement workshop",
		Goal:  "Turn the basement corner into a woodworking shop",
	}
}
