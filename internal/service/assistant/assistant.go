// Package assistant implements the conversational assistant orchestration
// engine: it turns a free-text user message into a tool-augmented response
// bound to a persistent conversation thread.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appmodel "github.com/hearthside/hearthside-ai/internal/model"
	"github.com/hearthside/hearthside-ai/internal/service/search"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Response types.
const (
	ResponseTypeConversation  = "conversation"
	ResponseTypeSearchResults = "search_results"
	ResponseTypeFunctionCall  = "function_call"
)

var (
	// ErrProjectNotFound is returned when the project id does not resolve.
	ErrProjectNotFound = errors.New("project not found")
	// ErrThreadNotFound is returned when an explicit thread id does not
	// resolve within the project. The caller must start a new conversation
	// rather than silently rebinding.
	ErrThreadNotFound = errors.New("thread not found")
)

// ChatStore is the durable message store consumed by the engine.
// Interface abstraction keeps the engine mockable in unit tests.
type ChatStore interface {
	CreateThread(thread *appmodel.ChatThread) error
	GetThread(projectID, threadID string) (*appmodel.ChatThread, error)
	FindActiveThread(projectID string, since time.Time) (*appmodel.ChatThread, error)
	TouchThread(threadID string, at time.Time) error
	ListThreads(projectID string, offset, limit int) ([]*appmodel.ChatThread, error)
	CreateMessage(msg *appmodel.ChatMessage) error
	ListRecentMessages(threadID string, limit int) ([]*appmodel.ChatMessage, error)
	ListMessages(threadID string) ([]*appmodel.ChatMessage, error)
	AttachToolCall(messageID, name, args, result string) error
}

// ProjectReader supplies the project profile the engine prompts with.
type ProjectReader interface {
	Profile(projectID string) (*ProjectProfile, error)
}

// ProjectProfile is the engine's view of a project.
type ProjectProfile struct {
	ID             string
	Title          string
	Goal           string
	Description    string
	Materials      []string
	ChecklistItems []string
	Notes          []string
	Interview      *InterviewContext
}

// InterviewContext is prior intake-interview context, included verbatim in
// the prompt when present.
type InterviewContext struct {
	Answers    []InterviewQA
	FocusAreas []string
}

// InterviewQA is one interview question and its answer.
type InterviewQA struct {
	Question string
	Answer   string
}

// ResourceSearcher is the resource search adapter used by the
// search_web_resources capability and the fallback synthesizer.
type ResourceSearcher interface {
	Search(ctx context.Context, req *search.Request) *search.Result
}

// Service is the orchestration engine.
type Service struct {
	store      ChatStore
	projects   ProjectReader
	chatModel  model.BaseChatModel
	toolModel  model.ToolCallingChatModel
	dispatcher *dispatcher
	locks      *projectLocks
	redis      *redis.Client
}

// NewService creates the engine. chatModel and toolModel may be nil; every
// model-dependent step then degrades per the error-handling policy instead
// of blocking the turn.
func NewService(store ChatStore, projects ProjectReader, chatModel model.BaseChatModel, toolModel model.ToolCallingChatModel, searcher ResourceSearcher, redisClient *redis.Client) *Service {
	if toolModel != nil {
		bound, err := toolModel.WithTools(catalogToolInfos())
		if err != nil {
			log.Printf("Warning: failed to bind tool catalog: %v", err)
		} else {
			toolModel = bound
		}
	}

	return &Service{
		store:      store,
		projects:   projects,
		chatModel:  chatModel,
		toolModel:  toolModel,
		dispatcher: newDispatcher(searcher, chatModel),
		locks:      newProjectLocks(),
		redis:      redisClient,
	}
}

// SendMessageRequest is one inbound engine invocation.
type SendMessageRequest struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message" binding:"required"`
	ThreadID  string `json:"thread_id"`
}

// Metadata describes the shape of the returned payload.
type Metadata struct {
	HasSearchResults   bool                 `json:"has_search_results"`
	SearchResultsCount int                  `json:"search_results_count"`
	ContentType        string               `json:"content_type,omitempty"`
	ResourceType       string               `json:"resource_type,omitempty"`
	QueryOptimization  *search.Optimization `json:"query_optimization,omitempty"`
}

// SendMessageResponse is the finalized turn returned to the caller.
type SendMessageResponse struct {
	Message      string            `json:"message"`
	ThreadID     string            `json:"thread_id"`
	ResponseType string            `json:"response_type"`
	Resources    []search.Resource `json:"resources,omitempty"`
	Invocations  []ToolInvocation  `json:"tool_invocations,omitempty"`
	Metadata     Metadata          `json:"metadata"`
}

// SendMessage runs one full engine turn: thread resolution, intent
// classification, prompt assembly, the bounded orchestration loop, fallback
// synthesis on empty output, and finalization.
func (s *Service) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}

	profile, err := s.projects.Profile(req.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project profile: %w", err)
	}

	// serialize thread selection per project to close the check-then-act
	// race between concurrent turns without an explicit thread id
	unlock := s.locks.Lock(req.ProjectID)
	defer unlock()

	now := time.Now()
	thread, err := s.resolveThread(ctx, req.ProjectID, req.ThreadID, message, now)
	if err != nil {
		return nil, err
	}

	history, err := s.store.ListRecentMessages(thread.ID, contextWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread history: %w", err)
	}

	classification := s.classify(ctx, message, profile, history)

	userMsg := &appmodel.ChatMessage{
		ID:        uuid.New().String(),
		ProjectID: req.ProjectID,
		ThreadID:  thread.ID,
		Role:      RoleUser,
		Content:   message,
		CreatedAt: now,
	}
	if err := s.store.CreateMessage(userMsg); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	messages := assemblePrompt(profile, classification, history, message)
	outcome := s.runLoop(ctx, messages, profile)

	text := strings.TrimSpace(outcome.text)
	if text == "" {
		if fb := s.synthesizeFallback(ctx, classification, message, profile); fb != nil {
			text = fb.text
			outcome.resources = append(outcome.resources, fb.resources...)
			if outcome.optimization == nil {
				outcome.optimization = fb.optimization
			}
		}
	}

	return s.finalize(ctx, thread, req.ProjectID, text, classification, outcome)
}

// finalize persists the assistant turn, attaches the first tool invocation,
// bumps thread recency and shapes the returned payload.
func (s *Service) finalize(ctx context.Context, thread *appmodel.ChatThread, projectID, text string, classification *Classification, outcome *loopOutcome) (*SendMessageResponse, error) {
	assistantMsg := &appmodel.ChatMessage{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		ThreadID:  thread.ID,
		Role:      RoleAssistant,
		Content:   text,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateMessage(assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}

	// only the first invocation of the turn is persisted for audit; the
	// full list still goes back to the caller
	if len(outcome.invocations) > 0 {
		first := outcome.invocations[0]
		resultJSON, _ := json.Marshal(first.Result)
		if err := s.store.AttachToolCall(assistantMsg.ID, string(first.Capability), string(first.Arguments), string(resultJSON)); err != nil {
			log.Printf("Warning: failed to attach tool call to message %s: %v", assistantMsg.ID, err)
		}
	}

	touchedAt := time.Now()
	if err := s.store.TouchThread(thread.ID, touchedAt); err != nil {
		log.Printf("Warning: failed to touch thread %s: %v", thread.ID, err)
	} else {
		s.cacheActiveThread(ctx, projectID, thread.ID)
	}

	responseType := ResponseTypeConversation
	if len(outcome.invocations) > 0 {
		responseType = ResponseTypeFunctionCall
	}
	if len(outcome.resources) > 0 {
		responseType = ResponseTypeSearchResults
	}

	resp := &SendMessageResponse{
		Message:      text,
		ThreadID:     thread.ID,
		ResponseType: responseType,
		Resources:    outcome.resources,
		Invocations:  outcome.invocations,
		Metadata: Metadata{
			HasSearchResults:   len(outcome.resources) > 0,
			SearchResultsCount: len(outcome.resources),
			QueryOptimization:  outcome.optimization,
		},
	}
	if classification != nil {
		resp.Metadata.ContentType = classification.ContentType
		resp.Metadata.ResourceType = classification.ResourceType
	}
	return resp, nil
}
