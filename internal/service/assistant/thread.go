package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appmodel "github.com/hearthside/hearthside-ai/internal/model"
)

const (
	// activeWindow is the rolling window inside which a thread counts as
	// active for reuse.
	activeWindow = 24 * time.Hour

	// titleMaxLen / titleTruncLen bound the title derived from the first
	// message of a thread.
	titleMaxLen   = 50
	titleTruncLen = 47

	activeThreadKeyPrefix = "assistant:active_thread:"
)

// resolveThread selects or creates the thread a new message belongs to.
// An explicit thread id must resolve within the project or the turn fails
// with ErrThreadNotFound. Without an id, the most recently active thread
// inside the 24h window is reused; otherwise a new thread is created with a
// title derived from the message. Recency is NOT bumped here; that happens
// in the finalizer, so a failed turn does not falsely advance freshness.
func (s *Service) resolveThread(ctx context.Context, projectID, threadID, message string, now time.Time) (*appmodel.ChatThread, error) {
	if threadID != "" {
		thread, err := s.store.GetThread(projectID, threadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrThreadNotFound
			}
			return nil, fmt.Errorf("failed to look up thread: %w", err)
		}
		return thread, nil
	}

	since := now.Add(-activeWindow)

	// redis pointer cache first; the DB stays the source of truth
	if id := s.cachedActiveThread(ctx, projectID); id != "" {
		if thread, err := s.store.GetThread(projectID, id); err == nil && thread.LastMessageAt.After(since) {
			return thread, nil
		}
	}

	thread, err := s.store.FindActiveThread(projectID, since)
	if err == nil {
		return thread, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find active thread: %w", err)
	}

	thread = &appmodel.ChatThread{
		ID:            uuid.New().String(),
		ProjectID:     projectID,
		Title:         deriveTitle(message),
		StartedAt:     now,
		LastMessageAt: now,
	}
	if err := s.store.CreateThread(thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	s.cacheActiveThread(ctx, projectID, thread.ID)
	return thread, nil
}

// deriveTitle builds a thread title from the first message, truncated in
// runes so multi-byte input is never split mid-character.
func deriveTitle(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) == 0 {
		return "New conversation"
	}
	if len(runes) <= titleMaxLen {
		return string(runes)
	}
	return string(runes[:titleTruncLen]) + "..."
}

func (s *Service) cachedActiveThread(ctx context.Context, projectID string) string {
	if s.redis == nil {
		return ""
	}
	id, err := s.redis.Get(ctx, activeThreadKeyPrefix+projectID).Result()
	if err != nil {
		return ""
	}
	return id
}

func (s *Service) cacheActiveThread(ctx context.Context, projectID, threadID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, activeThreadKeyPrefix+projectID, threadID, activeWindow).Err(); err != nil {
		log.Printf("Warning: failed to cache active thread for project %s: %v", projectID, err)
	}
}

// projectLocks serializes thread selection per project.
type projectLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProjectLocks() *projectLocks {
	return &projectLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the per-project mutex and returns its release func.
func (p *projectLocks) Lock(projectID string) func() {
	p.mu.Lock()
	l, ok := p.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[projectID] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
