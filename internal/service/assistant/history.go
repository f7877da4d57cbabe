package assistant

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	appmodel "github.com/hearthside/hearthside-ai/internal/model"
)

// Threads lists a project's conversation threads, most recently active first.
func (s *Service) Threads(projectID string, offset, limit int) ([]*appmodel.ChatThread, error) {
	if _, err := s.projects.Profile(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListThreads(projectID, offset, limit)
}

// Messages lists the full transcript of a thread in ascending order.
func (s *Service) Messages(projectID, threadID string) ([]*appmodel.ChatMessage, error) {
	if _, err := s.store.GetThread(projectID, threadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to look up thread: %w", err)
	}
	return s.store.ListMessages(threadID)
}
