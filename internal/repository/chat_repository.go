package repository

import (
	"time"

	"github.com/hearthside/hearthside-ai/internal/model"
	"gorm.io/gorm"
)

// ChatRepository is the message store: threads and messages.
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates the chat repository.
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateThread creates a conversation thread.
func (r *ChatRepository) CreateThread(thread *model.ChatThread) error {
	return r.db.Create(thread).Error
}

// GetThread fetches a thread scoped to its project.
func (r *ChatRepository) GetThread(projectID, threadID string) (*model.ChatThread, error) {
	var thread model.ChatThread
	err := r.db.Where("id = ? AND project_id = ?", threadID, projectID).First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// FindActiveThread returns the most recently active thread of a project
// whose last message is newer than since, or gorm.ErrRecordNotFound.
func (r *ChatRepository) FindActiveThread(projectID string, since time.Time) (*model.ChatThread, error) {
	var thread model.ChatThread
	err := r.db.Where("project_id = ? AND last_message_at > ?", projectID, since).
		Order("last_message_at DESC").
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// TouchThread bumps a thread's recency.
func (r *ChatRepository) TouchThread(threadID string, at time.Time) error {
	return r.db.Model(&model.ChatThread{}).
		Where("id = ?", threadID).
		Update("last_message_at", at).Error
}

// ListThreads lists a project's threads, newest first.
func (r *ChatRepository) ListThreads(projectID string, offset, limit int) ([]*model.ChatThread, error) {
	var threads []*model.ChatThread
	err := r.db.Where("project_id = ?", projectID).
		Order("last_message_at DESC").
		Offset(offset).Limit(limit).
		Find(&threads).Error
	return threads, err
}

// CreateMessage appends a message to a thread.
func (r *ChatRepository) CreateMessage(msg *model.ChatMessage) error {
	return r.db.Create(msg).Error
}

// ListRecentMessages returns the most recent limit messages of a thread
// in ascending creation order.
func (r *ChatRepository) ListRecentMessages(threadID string, limit int) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	err := r.db.Where("thread_id = ?", threadID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	// flip newest-first into ascending order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListMessages returns all messages of a thread in ascending order.
func (r *ChatRepository) ListMessages(threadID string) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	err := r.db.Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// AttachToolCall amends a just-created assistant message with the first
// tool invocation of its turn. This is a write-once amend, not a general
// update path.
func (r *ChatRepository) AttachToolCall(messageID, name, args, result string) error {
	return r.db.Model(&model.ChatMessage{}).
		Where("id = ? AND tool_name = ''", messageID).
		Updates(map[string]interface{}{
			"tool_name":   name,
			"tool_args":   args,
			"tool_result": result,
		}).Error
}
