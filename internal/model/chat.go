package model

import "time"

// ChatThread is a bounded conversation scope within one project.
// A thread counts as active while its LastMessageAt falls inside the
// 24-hour rolling window used by the thread resolver.
type ChatThread struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID     string    `gorm:"index;size:36" json:"project_id"`
	Title         string    `gorm:"size:255" json:"title"`
	StartedAt     time.Time `json:"started_at"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
}

// ChatMessage is one turn half within a thread.
// Assistant messages may carry the first tool invocation of their turn,
// attached once right after creation.
type ChatMessage struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID  string    `gorm:"index;size:36" json:"project_id"`
	ThreadID   string    `gorm:"index;size:36" json:"thread_id"`
	Role       string    `gorm:"size:20;index" json:"role"` // user, assistant
	Content    string    `gorm:"type:text" json:"content"`
	ToolName   string    `gorm:"size:64" json:"tool_name,omitempty"`
	ToolArgs   string    `gorm:"type:text" json:"tool_args,omitempty"`
	ToolResult string    `gorm:"type:text" json:"tool_result,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName overrides the default table name.
func (ChatThread) TableName() string {
	return "chat_threads"
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
