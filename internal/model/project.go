package model

import "time"

// Project is a DIY home-improvement project.
type Project struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"index;size:36" json:"user_id"`
	Title       string    `gorm:"size:255" json:"title"`
	Goal        string    `gorm:"type:text" json:"goal"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Material is a material entry on a project's shopping list.
type Material struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID      string    `gorm:"index;size:36" json:"project_id"`
	Name           string    `gorm:"size:255" json:"name"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `gorm:"size:32" json:"unit"`
	EstimatedPrice float64   `json:"estimated_price"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ChecklistItem is a single task on a project checklist.
type ChecklistItem struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID     string    `gorm:"index;size:36" json:"project_id"`
	Title         string    `gorm:"size:255" json:"title"`
	Order         int       `gorm:"column:item_order" json:"order"`
	EstimatedTime string    `gorm:"size:64" json:"estimated_time,omitempty"`
	Difficulty    string    `gorm:"size:32" json:"difficulty,omitempty"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Note is a free-text project note.
type Note struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID string    `gorm:"index;size:36" json:"project_id"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InterviewAnswer is one answer from the project intake interview.
// The assistant's prompt assembler includes these verbatim as prior context.
type InterviewAnswer struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID string    `gorm:"index;size:36" json:"project_id"`
	Question  string    `gorm:"type:text" json:"question"`
	Answer    string    `gorm:"type:text" json:"answer"`
	FocusArea string    `gorm:"size:64" json:"focus_area,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Project) TableName() string         { return "projects" }
func (Material) TableName() string        { return "materials" }
func (ChecklistItem) TableName() string   { return "checklist_items" }
func (Note) TableName() string            { return "notes" }
func (InterviewAnswer) TableName() string { return "interview_answers" }
