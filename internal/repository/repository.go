package repository

import "gorm.io/gorm"

// Repositories groups all data-access objects.
type Repositories struct {
	DB      *gorm.DB
	Chat    *ChatRepository
	Project *ProjectRepository
}

// NewRepositories creates all repositories.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:      db,
		Chat:    NewChatRepository(db),
		Project: NewProjectRepository(db),
	}
}
