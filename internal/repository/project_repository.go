package repository

import (
	"github.com/hearthside/hearthside-ai/internal/model"
	"gorm.io/gorm"
)

// ProjectRepository is the data access layer for projects and their resources.
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates the project repository.
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a project.
func (r *ProjectRepository) Create(project *model.Project) error {
	return r.db.Create(project).Error
}

// GetByID fetches a project.
func (r *ProjectRepository) GetByID(id string) (*model.Project, error) {
	var project model.Project
	err := r.db.Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List lists projects of a user, newest first.
func (r *ProjectRepository) List(userID string, offset, limit int) ([]*model.Project, error) {
	var projects []*model.Project
	query := r.db.Order("created_at DESC").Offset(offset).Limit(limit)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Find(&projects).Error
	return projects, err
}

// Update saves a project.
func (r *ProjectRepository) Update(project *model.Project) error {
	return r.db.Save(project).Error
}

// CreateMaterial adds a material to a project.
func (r *ProjectRepository) CreateMaterial(m *model.Material) error {
	return r.db.Create(m).Error
}

// ListMaterials lists a project's materials.
func (r *ProjectRepository) ListMaterials(projectID string) ([]*model.Material, error) {
	var materials []*model.Material
	err := r.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&materials).Error
	return materials, err
}

// CreateChecklistItem adds a checklist item to a project.
func (r *ProjectRepository) CreateChecklistItem(item *model.ChecklistItem) error {
	return r.db.Create(item).Error
}

// ListChecklistItems lists a project's checklist in task order.
func (r *ProjectRepository) ListChecklistItems(projectID string) ([]*model.ChecklistItem, error) {
	var items []*model.ChecklistItem
	err := r.db.Where("project_id = ?", projectID).Order("item_order ASC, created_at ASC").Find(&items).Error
	return items, err
}

// CreateNote adds a note to a project.
func (r *ProjectRepository) CreateNote(note *model.Note) error {
	return r.db.Create(note).Error
}

// ListNotes lists a project's notes, newest first.
func (r *ProjectRepository) ListNotes(projectID string) ([]*model.Note, error) {
	var notes []*model.Note
	err := r.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&notes).Error
	return notes, err
}

// ListInterviewAnswers lists the intake interview answers of a project.
func (r *ProjectRepository) ListInterviewAnswers(projectID string) ([]*model.InterviewAnswer, error) {
	var answers []*model.InterviewAnswer
	err := r.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&answers).Error
	return answers, err
}
