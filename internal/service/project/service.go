// Package project manages DIY projects and the resources attached to them.
package project

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hearthside/hearthside-ai/internal/model"
	"github.com/hearthside/hearthside-ai/internal/repository"
	"github.com/hearthside/hearthside-ai/internal/service/assistant"
)

// Service is the project business layer.
type Service struct {
	repo *repository.ProjectRepository
}

// NewService creates the project service.
func NewService(repo *repository.Repositories) *Service {
	return &Service{repo: repo.Project}
}

// CreateRequest creates a project.
type CreateRequest struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title" binding:"required"`
	Goal        string `json:"goal"`
	Description string `json:"description"`
}

// Create creates a project.
func (s *Service) Create(req *CreateRequest) (*model.Project, error) {
	project := &model.Project{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Title:       req.Title,
		Goal:        req.Goal,
		Description: req.Description,
	}
	if err := s.repo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// Get fetches a project by id.
func (s *Service) Get(id string) (*model.Project, error) {
	return s.repo.GetByID(id)
}

// List lists a user's projects.
func (s *Service) List(userID string, offset, limit int) ([]*model.Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(userID, offset, limit)
}

// UpdateRequest updates a project. Nil fields are left unchanged.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Goal        *string `json:"goal"`
	Description *string `json:"description"`
}

// Update applies the non-nil fields of req to the project.
func (s *Service) Update(id string, req *UpdateRequest) (*model.Project, error) {
	project, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Goal != nil {
		project.Goal = *req.Goal
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if err := s.repo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// AddMaterialRequest adds a material the user accepted to the project.
type AddMaterialRequest struct {
	Name           string  `json:"name" binding:"required"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	EstimatedPrice float64 `json:"estimated_price"`
	Notes          string  `json:"notes"`
}

// AddMaterial adds a material to a project.
func (s *Service) AddMaterial(projectID string, req *AddMaterialRequest) (*model.Material, error) {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}
	m := &model.Material{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		Name:           req.Name,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		EstimatedPrice: req.EstimatedPrice,
		Notes:          req.Notes,
	}
	if err := s.repo.CreateMaterial(m); err != nil {
		return nil, fmt.Errorf("failed to add material: %w", err)
	}
	return m, nil
}

// Materials lists a project's materials.
func (s *Service) Materials(projectID string) ([]*model.Material, error) {
	return s.repo.ListMaterials(projectID)
}

// AddChecklistItemRequest adds a task the user accepted to the checklist.
type AddChecklistItemRequest struct {
	Title         string `json:"title" binding:"required"`
	Order         int    `json:"order"`
	EstimatedTime string `json:"estimated_time"`
	Difficulty    string `json:"difficulty"`
}

// AddChecklistItem adds a task to a project's checklist. When no order is
// given the task goes to the end.
func (s *Service) AddChecklistItem(projectID string, req *AddChecklistItemRequest) (*model.ChecklistItem, error) {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}
	order := req.Order
	if order <= 0 {
		existing, err := s.repo.ListChecklistItems(projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load checklist: %w", err)
		}
		order = len(existing) + 1
	}
	item := &model.ChecklistItem{
		ID:            uuid.New().String(),
		ProjectID:     projectID,
		Title:         req.Title,
		Order:         order,
		EstimatedTime: req.EstimatedTime,
		Difficulty:    req.Difficulty,
	}
	if err := s.repo.CreateChecklistItem(item); err != nil {
		return nil, fmt.Errorf("failed to add checklist item: %w", err)
	}
	return item, nil
}

// Checklist lists a project's checklist in task order.
func (s *Service) Checklist(projectID string) ([]*model.ChecklistItem, error) {
	return s.repo.ListChecklistItems(projectID)
}

// AddNote adds a free-text note to a project.
func (s *Service) AddNote(projectID, content string) (*model.Note, error) {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}
	note := &model.Note{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Content:   content,
	}
	if err := s.repo.CreateNote(note); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	return note, nil
}

// Notes lists a project's notes.
func (s *Service) Notes(projectID string) ([]*model.Note, error) {
	return s.repo.ListNotes(projectID)
}

// Profile assembles the assistant's view of a project: the project facts plus
// its materials, checklist, notes and intake interview.
func (s *Service) Profile(projectID string) (*assistant.ProjectProfile, error) {
	project, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}

	profile := &assistant.ProjectProfile{
		ID:          project.ID,
		Title:       project.Title,
		Goal:        project.Goal,
		Description: project.Description,
	}

	materials, err := s.repo.ListMaterials(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	for _, m := range materials {
		profile.Materials = append(profile.Materials, m.Name)
	}

	items, err := s.repo.ListChecklistItems(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist: %w", err)
	}
	for _, item := range items {
		profile.ChecklistItems = append(profile.ChecklistItems, item.Title)
	}

	notes, err := s.repo.ListNotes(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	for _, note := range notes {
		profile.Notes = append(profile.Notes, note.Content)
	}

	answers, err := s.repo.ListInterviewAnswers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview answers: %w", err)
	}
	if len(answers) > 0 {
		iv := &assistant.InterviewContext{}
		seen := make(map[string]bool)
		for _, a := range answers {
			iv.Answers = append(iv.Answers, assistant.InterviewQA{
				Question: a.Question,
				Answer:   a.Answer,
			})
			if a.FocusArea != "" && !seen[a.FocusArea] {
				seen[a.FocusArea] = true
				iv.FocusAreas = append(iv.FocusAreas, a.FocusArea)
			}
		}
		profile.Interview = iv
	}

	return profile, nil
}
