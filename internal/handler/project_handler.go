package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hearthside/hearthside-ai/internal/middleware"
	"github.com/hearthside/hearthside-ai/internal/service"
	"github.com/hearthside/hearthside-ai/internal/service/project"
)

// ProjectHandler exposes project CRUD and the resource sub-collections.
type ProjectHandler struct {
	svc *service.Services
}

// NewProjectHandler creates the project handler.
func NewProjectHandler(svc *service.Services) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req project.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.UserID == "" {
		if userID, ok := middleware.GetUserID(c); ok {
			req.UserID = userID
		}
	}

	p, err := h.svc.Project.Create(&req)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	Created(c, p)
}

// Get handles GET /projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.svc.Project.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}
	Success(c, p)
}

// List handles GET /projects.
func (h *ProjectHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	userID, _ := middleware.GetUserID(c)

	projects, err := h.svc.Project.List(userID, offset, limit)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	Success(c, projects)
}

// Update handles PUT /projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req project.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	p, err := h.svc.Project.Update(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}
	Success(c, p)
}

// AddMaterial handles POST /projects/:id/materials.
func (h *ProjectHandler) AddMaterial(c *gin.Context) {
	var req project.AddMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	m, err := h.svc.Project.AddMaterial(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}
	Created(c, m)
}

// ListMaterials handles GET /projects/:id/materials.
func (h *ProjectHandler) ListMaterials(c *gin.Context) {
	materials, err := h.svc.Project.Materials(c.Param("id"))
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	Success(c, materials)
}

// AddChecklistItem handles POST /projects/:id/checklist.
func (h *ProjectHandler) AddChecklistItem(c *gin.Context) {
	var req project.AddChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	item, err := h.svc.Project.AddChecklistItem(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}
	Created(c, item)
}

// ListChecklist handles GET /projects/:id/checklist.
func (h *ProjectHandler) ListChecklist(c *gin.Context) {
	items, err := h.svc.Project.Checklist(c.Param("id"))
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	Success(c, items)
}

// AddNote handles POST /projects/:id/notes.
func (h *ProjectHandler) AddNote(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	note, err := h.svc.Project.AddNote(c.Param("id"), req.Content)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}
	Created(c, note)
}

// ListNotes handles GET /projects/:id/notes.
func (h *ProjectHandler) ListNotes(c *gin.Context) {
	notes, err := h.svc.Project.Notes(c.Param("id"))
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	Success(c, notes)
}
