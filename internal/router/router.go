// Package router assembles the HTTP routes.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/hearthside/hearthside-ai/internal/config"
	"github.com/hearthside/hearthside-ai/internal/handler"
	"github.com/hearthside/hearthside-ai/internal/middleware"
)

// SetupRouter builds the gin engine with middleware and routes.
func SetupRouter(h *handler.Handlers, cfg *config.Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.AuthMiddleware(cfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		projects := v1.Group("/projects")
		{
			projects.POST("", h.Project.Create)
			projects.GET("", h.Project.List)
			projects.GET("/:id", h.Project.Get)
			projects.PUT("/:id", h.Project.Update)

			projects.POST("/:id/materials", h.Project.AddMaterial)
			projects.GET("/:id/materials", h.Project.ListMaterials)
			projects.POST("/:id/checklist", h.Project.AddChecklistItem)
			projects.GET("/:id/checklist", h.Project.ListChecklist)
			projects.POST("/:id/notes", h.Project.AddNote)
			projects.GET("/:id/notes", h.Project.ListNotes)

			projects.POST("/:id/assistant/messages", h.Assistant.SendMessage)
			projects.GET("/:id/assistant/threads", h.Assistant.ListThreads)
			projects.GET("/:id/assistant/threads/:thread_id/messages", h.Assistant.ListMessages)
		}
	}

	return r
}
