package handler

import (
	"github.com/hearthside/hearthside-ai/internal/service"
)

// Handlers aggregates the HTTP handlers.
type Handlers struct {
	Assistant *AssistantHandler
	Project   *ProjectHandler
}

// NewHandlers creates all handlers.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Assistant: NewAssistantHandler(svc),
		Project:   NewProjectHandler(svc),
	}
}
