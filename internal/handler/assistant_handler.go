package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hearthside/hearthside-ai/internal/service"
	"github.com/hearthside/hearthside-ai/internal/service/assistant"
)

// AssistantHandler exposes the conversational assistant.
type AssistantHandler struct {
	svc *service.Services
}

// NewAssistantHandler creates the assistant handler.
func NewAssistantHandler(svc *service.Services) *AssistantHandler {
	return &AssistantHandler{svc: svc}
}

// SendMessage handles POST /projects/:id/assistant/messages.
func (h *AssistantHandler) SendMessage(c *gin.Context) {
	var req assistant.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	req.ProjectID = c.Param("id")

	resp, err := h.svc.Assistant.SendMessage(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrProjectNotFound):
			NotFound(c, "project not found")
		case errors.Is(err, assistant.ErrThreadNotFound):
			NotFound(c, "thread not found")
		default:
			InternalServerError(c, err.Error())
		}
		return
	}

	Success(c, resp)
}

// ListThreads handles GET /projects/:id/assistant/threads.
func (h *AssistantHandler) ListThreads(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	threads, err := h.svc.Assistant.Threads(c.Param("id"), offset, limit)
	if err != nil {
		if errors.Is(err, assistant.ErrProjectNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}

	Success(c, threads)
}

// ListMessages handles GET /projects/:id/assistant/threads/:thread_id/messages.
func (h *AssistantHandler) ListMessages(c *gin.Context) {
	messages, err := h.svc.Assistant.Messages(c.Param("id"), c.Param("thread_id"))
	if err != nil {
		if errors.Is(err, assistant.ErrThreadNotFound) {
			NotFound(c, "thread not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}

	Success(c, messages)
}
