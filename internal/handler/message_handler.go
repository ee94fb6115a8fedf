package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/internal/service"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// MessageHandler exposes direct messaging endpoints.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Send delivers a message to another user of the school.
func (h *MessageHandler) Send(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	message, err := h.messages.Send(c.Request.Context(), auth, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// List returns the caller's inbox or, with box=sent, their sent messages.
func (h *MessageHandler) List(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	messages, err := h.messages.List(c.Request.Context(), auth, models.MessageBox(c.DefaultQuery("box", "inbox")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, messages)
}

// Get returns one message the caller participates in.
func (h *MessageHandler) Get(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	message, err := h.messages.Get(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message)
}

// MarkRead marks a received message as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	if err := h.messages.MarkRead(c.Request.Context(), auth, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete removes a message the caller participates in.
func (h *MessageHandler) Delete(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	if err := h.messages.Delete(c.Request.Context(), auth, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
