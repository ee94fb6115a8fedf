package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/internal/service"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// AnnouncementHandler exposes announcement endpoints.
type AnnouncementHandler struct {
	announcements *service.AnnouncementService
}

// NewAnnouncementHandler constructs AnnouncementHandler.
func NewAnnouncementHandler(announcements *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// Publish creates an announcement.
func (h *AnnouncementHandler) Publish(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var req models.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	announcement, err := h.announcements.Publish(c.Request.Context(), auth, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

// List returns announcements addressed to the caller's role.
func (h *AnnouncementHandler) List(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	announcements, err := h.announcements.List(c.Request.Context(), auth)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcements)
}

// Get returns one announcement.
func (h *AnnouncementHandler) Get(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	announcement, err := h.announcements.Get(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcement)
}

// Delete removes an announcement.
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	if err := h.announcements.Delete(c.Request.Context(), auth.SchoolID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
