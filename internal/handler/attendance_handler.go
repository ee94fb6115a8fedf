package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/internal/service"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// List returns attendance records visible to the caller.
func (h *AttendanceHandler) List(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var filter models.AttendanceFilter
	filter.StudentID = c.Query("studentId")
	filter.ClassID = c.Query("classId")
	if status := models.AttendanceStatus(c.Query("status")); status != "" && status.Valid() {
		filter.Status = &status
	}
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filter.DateFrom = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		filter.DateTo = &to
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	records, pagination, err := h.attendance.List(c.Request.Context(), auth, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Mark godoc
// @Summary Mark one student for one day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.MarkAttendanceRequest true "Mark"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var req models.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	record, err := h.attendance.Mark(c.Request.Context(), auth, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Bulk marks a whole class in one call.
func (h *AttendanceHandler) Bulk(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var req models.BulkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	summary, err := h.attendance.BulkMark(c.Request.Context(), auth, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Summary godoc
// @Summary Attendance rate for one student
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/students/{id}/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	summary, err := h.attendance.Summary(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}
