package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/internal/service"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// GradeHandler exposes grade entry and workflow endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// List godoc
// @Summary List grades visible to the caller
// @Tags Grades
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param subjectId query string false "Filter by subject"
// @Param term query string false "Filter by term"
// @Param year query string false "Filter by academic year"
// @Param status query string false "Filter by workflow status"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var filter models.GradeFilter
	filter.StudentID = c.Query("studentId")
	filter.SubjectID = c.Query("subjectId")
	filter.Term = c.Query("term")
	filter.AcademicYear = c.Query("year")
	if status := models.GradeStatus(c.Query("status")); status != "" && status.Valid() {
		filter.Status = &status
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	grades, pagination, err := h.grades.List(c.Request.Context(), auth, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, pagination)
}

// Get returns one grade.
func (h *GradeHandler) Get(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	grade, err := h.grades.Get(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grade)
}

// Record godoc
// @Summary Record or re-record a grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.RecordGradeRequest true "Grade"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [post]
func (h *GradeHandler) Record(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var req models.RecordGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	grade, err := h.grades.Record(c.Request.Context(), auth, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Bulk godoc
// @Summary Record many grades in one call
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.BulkGradeRequest true "Grades"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/bulk [post]
func (h *GradeHandler) Bulk(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var req models.BulkGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	summary, err := h.grades.BulkRecord(c.Request.Context(), auth, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Submit moves a draft grade into the submitted state.
func (h *GradeHandler) Submit(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	grade, err := h.grades.Submit(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grade)
}

// Approve moves a submitted grade into the approved state.
func (h *GradeHandler) Approve(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	grade, err := h.grades.Approve(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grade)
}
