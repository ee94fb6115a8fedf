package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/internal/service"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// FeeHandler exposes fee structure, payment and balance endpoints.
type FeeHandler struct {
	fees *service.FeeService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees *service.FeeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// UpsertStructure godoc
// @Summary Create or replace the fee structure for a class level and term
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body models.FeeStructureRequest true "Structure"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/structures [post]
func (h *FeeHandler) UpsertStructure(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var req models.FeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	structure, err := h.fees.UpsertStructure(c.Request.Context(), auth.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, structure)
}

// ListStructures returns all fee structures of the school.
func (h *FeeHandler) ListStructures(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	structures, err := h.fees.ListStructures(c.Request.Context(), auth.SchoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, structures)
}

// RecordPayment godoc
// @Summary Record a fee payment
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body models.RecordPaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/payments [post]
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	payment, err := h.fees.RecordPayment(c.Request.Context(), auth, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// ListPayments returns one student's payment history.
func (h *FeeHandler) ListPayments(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	payments, err := h.fees.ListPayments(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payments)
}

// Balance godoc
// @Summary Fee balance for one student and term
// @Tags Fees
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string true "Term"
// @Param year query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/students/{id}/balance [get]
func (h *FeeHandler) Balance(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	term, year := c.Query("term"), c.Query("year")
	if term == "" || year == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term and year are required"))
		return
	}

	balance, err := h.fees.Balance(c.Request.Context(), auth, c.Param("id"), term, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, balance)
}

// Balances returns every student's balance for one term.
func (h *FeeHandler) Balances(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	term, year := c.Query("term"), c.Query("year")
	if term == "" || year == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term and year are required"))
		return
	}

	balances, err := h.fees.Balances(c.Request.Context(), auth.SchoolID, term, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, balances)
}

// Receipt godoc
// @Summary Download a payment receipt as PDF
// @Tags Fees
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Success 200 {string} string
// @Security BearerAuth
// @Router /fees/payments/{id}/receipt [get]
func (h *FeeHandler) Receipt(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}

	data, err := h.fees.Receipt(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
