package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/service"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
	"github.com/fc-casework/felling-licence-api/pkg/response"
)

// AdminOfficerHandler exposes the admin officer review gate.
type AdminOfficerHandler struct {
	reviews *service.AdminOfficerReviewService
}

// NewAdminOfficerHandler constructs AdminOfficerHandler.
func NewAdminOfficerHandler(reviews *service.AdminOfficerReviewService) *AdminOfficerHandler {
	return &AdminOfficerHandler{reviews: reviews}
}

// UpdateCheck godoc
// @Summary Update one admin officer review check
// @Tags AdminOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param check path string true "Check name" Enums(agent-authority-form, mapping, constraints, cbw, eia)
// @Param payload body dto.UpdateReviewCheckRequest true "Check payload"
// @Success 204
// @Router /applications/{id}/admin-officer-review/checks/{check} [put]
func (h *AdminOfficerHandler) UpdateCheck(c *gin.Context) {
	var req dto.UpdateReviewCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	applicationID := c.Param("id")
	var err error
	switch c.Param("check") {
	case "agent-authority-form":
		err = h.reviews.UpdateAgentAuthorityFormCheck(ctx, applicationID, req, claims.UserID)
	case "mapping":
		err = h.reviews.UpdateMappingCheck(ctx, applicationID, req, claims.UserID)
	case "constraints":
		err = h.reviews.UpdateConstraintsCheck(ctx, applicationID, req, claims.UserID)
	case "cbw":
		err = h.reviews.UpdateCBWCheck(ctx, applicationID, req, claims.UserID)
	case "eia":
		err = h.reviews.UpdateEIACheck(ctx, applicationID, req, claims.UserID)
	default:
		err = appErrors.Clone(appErrors.ErrValidation, "unknown check name")
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateLarchCheck godoc
// @Summary Update the shared larch inspection record
// @Tags AdminOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateLarchCheckRequest true "Larch payload"
// @Success 204
// @Router /applications/{id}/admin-officer-review/larch [put]
func (h *AdminOfficerHandler) UpdateLarchCheck(c *gin.Context) {
	var req dto.UpdateLarchCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid larch payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.reviews.UpdateLarchCheck(c.Request.Context(), c.Param("id"), req, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Get the derived admin officer review state
// @Tags AdminOfficerReview
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/admin-officer-review [get]
func (h *AdminOfficerHandler) Summary(c *gin.Context) {
	summary, err := h.reviews.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Complete godoc
// @Summary Complete the admin officer review stage
// @Tags AdminOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.CompleteAdminOfficerReviewRequest true "Completion payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/admin-officer-review/complete [post]
func (h *AdminOfficerHandler) Complete(c *gin.Context) {
	var req dto.CompleteAdminOfficerReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid completion payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.reviews.Complete(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
