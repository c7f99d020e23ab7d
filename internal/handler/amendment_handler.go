package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/service"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
	"github.com/fc-casework/felling-licence-api/pkg/response"
)

// AmendmentHandler exposes amendment review rounds.
type AmendmentHandler struct {
	amendments *service.AmendmentReviewService
}

// NewAmendmentHandler constructs AmendmentHandler.
func NewAmendmentHandler(amendments *service.AmendmentReviewService) *AmendmentHandler {
	return &AmendmentHandler{amendments: amendments}
}

// Create godoc
// @Summary Open an amendment round with the applicant
// @Tags Amendments
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.CreateAmendmentReviewRequest true "Amendment payload"
// @Success 201 {object} response.Envelope
// @Router /applications/{id}/amendment-reviews [post]
func (h *AmendmentHandler) Create(c *gin.Context) {
	var req dto.CreateAmendmentReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid amendment payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	review, err := h.amendments.CreateReview(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// Respond godoc
// @Summary Record the applicant response to the active amendment round
// @Tags Amendments
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.AmendmentResponseRequest true "Response payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/amendment-reviews/response [post]
func (h *AmendmentHandler) Respond(c *gin.Context) {
	var req dto.AmendmentResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid response payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	review, err := h.amendments.RecordApplicantResponse(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review, nil)
}

// Complete godoc
// @Summary Close the active amendment round
// @Tags Amendments
// @Produce json
// @Param id path string true "Application ID"
// @Success 204
// @Router /applications/{id}/amendment-reviews/complete [post]
func (h *AmendmentHandler) Complete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.amendments.CompleteReview(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
