package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/service"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
	"github.com/fc-casework/felling-licence-api/pkg/response"
)

// ApproverHandler exposes the approver gate.
type ApproverHandler struct {
	reviews *service.ApproverReviewService
}

// NewApproverHandler constructs ApproverHandler.
func NewApproverHandler(reviews *service.ApproverReviewService) *ApproverHandler {
	return &ApproverHandler{reviews: reviews}
}

// Update godoc
// @Summary Update the approver checklist and requested outcome
// @Tags ApproverReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateApproverReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/approver-review [put]
func (h *ApproverHandler) Update(c *gin.Context) {
	var req dto.UpdateApproverReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	review, err := h.reviews.Update(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review, nil)
}

// Delete godoc
// @Summary Discard the in-progress approver review
// @Tags ApproverReview
// @Produce json
// @Param id path string true "Application ID"
// @Success 204
// @Router /applications/{id}/approver-review [delete]
func (h *ApproverHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Complete godoc
// @Summary Complete the approver review and apply the decision
// @Tags ApproverReview
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/approver-review/complete [post]
func (h *ApproverHandler) Complete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.reviews.Complete(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
