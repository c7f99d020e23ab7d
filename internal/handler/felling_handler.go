package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/service"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
	"github.com/fc-casework/felling-licence-api/pkg/response"
)

// FellingHandler exposes the confirmed felling and restocking
// reconciliation endpoints.
type FellingHandler struct {
	reconciliation *service.FellingReconciliationService
}

// NewFellingHandler constructs FellingHandler.
func NewFellingHandler(reconciliation *service.FellingReconciliationService) *FellingHandler {
	return &FellingHandler{reconciliation: reconciliation}
}

func (h *FellingHandler) actor(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

// Convert godoc
// @Summary Generate the confirmed plan from the proposed details
// @Tags FellingAndRestocking
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/confirmed-felling/convert [post]
func (h *FellingHandler) Convert(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	result, err := h.reconciliation.ConvertProposedToConfirmed(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Save amendments to the confirmed plan
// @Tags FellingAndRestocking
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.SaveConfirmedFellingAndRestockingRequest true "Confirmed plan payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/confirmed-felling [put]
func (h *FellingHandler) Save(c *gin.Context) {
	var req dto.SaveConfirmedFellingAndRestockingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid confirmed plan payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	result, err := h.reconciliation.SaveFellingAndRestocking(c.Request.Context(), c.Param("id"), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// DeleteFellingDetail godoc
// @Summary Delete one confirmed felling detail and its restocking children
// @Tags FellingAndRestocking
// @Produce json
// @Param id path string true "Application ID"
// @Param detailId path string true "Confirmed felling detail ID"
// @Success 204
// @Router /applications/{id}/confirmed-felling/{detailId} [delete]
func (h *FellingHandler) DeleteFellingDetail(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reconciliation.DeleteFellingDetail(c.Request.Context(), c.Param("id"), c.Param("detailId"), actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RevertAmendments godoc
// @Summary Restore one confirmed felling detail to its proposed values
// @Tags FellingAndRestocking
// @Produce json
// @Param id path string true "Application ID"
// @Param proposedId path string true "Proposed felling detail ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/confirmed-felling/revert/{proposedId} [post]
func (h *FellingHandler) RevertAmendments(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	result, err := h.reconciliation.RevertAmendments(c.Request.Context(), c.Param("id"), c.Param("proposedId"), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AmendedProperties godoc
// @Summary List the fields where the confirmed plan departs from the proposal
// @Tags FellingAndRestocking
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/confirmed-felling/amended-properties [get]
func (h *FellingHandler) AmendedProperties(c *gin.Context) {
	result, err := h.reconciliation.AmendedProperties(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
