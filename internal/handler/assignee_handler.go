package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/service"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
	"github.com/fc-casework/felling-licence-api/pkg/response"
)

// AssigneeHandler exposes application assignment endpoints.
type AssigneeHandler struct {
	assignees *service.AssigneeService
}

// NewAssigneeHandler constructs AssigneeHandler.
func NewAssigneeHandler(assignees *service.AssigneeService) *AssigneeHandler {
	return &AssigneeHandler{assignees: assignees}
}

// Assign godoc
// @Summary Assign a user to a role on an application
// @Tags Assignees
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.AssignApplicationRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/assignees [post]
func (h *AssigneeHandler) Assign(c *gin.Context) {
	var req dto.AssignApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.assignees.Assign(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Unassign godoc
// @Summary Remove a user from every role they hold on an application
// @Tags Assignees
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UnassignApplicationRequest true "Unassignment payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/assignees [delete]
func (h *AssigneeHandler) Unassign(c *gin.Context) {
	var req dto.UnassignApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid unassignment payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.assignees.Unassign(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
