package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/service"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
	"github.com/fc-casework/felling-licence-api/pkg/response"
)

// WoodlandOfficerHandler exposes the woodland officer review gate.
type WoodlandOfficerHandler struct {
	reviews           *service.WoodlandOfficerReviewService
	defaultPeriodDays int
}

// NewWoodlandOfficerHandler constructs WoodlandOfficerHandler. A publication
// request without an explicit period falls back to defaultPeriodDays.
func NewWoodlandOfficerHandler(reviews *service.WoodlandOfficerReviewService, defaultPeriodDays int) *WoodlandOfficerHandler {
	if defaultPeriodDays <= 0 {
		defaultPeriodDays = 28
	}
	return &WoodlandOfficerHandler{reviews: reviews, defaultPeriodDays: defaultPeriodDays}
}

func (h *WoodlandOfficerHandler) actor(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

// SetPublicRegisterExempt godoc
// @Summary Record a public register exemption decision
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.SetPublicRegisterExemptRequest true "Exemption payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/public-register/exemption [put]
func (h *WoodlandOfficerHandler) SetPublicRegisterExempt(c *gin.Context) {
	var req dto.SetPublicRegisterExemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exemption payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.SetPublicRegisterExempt(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PublishToPublicRegister godoc
// @Summary Publish the application to the consultation public register
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.PublishToPublicRegisterRequest true "Publication payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/public-register/publish [post]
func (h *WoodlandOfficerHandler) PublishToPublicRegister(c *gin.Context) {
	var req dto.PublishToPublicRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid publication payload"))
		return
	}
	if req.PeriodDays <= 0 {
		req.PeriodDays = h.defaultPeriodDays
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.PublishToPublicRegister(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveFromPublicRegister godoc
// @Summary Record removal from the consultation public register
// @Tags WoodlandOfficerReview
// @Produce json
// @Param id path string true "Application ID"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/public-register/remove [post]
func (h *WoodlandOfficerHandler) RemoveFromPublicRegister(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.RemoveFromPublicRegister(c.Request.Context(), c.Param("id"), actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetSiteVisitNotNeeded godoc
// @Summary Record that no site visit is needed
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.SiteVisitNotNeededRequest true "Reason payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/site-visit/not-needed [put]
func (h *WoodlandOfficerHandler) SetSiteVisitNotNeeded(c *gin.Context) {
	var req dto.SiteVisitNotNeededRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid site visit payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.SetSiteVisitNotNeeded(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetSiteVisitArranged godoc
// @Summary Mark the site visit as arranged
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.ArrangeSiteVisitRequest true "Arrangement payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/site-visit/arranged [put]
func (h *WoodlandOfficerHandler) SetSiteVisitArranged(c *gin.Context) {
	var req dto.ArrangeSiteVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid site visit payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.SetSiteVisitArranged(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CompleteSiteVisit godoc
// @Summary Mark the site visit complete
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.CompleteSiteVisitRequest true "Completion payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/site-visit/complete [post]
func (h *WoodlandOfficerHandler) CompleteSiteVisit(c *gin.Context) {
	var req dto.CompleteSiteVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid site visit payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.CompleteSiteVisit(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdatePw14 godoc
// @Summary Update PW14 checklist answers
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdatePw14Request true "PW14 payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/pw14 [put]
func (h *WoodlandOfficerHandler) UpdatePw14(c *gin.Context) {
	var req dto.UpdatePw14Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pw14 payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.UpdatePw14(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateConsultations godoc
// @Summary Update consultation step flags
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateConsultationsRequest true "Consultations payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/consultations [put]
func (h *WoodlandOfficerHandler) UpdateConsultations(c *gin.Context) {
	var req dto.UpdateConsultationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid consultations payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.UpdateConsultations(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddConsulteeInvite godoc
// @Summary Invite a consultee to comment
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.AddConsulteeInviteRequest true "Invite payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/consultations/invites [post]
func (h *WoodlandOfficerHandler) AddConsulteeInvite(c *gin.Context) {
	var req dto.AddConsulteeInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invite payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.AddConsulteeInvite(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RecordConsulteeResponse godoc
// @Summary Record a consultee response against an invite
// @Tags WoodlandOfficerReview
// @Produce json
// @Param id path string true "Application ID"
// @Param inviteId path string true "Invite ID"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/consultations/invites/{inviteId}/response [post]
func (h *WoodlandOfficerHandler) RecordConsulteeResponse(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.RecordConsulteeResponse(c.Request.Context(), c.Param("id"), c.Param("inviteId"), actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateEIAScreening godoc
// @Summary Record EIA screening progress
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateEIAScreeningRequest true "Screening payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/eia-screening [put]
func (h *WoodlandOfficerHandler) UpdateEIAScreening(c *gin.Context) {
	var req dto.UpdateEIAScreeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid screening payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.UpdateEIAScreening(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ConfirmFellingAndRestocking godoc
// @Summary Confirm the reconciled felling and restocking plan
// @Tags WoodlandOfficerReview
// @Produce json
// @Param id path string true "Application ID"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/felling-and-restocking/confirm [post]
func (h *WoodlandOfficerHandler) ConfirmFellingAndRestocking(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.ConfirmFellingAndRestockingComplete(c.Request.Context(), c.Param("id"), actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateConditions godoc
// @Summary Answer the conditionality question
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateConditionsRequest true "Conditions payload"
// @Success 204
// @Router /applications/{id}/woodland-officer-review/conditions [put]
func (h *WoodlandOfficerHandler) UpdateConditions(c *gin.Context) {
	var req dto.UpdateConditionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conditions payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reviews.UpdateConditions(c.Request.Context(), c.Param("id"), req, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Get the derived woodland officer review state
// @Tags WoodlandOfficerReview
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/woodland-officer-review [get]
func (h *WoodlandOfficerHandler) Summary(c *gin.Context) {
	summary, err := h.reviews.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Complete godoc
// @Summary Complete the woodland officer review stage
// @Tags WoodlandOfficerReview
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.CompleteWoodlandOfficerReviewRequest true "Completion payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/woodland-officer-review/complete [post]
func (h *WoodlandOfficerHandler) Complete(c *gin.Context) {
	var req dto.CompleteWoodlandOfficerReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid completion payload"))
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	result, err := h.reviews.Complete(c.Request.Context(), c.Param("id"), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
