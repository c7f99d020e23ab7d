package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

// ApproverReviewService owns the final approval gate. Only the active field
// manager of an application sent for approval may record a review, and the
// recorded decision drives the terminal status transition.
type ApproverReviewService struct {
	repo   applicationStore
	audit  auditLogger
	logger *zap.Logger
	now    func() time.Time
}

func NewApproverReviewService(repo applicationStore, audit auditLogger, logger *zap.Logger) *ApproverReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApproverReviewService{
		repo:   repo,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Update upserts the approver's checklist and requested decision. The review
// record is created lazily on first write.
func (s *ApproverReviewService) Update(ctx context.Context, applicationID string, req dto.UpdateApproverReviewRequest, actorID string) (*models.ApproverReview, error) {
	app, err := s.loadForApprover(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}

	review := app.ApproverReview
	if review == nil {
		review = &models.ApproverReview{ID: newID(), ApplicationID: app.ID}
		app.ApproverReview = review
	}

	if req.CheckedApplication != nil {
		review.CheckedApplication = *req.CheckedApplication
	}
	if req.CheckedDocumentation != nil {
		review.CheckedDocumentation = *req.CheckedDocumentation
	}
	if req.CheckedCaseNotes != nil {
		review.CheckedCaseNotes = *req.CheckedCaseNotes
	}
	if req.CheckedReviewProcess != nil {
		review.CheckedReviewProcess = *req.CheckedReviewProcess
	}
	if req.RequestedDecision != nil {
		review.RequestedDecision = req.RequestedDecision
	}
	if req.ApprovedLicenceDuration != nil {
		review.ApprovedLicenceDuration = req.ApprovedLicenceDuration
	}
	if req.DurationChangeReason != nil {
		review.DurationChangeReason = req.DurationChangeReason
	}
	if req.PublicRegisterPublish != nil {
		review.PublicRegisterPublish = req.PublicRegisterPublish
	}
	review.LastUpdatedByID = actorID
	review.LastUpdatedAt = s.now()

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionApproverReviewUpdate, app.ID, nil)
	return review, nil
}

// Delete removes the approver review record, typically when an application
// returns to the woodland officer and a later approval round starts clean.
func (s *ApproverReviewService) Delete(ctx context.Context, applicationID, actorID string) error {
	app, err := s.loadForApprover(ctx, applicationID, actorID)
	if err != nil {
		return err
	}
	if app.ApproverReview == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "no approver review recorded")
	}
	app.ApproverReview = nil
	if err := saveApplication(ctx, s.repo, app); err != nil {
		return err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionApproverReviewDelete, app.ID, nil)
	return nil
}

// Complete finalises the approval gate. Every checklist item must be checked
// and a decision requested; the application then moves to Approved, Refused,
// or back to woodland officer review per the decision.
func (s *ApproverReviewService) Complete(ctx context.Context, applicationID, actorID string) (*dto.StatusChangeResult, error) {
	app, err := s.loadForApprover(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}

	review := app.ApproverReview
	if review == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no approver review recorded")
	}
	if !review.ChecksComplete() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "approver checklist is not complete")
	}
	if review.RequestedDecision == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no decision has been requested")
	}

	var next models.ApplicationStatus
	switch *review.RequestedDecision {
	case models.DecisionApprove:
		next = models.StatusApproved
	case models.DecisionRefuse:
		next = models.StatusRefused
	case models.DecisionReturnToWoodlandOfficer:
		next = models.StatusWoodlandOfficerReview
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognised approver decision")
	}

	app.AppendStatus(next, actorID, s.now())
	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionApproverReviewComplete, app.ID, map[string]interface{}{
		"decision":  string(*review.RequestedDecision),
		"newStatus": string(next),
	})
	return &dto.StatusChangeResult{
		ApplicationID: app.ID,
		NewStatus:     next,
		ApplicantID:   applicantID(app),
	}, nil
}

func (s *ApproverReviewService) loadForApprover(ctx context.Context, applicationID, actorID string) (*models.Application, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	if app.CurrentStatus() != models.StatusSentForApproval {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application is not sent for approval")
	}
	if !app.IsAssigned(actorID, models.AssignedRoleFieldManager) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user is not the assigned field manager")
	}
	return app, nil
}
