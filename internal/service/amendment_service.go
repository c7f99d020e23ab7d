package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

// amendmentCandidateStore narrows the repository to the sweep query over
// applications carrying an unresolved amendment round.
type amendmentCandidateStore interface {
	ListWithActiveAmendmentReviews(ctx context.Context) ([]*models.Application, error)
}

// AmendmentReviewService runs the amendment rounds between woodland officer
// and applicant, and the timer sweeps that pick up overdue rounds for
// reminders and automatic withdrawal.
type AmendmentReviewService struct {
	repo       applicationStore
	candidates amendmentCandidateStore
	audit      auditLogger
	logger     *zap.Logger
	now        func() time.Time
}

func NewAmendmentReviewService(repo applicationStore, candidates amendmentCandidateStore, audit auditLogger, logger *zap.Logger) *AmendmentReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmendmentReviewService{
		repo:       repo,
		candidates: candidates,
		audit:      audit,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateReview opens a new amendment round. Only one round may be active at
// a time; the deadline must be in the future.
func (s *AmendmentReviewService) CreateReview(ctx context.Context, applicationID string, req dto.CreateAmendmentReviewRequest, actorID string) (*models.FellingAndRestockingAmendmentReview, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	if !userPermittedToAmend(app, actorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user may not open an amendment round")
	}
	if app.LatestActiveAmendmentReview() != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an amendment round is already active")
	}
	now := s.now()
	if !req.ResponseDeadline.After(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "response deadline must be in the future")
	}

	review := models.FellingAndRestockingAmendmentReview{
		ID:                 newID(),
		ApplicationID:      app.ID,
		AmendmentsSentDate: now,
		AmendmentsReason:   req.Reason,
		ResponseDeadline:   req.ResponseDeadline.UTC(),
		CreatedByID:        actorID,
		CreatedAt:          now,
	}
	app.AmendmentReviews = append(app.AmendmentReviews, review)

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionAmendmentReviewCreate, app.ID, map[string]interface{}{
		"responseDeadline": review.ResponseDeadline,
	})
	return app.LatestActiveAmendmentReview(), nil
}

// RecordApplicantResponse stores the applicant's agreement or disagreement on
// the active round. Disagreement requires a reason. A round with a response
// already recorded rejects a second one.
func (s *AmendmentReviewService) RecordApplicantResponse(ctx context.Context, applicationID string, req dto.AmendmentResponseRequest, actorID string) (*models.FellingAndRestockingAmendmentReview, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	review := app.LatestActiveAmendmentReview()
	if review == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active amendment round")
	}
	if review.ResponseReceivedDate != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a response has already been recorded for this round")
	}
	if !req.Agreed && (req.DisagreementReason == nil || *req.DisagreementReason == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "disagreement requires a reason")
	}

	now := s.now()
	agreed := req.Agreed
	review.ApplicantAgreed = &agreed
	review.ResponseReceivedDate = &now
	if req.Agreed {
		review.ApplicantDisagreementReason = nil
	} else {
		review.ApplicantDisagreementReason = req.DisagreementReason
	}

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionAmendmentReviewResponse, app.ID, map[string]interface{}{
		"agreed": req.Agreed,
	})
	return review, nil
}

// MarkReminderSent stamps the active round after the notifier has delivered a
// deadline reminder so the sweep does not pick it up again.
func (s *AmendmentReviewService) MarkReminderSent(ctx context.Context, applicationID, amendmentReviewID string) error {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return err
	}
	review := app.LatestActiveAmendmentReview()
	if review == nil || review.ID != amendmentReviewID {
		return appErrors.Clone(appErrors.ErrNotFound, "amendment round not found or no longer active")
	}
	if review.ReminderNotificationSentAt != nil {
		return nil
	}
	now := s.now()
	review.ReminderNotificationSentAt = &now
	if err := saveApplication(ctx, s.repo, app); err != nil {
		return err
	}
	emitAudit(ctx, s.audit, s.logger, systemActorID, models.AuditActionAmendmentReminderSent, app.ID, map[string]interface{}{
		"amendmentReviewId": amendmentReviewID,
	})
	return nil
}

// CompleteReview closes the active round once the officer has acted on the
// response.
func (s *AmendmentReviewService) CompleteReview(ctx context.Context, applicationID, actorID string) error {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return err
	}
	if !userPermittedToAmend(app, actorID) {
		return appErrors.Clone(appErrors.ErrForbidden, "user may not close an amendment round")
	}
	review := app.LatestActiveAmendmentReview()
	if review == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "no active amendment round")
	}
	review.AmendmentReviewCompleted = true
	return saveApplication(ctx, s.repo, app)
}

// ForReminder lists the applications whose active round falls due within the
// window and has had no reminder and no response.
func (s *AmendmentReviewService) ForReminder(ctx context.Context, window time.Duration) ([]dto.LateAmendmentResponse, error) {
	return s.sweep(ctx, func(r *models.FellingAndRestockingAmendmentReview, now time.Time) bool {
		return r.DueReminder(now, window)
	})
}

// ForWithdrawal lists the applications whose active round is past its
// deadline with no response, eligible for automatic withdrawal.
func (s *AmendmentReviewService) ForWithdrawal(ctx context.Context) ([]dto.LateAmendmentResponse, error) {
	return s.sweep(ctx, func(r *models.FellingAndRestockingAmendmentReview, now time.Time) bool {
		return r.DueWithdrawal(now)
	})
}

func (s *AmendmentReviewService) sweep(ctx context.Context, due func(*models.FellingAndRestockingAmendmentReview, time.Time) bool) ([]dto.LateAmendmentResponse, error) {
	apps, err := s.candidates.ListWithActiveAmendmentReviews(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list active amendment rounds")
	}
	now := s.now()
	var out []dto.LateAmendmentResponse
	for _, app := range apps {
		review := app.LatestActiveAmendmentReview()
		if review == nil || !due(review, now) {
			continue
		}
		late := dto.LateAmendmentResponse{
			ApplicationID:        app.ID,
			ApplicationReference: app.Reference,
			AmendmentReviewID:    review.ID,
			ResponseDeadline:     review.ResponseDeadline,
			ApplicantID:          applicantID(app),
		}
		if wo := app.ActiveAssignee(models.AssignedRoleWoodlandOfficer); wo != nil {
			late.WoodlandOfficerID = wo.AssignedUserID
		}
		out = append(out, late)
	}
	return out, nil
}
