package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

// AdminOfficerReviewService runs the admin officer review gate: the fixed
// set of conditional checklist items and the stage completion rule.
type AdminOfficerReviewService struct {
	repo   applicationStore
	audit  auditLogger
	logger *zap.Logger
	now    func() time.Time
}

// NewAdminOfficerReviewService constructs the service.
func NewAdminOfficerReviewService(repo applicationStore, audit auditLogger, logger *zap.Logger) *AdminOfficerReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminOfficerReviewService{
		repo:   repo,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// adminOfficerCheck names one updatable check item.
type adminOfficerCheck string

const (
	checkAgentAuthorityForm adminOfficerCheck = "agent_authority_form"
	checkMapping            adminOfficerCheck = "mapping"
	checkConstraints        adminOfficerCheck = "constraints"
	checkCBW                adminOfficerCheck = "cbw"
	checkEIA                adminOfficerCheck = "eia"
)

// UpdateAgentAuthorityFormCheck records agent authority form progress.
func (s *AdminOfficerReviewService) UpdateAgentAuthorityFormCheck(ctx context.Context, applicationID string, req dto.UpdateReviewCheckRequest, actorID string) error {
	return s.updateCheck(ctx, applicationID, checkAgentAuthorityForm, req, actorID)
}

// UpdateMappingCheck records mapping check progress.
func (s *AdminOfficerReviewService) UpdateMappingCheck(ctx context.Context, applicationID string, req dto.UpdateReviewCheckRequest, actorID string) error {
	return s.updateCheck(ctx, applicationID, checkMapping, req, actorID)
}

// UpdateConstraintsCheck records constraints check progress.
func (s *AdminOfficerReviewService) UpdateConstraintsCheck(ctx context.Context, applicationID string, req dto.UpdateReviewCheckRequest, actorID string) error {
	return s.updateCheck(ctx, applicationID, checkConstraints, req, actorID)
}

// UpdateCBWCheck records the cricket bat willow answer.
func (s *AdminOfficerReviewService) UpdateCBWCheck(ctx context.Context, applicationID string, req dto.UpdateReviewCheckRequest, actorID string) error {
	return s.updateCheck(ctx, applicationID, checkCBW, req, actorID)
}

// UpdateEIACheck records the EIA answer.
func (s *AdminOfficerReviewService) UpdateEIACheck(ctx context.Context, applicationID string, req dto.UpdateReviewCheckRequest, actorID string) error {
	return s.updateCheck(ctx, applicationID, checkEIA, req, actorID)
}

func (s *AdminOfficerReviewService) updateCheck(ctx context.Context, applicationID string, check adminOfficerCheck, req dto.UpdateReviewCheckRequest, actorID string) error {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return err
	}
	if err := s.requireActingAdminOfficer(app, actorID); err != nil {
		return err
	}

	review := s.ensureReview(app, actorID)
	target := map[adminOfficerCheck]*models.ReviewCheck{
		checkAgentAuthorityForm: &review.AgentAuthorityForm,
		checkMapping:            &review.Mapping,
		checkConstraints:        &review.Constraints,
		checkCBW:                &review.CBW,
		checkEIA:                &review.EIA,
	}[check]

	target.Checked = req.Checked
	target.Passed = req.Passed
	target.FailureReason = req.FailureReason
	review.LastUpdatedByID = actorID
	review.LastUpdatedAt = s.now()

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionAdminOfficerCheckUpdate, app.ID, map[string]interface{}{
		"check":   string(check),
		"checked": req.Checked,
		"passed":  req.Passed,
	})
	return nil
}

// UpdateLarchCheck updates the larch inspection record shared by both
// officer stages; either active officer may record it while the application
// sits in an officer review stage.
func (s *AdminOfficerReviewService) UpdateLarchCheck(ctx context.Context, applicationID string, req dto.UpdateLarchCheckRequest, actorID string) error {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return err
	}
	if !app.IsLarchApplication {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "application has no larch species")
	}
	if !userPermittedToAmend(app, actorID) {
		return appErrors.Clone(appErrors.ErrForbidden, "user is not an active case officer for this application")
	}

	now := s.now()
	if app.LarchCheck == nil {
		app.LarchCheck = &models.LarchCheckDetails{
			ID:            newID(),
			ApplicationID: app.ID,
		}
	}
	lc := app.LarchCheck
	if req.LarchChecked != nil {
		lc.LarchChecked = req.LarchChecked
	}
	if req.ConfirmInspectionLog != nil {
		lc.ConfirmInspectionLog = *req.ConfirmInspectionLog
	}
	if req.FlightDate != nil {
		lc.FlightDate = req.FlightDate
	}
	if req.FlightObservations != nil {
		lc.FlightObservations = req.FlightObservations
	}
	lc.LastUpdatedByID = actorID
	lc.LastUpdatedAt = now

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionAdminOfficerCheckUpdate, app.ID, map[string]interface{}{
		"check":        "larch",
		"larchChecked": lc.LarchChecked,
	})
	return nil
}

// Summary derives the state of every admin officer check item.
func (s *AdminOfficerReviewService) Summary(ctx context.Context, applicationID string) (*dto.AdminOfficerReviewSummary, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	review := app.AdminOfficerReview
	return &dto.AdminOfficerReviewSummary{
		ApplicationID:      app.ID,
		AgentAuthorityForm: review.AgentAuthorityStatus(app.IsAgencyApplication),
		Mapping:            review.MappingStatus(),
		Constraints:        review.ConstraintsStatus(app.IsAgencyApplication),
		LarchCheck:         review.LarchStatus(app.IsLarchApplication, app.LarchCheck),
		LarchFlyover:       models.LarchFlyoverStatus(app.IsLarchApplication, app.LarchCheck),
		CBW:                review.CBWStatus(app.IsCBWApplication),
		EIA:                review.EIAStatus(app.IsEIAApplication),
		Complete:           review != nil && review.Complete,
	}, nil
}

// Complete closes the admin officer stage and routes the application either
// to the woodland officer stage or, for skip workflows, straight to
// approval. All preconditions are checked before any mutation; any failure
// aborts with no change.
func (s *AdminOfficerReviewService) Complete(ctx context.Context, applicationID string, req dto.CompleteAdminOfficerReviewRequest, actorID string) (*dto.CompleteReviewResult, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireActingAdminOfficer(app, actorID); err != nil {
		return nil, err
	}

	review := app.AdminOfficerReview
	if review == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "admin officer review has not been started")
	}
	if app.IsAgencyApplication && !review.AgentAuthorityForm.CheckedTrue() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "agent authority form has not been checked")
	}
	if !review.Mapping.CheckedTrue() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "mapping has not been checked")
	}
	if !review.Constraints.CheckedTrue() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "constraints have not been checked")
	}

	nextRole := models.AssignedRoleWoodlandOfficer
	nextStatus := models.StatusWoodlandOfficerReview
	if !req.RequireWoodlandOfficerReview {
		nextRole = models.AssignedRoleFieldManager
		nextStatus = models.StatusSentForApproval
	}
	next := app.ActiveAssignee(nextRole)
	if next == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active "+string(nextRole)+" is assigned")
	}

	now := s.now()
	review.Complete = true
	review.LastUpdatedByID = actorID
	review.LastUpdatedAt = now
	app.AppendStatus(nextStatus, actorID, now)

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}

	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionAdminOfficerReviewComplete, app.ID, map[string]interface{}{
		"newStatus": nextStatus,
	})
	return &dto.CompleteReviewResult{
		ApplicationID:    app.ID,
		NewStatus:        nextStatus,
		ApplicantID:      applicantID(app),
		NextAssigneeID:   next.AssignedUserID,
		NextAssigneeRole: nextRole,
	}, nil
}

func (s *AdminOfficerReviewService) requireActingAdminOfficer(app *models.Application, actorID string) error {
	if app.CurrentStatus() != models.StatusAdminOfficerReview {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "application is not in admin officer review")
	}
	active := app.ActiveAssignee(models.AssignedRoleAdminOfficer)
	if active == nil || active.AssignedUserID != actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "user is not the active admin officer for this application")
	}
	return nil
}

func (s *AdminOfficerReviewService) ensureReview(app *models.Application, actorID string) *models.AdminOfficerReview {
	if app.AdminOfficerReview == nil {
		app.AdminOfficerReview = &models.AdminOfficerReview{
			ID:              newID(),
			ApplicationID:   app.ID,
			LastUpdatedByID: actorID,
			LastUpdatedAt:   s.now(),
		}
	}
	return app.AdminOfficerReview
}
