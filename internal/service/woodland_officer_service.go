package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

// WoodlandOfficerReviewService runs the woodland officer review gate and its
// inter-dependent sub-steps.
type WoodlandOfficerReviewService struct {
	repo   applicationStore
	audit  auditLogger
	logger *zap.Logger
	now    func() time.Time
}

// NewWoodlandOfficerReviewService constructs the service.
func NewWoodlandOfficerReviewService(repo applicationStore, audit auditLogger, logger *zap.Logger) *WoodlandOfficerReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WoodlandOfficerReviewService{
		repo:   repo,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetPublicRegisterExempt records a consultation register exemption.
func (s *WoodlandOfficerReviewService) SetPublicRegisterExempt(ctx context.Context, applicationID string, req dto.SetPublicRegisterExemptRequest, actorID string) error {
	if req.Exempt && req.Reason == "" {
		return appErrors.Clone(appErrors.ErrValidation, "an exemption requires a reason")
	}
	return s.update(ctx, applicationID, actorID, "public_register_exempt", func(app *models.Application, _ *models.WoodlandOfficerReview) error {
		pr := s.ensurePublicRegister(app)
		exempt := req.Exempt
		pr.ConsultationExempt = &exempt
		if req.Exempt {
			reason := req.Reason
			pr.ExemptionReason = &reason
		} else {
			pr.ExemptionReason = nil
		}
		return nil
	})
}

// PublishToPublicRegister records publication of the application to the
// consultation public register.
func (s *WoodlandOfficerReviewService) PublishToPublicRegister(ctx context.Context, applicationID string, req dto.PublishToPublicRegisterRequest, actorID string) error {
	return s.update(ctx, applicationID, actorID, "public_register_publish", func(app *models.Application, _ *models.WoodlandOfficerReview) error {
		pr := s.ensurePublicRegister(app)
		if pr.ConsultationExempt != nil && *pr.ConsultationExempt {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "application is exempt from the consultation public register")
		}
		now := s.now()
		expires := now.AddDate(0, 0, req.PeriodDays)
		pr.ConsultationPublishedAt = &now
		pr.ConsultationExpiresAt = &expires
		return nil
	})
}

// RemoveFromPublicRegister records removal from the consultation register.
func (s *WoodlandOfficerReviewService) RemoveFromPublicRegister(ctx context.Context, applicationID string, actorID string) error {
	return s.update(ctx, applicationID, actorID, "public_register_remove", func(app *models.Application, _ *models.WoodlandOfficerReview) error {
		pr := app.PublicRegister
		if pr == nil || pr.ConsultationPublishedAt == nil {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "application has not been published to the public register")
		}
		now := s.now()
		pr.ConsultationRemovedAt = &now
		return nil
	})
}

// SetSiteVisitNotNeeded records that no visit is required. The reason is
// kept as a site visit case note; repeating the call with the same reason
// does not create a duplicate note.
func (s *WoodlandOfficerReviewService) SetSiteVisitNotNeeded(ctx context.Context, applicationID string, req dto.SiteVisitNotNeededRequest, actorID string) error {
	return s.update(ctx, applicationID, actorID, "site_visit_not_needed", func(app *models.Application, review *models.WoodlandOfficerReview) error {
		needed := false
		review.SiteVisitNeeded = &needed
		s.appendSiteVisitNote(app, req.Reason, actorID)
		return nil
	})
}

// SetSiteVisitArranged marks the visit as needed and arranged.
func (s *WoodlandOfficerReviewService) SetSiteVisitArranged(ctx context.Context, applicationID string, req dto.ArrangeSiteVisitRequest, actorID string) error {
	return s.update(ctx, applicationID, actorID, "site_visit_arranged", func(app *models.Application, review *models.WoodlandOfficerReview) error {
		needed, arranged := true, true
		review.SiteVisitNeeded = &needed
		review.SiteVisitArranged = &arranged
		if req.Notes != "" {
			s.appendSiteVisitNote(app, req.Notes, actorID)
		}
		return nil
	})
}

// CompleteSiteVisit marks the visit complete; notes become evidence.
func (s *WoodlandOfficerReviewService) CompleteSiteVisit(ctx context.Context, applicationID string, req dto.CompleteSiteVisitRequest, actorID string) error {
	return s.update(ctx, applicationID, actorID, "site_visit_complete", func(app *models.Application, review *models.WoodlandOfficerReview) error {
		if review.SiteVisitNeeded == nil || !*review.SiteVisitNeeded {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "site visit has not been marked as needed")
		}
		review.SiteVisitComplete = true
		if req.Notes != "" {
			s.appendSiteVisitNote(app, req.Notes, actorID)
		}
		return nil
	})
}

// UpdatePw14 updates answers on the PW14 checklist.
func (s *WoodlandOfficerReviewService) UpdatePw14(ctx context.Context, applicationID string, req dto.UpdatePw14Request, actorID string) error {
	return s.update(ctx, applicationID, actorID, "pw14", func(_ *models.Application, review *models.WoodlandOfficerReview) error {
		p := &review.Pw14
		apply := func(dst **bool, src *bool) {
			if src != nil {
				*dst = src
			}
		}
		apply(&p.LandInformationSearchChecked, req.LandInformationSearchChecked)
		apply(&p.AreProposalsUKFSCompliant, req.AreProposalsUKFSCompliant)
		apply(&p.TPOOrCADeclared, req.TPOOrCADeclared)
		apply(&p.IsApplicationValid, req.IsApplicationValid)
		apply(&p.EIAThresholdExceeded, req.EIAThresholdExceeded)
		apply(&p.InterestDeclared, req.InterestDeclared)
		apply(&p.InterestDeclarationCompleted, req.InterestDeclarationCompleted)
		apply(&p.ComplianceRecommendationsMade, req.ComplianceRecommendationsMade)
		return nil
	})
}

// UpdateConsultations updates the consultation step flags.
func (s *WoodlandOfficerReviewService) UpdateConsultations(ctx context.Context, applicationID string, req dto.UpdateConsultationsRequest, actorID string) error {
	return s.update(ctx, applicationID, actorID, "consultations", func(_ *models.Application, review *models.WoodlandOfficerReview) error {
		if req.Needed != nil {
			review.ConsultationsNeeded = req.Needed
		}
		if req.Complete != nil {
			review.ConsultationsComplete = req.Complete
		}
		return nil
	})
}

// AddConsulteeInvite records a consultee invitation.
func (s *WoodlandOfficerReviewService) AddConsulteeInvite(ctx context.Context, applicationID string, req dto.AddConsulteeInviteRequest, actorID string) error {
	return s.update(ctx, applicationID, actorID, "consultee_invite", func(app *models.Application, review *models.WoodlandOfficerReview) error {
		needed := true
		review.ConsultationsNeeded = &needed
		app.ConsulteeInvites = append(app.ConsulteeInvites, models.ConsulteeInvite{
			ID:            newID(),
			ApplicationID: app.ID,
			Name:          req.Name,
			Email:         req.Email,
			SentAt:        s.now(),
		})
		return nil
	})
}

// RecordConsulteeResponse closes one outstanding invite.
func (s *WoodlandOfficerReviewService) RecordConsulteeResponse(ctx context.Context, applicationID, inviteID string, actorID string) error {
	return s.update(ctx, applicationID, actorID, "consultee_response", func(app *models.Application, _ *models.WoodlandOfficerReview) error {
		for i := range app.ConsulteeInvites {
			if app.ConsulteeInvites[i].ID == inviteID {
				if app.ConsulteeInvites[i].RespondedAt == nil {
					now := s.now()
					app.ConsulteeInvites[i].RespondedAt = &now
				}
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "consultee invite not found")
	})
}

// UpdateEIAScreening records EIA screening progress.
func (s *WoodlandOfficerReviewService) UpdateEIAScreening(ctx context.Context, applicationID string, req dto.UpdateEIAScreeningRequest, actorID string) error {
	return s.update(ctx, applicationID, actorID, "eia_screening", func(app *models.Application, review *models.WoodlandOfficerReview) error {
		if !app.IsEIAApplication {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "application does not require EIA screening")
		}
		complete := req.Complete
		review.EIAScreeningComplete = &complete
		return nil
	})
}

// ConfirmFellingAndRestockingComplete marks the confirmed plan as done.
func (s *WoodlandOfficerReviewService) ConfirmFellingAndRestockingComplete(ctx context.Context, applicationID string, actorID string) error {
	return s.update(ctx, applicationID, actorID, "confirmed_fr_complete", func(app *models.Application, review *models.WoodlandOfficerReview) error {
		if !app.HasConfirmedFellingDetail() {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "no confirmed felling details exist yet")
		}
		review.ConfirmedFellingAndRestockingComplete = true
		return nil
	})
}

// UpdateConditions answers the conditionality question.
func (s *WoodlandOfficerReviewService) UpdateConditions(ctx context.Context, applicationID string, req dto.UpdateConditionsRequest, actorID string) error {
	return s.update(ctx, applicationID, actorID, "conditions", func(_ *models.Application, review *models.WoodlandOfficerReview) error {
		if req.IsConditional != nil {
			review.IsConditional = req.IsConditional
			if !*req.IsConditional {
				review.ConditionsToApplicantDate = nil
			}
		}
		if req.ConditionsSentDate != nil {
			if review.IsConditional == nil || !*review.IsConditional {
				return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot record a conditions sent date on an unconditional application")
			}
			review.ConditionsToApplicantDate = req.ConditionsSentDate
		}
		return nil
	})
}

// Summary derives the state of every woodland officer sub-step.
func (s *WoodlandOfficerReviewService) Summary(ctx context.Context, applicationID string) (*dto.WoodlandOfficerReviewSummary, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	review := app.WoodlandOfficerReview
	hasConfirmed := app.HasConfirmedFellingDetail()
	return &dto.WoodlandOfficerReviewSummary{
		ApplicationID:        app.ID,
		PublicRegister:       models.PublicRegisterStatus(app.PublicRegister),
		SiteVisit:            review.SiteVisitStatus(app.HasSiteVisitEvidence()),
		Pw14:                 s.pw14Status(review),
		FellingAndRestocking: review.FellingAndRestockingStatus(hasConfirmed),
		Conditions:           review.ConditionsStatus(),
		LarchCheck:           review.LarchStatus(app.IsLarchApplication, hasConfirmed, app.LarchCheck),
		LarchFlyover:         models.LarchFlyoverStatus(app.IsLarchApplication, app.LarchCheck),
		Consultations:        review.ConsultationsStatus(app.OutstandingConsulteeInvites()),
		EIAScreening:         review.EIAScreeningStatus(app.IsEIAApplication),
		Complete:             review != nil && review.Complete,
	}, nil
}

// Complete closes the woodland officer stage and sends the application for
// approval. Every precondition is checked before any mutation.
func (s *WoodlandOfficerReviewService) Complete(ctx context.Context, applicationID string, req dto.CompleteWoodlandOfficerReviewRequest, actorID string) (*dto.CompleteReviewResult, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireActingWoodlandOfficer(app, actorID); err != nil {
		return nil, err
	}

	fieldManager := app.ActiveAssignee(models.AssignedRoleFieldManager)
	if fieldManager == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active field manager is assigned")
	}

	review := app.WoodlandOfficerReview
	if review == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "woodland officer review has not been started")
	}
	hasConfirmed := app.HasConfirmedFellingDetail()
	steps := map[string]models.CheckStatus{
		"public register":               models.PublicRegisterStatus(app.PublicRegister),
		"site visit":                    review.SiteVisitStatus(app.HasSiteVisitEvidence()),
		"PW14 checklist":                s.pw14Status(review),
		"confirmed felling/restocking":  review.FellingAndRestockingStatus(hasConfirmed),
		"larch check":                   review.LarchStatus(app.IsLarchApplication, hasConfirmed, app.LarchCheck),
	}
	for name, status := range steps {
		if !status.Resolved() {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, name+" is not complete")
		}
	}
	if review.IsConditional == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "the conditions question has not been answered")
	}
	if *review.IsConditional && review.ConditionsToApplicantDate == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "conditions have not been sent to the applicant")
	}

	now := s.now()
	duration := req.RecommendedLicenceDuration
	review.Complete = true
	review.RecommendedLicenceDuration = &duration
	review.RecommendDecisionPublicRegister = req.RecommendDecisionPublicRegister
	review.LastUpdatedByID = actorID
	review.LastUpdatedAt = now
	app.AppendStatus(models.StatusSentForApproval, actorID, now)

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}

	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionWoodlandOfficerReviewComplete, app.ID, map[string]interface{}{
		"recommendedDuration": duration,
	})
	return &dto.CompleteReviewResult{
		ApplicationID:    app.ID,
		NewStatus:        models.StatusSentForApproval,
		ApplicantID:      applicantID(app),
		NextAssigneeID:   fieldManager.AssignedUserID,
		NextAssigneeRole: models.AssignedRoleFieldManager,
	}, nil
}

// update runs the shared load / precondition / mutate / save sequence for a
// sub-step edit.
func (s *WoodlandOfficerReviewService) update(ctx context.Context, applicationID, actorID, step string, mutate func(*models.Application, *models.WoodlandOfficerReview) error) error {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return err
	}
	if err := s.requireActingWoodlandOfficer(app, actorID); err != nil {
		return err
	}

	review := s.ensureReview(app, actorID)
	if err := mutate(app, review); err != nil {
		return err
	}
	review.LastUpdatedByID = actorID
	review.LastUpdatedAt = s.now()

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionWoodlandOfficerUpdate, app.ID, map[string]interface{}{
		"step": step,
	})
	return nil
}

func (s *WoodlandOfficerReviewService) requireActingWoodlandOfficer(app *models.Application, actorID string) error {
	if app.CurrentStatus() != models.StatusWoodlandOfficerReview {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "application is not in woodland officer review")
	}
	active := app.ActiveAssignee(models.AssignedRoleWoodlandOfficer)
	if active == nil || active.AssignedUserID != actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "user is not the active woodland officer for this application")
	}
	return nil
}

func (s *WoodlandOfficerReviewService) ensureReview(app *models.Application, actorID string) *models.WoodlandOfficerReview {
	if app.WoodlandOfficerReview == nil {
		app.WoodlandOfficerReview = &models.WoodlandOfficerReview{
			ID:              newID(),
			ApplicationID:   app.ID,
			LastUpdatedByID: actorID,
			LastUpdatedAt:   s.now(),
		}
	}
	return app.WoodlandOfficerReview
}

func (s *WoodlandOfficerReviewService) ensurePublicRegister(app *models.Application) *models.PublicRegister {
	if app.PublicRegister == nil {
		app.PublicRegister = &models.PublicRegister{
			ID:            newID(),
			ApplicationID: app.ID,
		}
	}
	return app.PublicRegister
}

func (s *WoodlandOfficerReviewService) pw14Status(review *models.WoodlandOfficerReview) models.CheckStatus {
	if review == nil {
		return models.CheckNotStarted
	}
	return review.Pw14.Status()
}

// appendSiteVisitNote records a site visit case note unless an identical
// note already exists, keeping repeated submissions idempotent.
func (s *WoodlandOfficerReviewService) appendSiteVisitNote(app *models.Application, text, actorID string) {
	for i := range app.CaseNotes {
		n := &app.CaseNotes[i]
		if n.Type == models.CaseNoteSiteVisit && n.Text == text {
			return
		}
	}
	app.CaseNotes = append(app.CaseNotes, models.CaseNote{
		ID:            newID(),
		ApplicationID: app.ID,
		Type:          models.CaseNoteSiteVisit,
		Text:          text,
		CreatedByID:   actorID,
		CreatedAt:     s.now(),
	})
}
