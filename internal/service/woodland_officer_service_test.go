package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

func newWoodlandOfficerFixture(app *models.Application) (*WoodlandOfficerReviewService, *fakeApplicationStore, *fakeAudit) {
	store := &fakeApplicationStore{app: app}
	audit := &fakeAudit{}
	svc := NewWoodlandOfficerReviewService(store, audit, nil)
	svc.now = fixedClock
	return svc, store, audit
}

func newWoodlandOfficerApp() *models.Application {
	return newTestApplication(models.StatusWoodlandOfficerReview, models.AssignedRoleWoodlandOfficer, "wo-1")
}

func TestPublicRegisterExemption(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, store, audit := newWoodlandOfficerFixture(app)

	err := svc.SetPublicRegisterExempt(context.Background(), "app-1", dto.SetPublicRegisterExemptRequest{
		Exempt: true,
		Reason: "restocking conditions only",
	}, "wo-1")

	require.NoError(t, err)
	require.NotNil(t, app.PublicRegister)
	assert.True(t, *app.PublicRegister.ConsultationExempt)
	assert.Equal(t, "restocking conditions only", *app.PublicRegister.ExemptionReason)
	assert.True(t, store.saved)
	assert.Equal(t, models.AuditActionWoodlandOfficerUpdate, audit.lastAction())
}

func TestPublicRegisterExemptionRequiresReason(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, store, _ := newWoodlandOfficerFixture(app)

	err := svc.SetPublicRegisterExempt(context.Background(), "app-1", dto.SetPublicRegisterExemptRequest{Exempt: true}, "wo-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, err.(*appErrors.Error).Code)
	assert.False(t, store.saved)
}

func TestPublishToPublicRegisterSetsExpiry(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	err := svc.PublishToPublicRegister(context.Background(), "app-1", dto.PublishToPublicRegisterRequest{PeriodDays: 28}, "wo-1")

	require.NoError(t, err)
	pr := app.PublicRegister
	require.NotNil(t, pr)
	assert.Equal(t, testNow, *pr.ConsultationPublishedAt)
	assert.Equal(t, testNow.AddDate(0, 0, 28), *pr.ConsultationExpiresAt)
}

func TestPublishRejectedWhenExempt(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)
	require.NoError(t, svc.SetPublicRegisterExempt(context.Background(), "app-1", dto.SetPublicRegisterExemptRequest{
		Exempt: true,
		Reason: "exempt",
	}, "wo-1"))

	err := svc.PublishToPublicRegister(context.Background(), "app-1", dto.PublishToPublicRegisterRequest{PeriodDays: 28}, "wo-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
}

func TestRemoveFromPublicRegisterNeedsPublication(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	err := svc.RemoveFromPublicRegister(context.Background(), "app-1", "wo-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)

	require.NoError(t, svc.PublishToPublicRegister(context.Background(), "app-1", dto.PublishToPublicRegisterRequest{PeriodDays: 28}, "wo-1"))
	require.NoError(t, svc.RemoveFromPublicRegister(context.Background(), "app-1", "wo-1"))
	assert.Equal(t, testNow, *app.PublicRegister.ConsultationRemovedAt)
}

func TestSiteVisitNotNeededKeepsSingleNote(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	req := dto.SiteVisitNotNeededRequest{Reason: "recent inspection covers the site"}
	require.NoError(t, svc.SetSiteVisitNotNeeded(context.Background(), "app-1", req, "wo-1"))
	require.NoError(t, svc.SetSiteVisitNotNeeded(context.Background(), "app-1", req, "wo-1"))

	require.NotNil(t, app.WoodlandOfficerReview.SiteVisitNeeded)
	assert.False(t, *app.WoodlandOfficerReview.SiteVisitNeeded)
	assert.Len(t, app.CaseNotes, 1)
	assert.Equal(t, models.CaseNoteSiteVisit, app.CaseNotes[0].Type)
}

func TestSiteVisitLifecycle(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	require.NoError(t, svc.SetSiteVisitArranged(context.Background(), "app-1", dto.ArrangeSiteVisitRequest{}, "wo-1"))
	review := app.WoodlandOfficerReview
	assert.True(t, *review.SiteVisitNeeded)
	assert.True(t, *review.SiteVisitArranged)
	assert.Equal(t, models.CheckInProgress, review.SiteVisitStatus(app.HasSiteVisitEvidence()))

	require.NoError(t, svc.CompleteSiteVisit(context.Background(), "app-1", dto.CompleteSiteVisitRequest{
		Notes: "walked compartments 1a and 2b, no issues",
	}, "wo-1"))
	assert.True(t, review.SiteVisitComplete)
	assert.True(t, app.HasSiteVisitEvidence())
	assert.Equal(t, models.CheckCompleted, review.SiteVisitStatus(app.HasSiteVisitEvidence()))
}

func TestCompleteSiteVisitRequiresNeeded(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	err := svc.CompleteSiteVisit(context.Background(), "app-1", dto.CompleteSiteVisitRequest{}, "wo-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
}

func TestUpdatePw14NilFieldsUntouched(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	require.NoError(t, svc.UpdatePw14(context.Background(), "app-1", dto.UpdatePw14Request{
		LandInformationSearchChecked: boolPtr(true),
		AreProposalsUKFSCompliant:    boolPtr(true),
	}, "wo-1"))
	require.NoError(t, svc.UpdatePw14(context.Background(), "app-1", dto.UpdatePw14Request{
		TPOOrCADeclared: boolPtr(false),
	}, "wo-1"))

	p := app.WoodlandOfficerReview.Pw14
	assert.True(t, *p.LandInformationSearchChecked)
	assert.True(t, *p.AreProposalsUKFSCompliant)
	assert.False(t, *p.TPOOrCADeclared)
	assert.Nil(t, p.IsApplicationValid)
	assert.Equal(t, models.CheckInProgress, p.Status())
}

func TestPw14InterestDeclarationFollowUp(t *testing.T) {
	answered := dto.UpdatePw14Request{
		LandInformationSearchChecked:  boolPtr(true),
		AreProposalsUKFSCompliant:     boolPtr(true),
		TPOOrCADeclared:               boolPtr(false),
		IsApplicationValid:            boolPtr(true),
		EIAThresholdExceeded:          boolPtr(false),
		InterestDeclared:              boolPtr(true),
		ComplianceRecommendationsMade: boolPtr(false),
	}
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	require.NoError(t, svc.UpdatePw14(context.Background(), "app-1", answered, "wo-1"))
	assert.Equal(t, models.CheckInProgress, app.WoodlandOfficerReview.Pw14.Status())

	require.NoError(t, svc.UpdatePw14(context.Background(), "app-1", dto.UpdatePw14Request{
		InterestDeclarationCompleted: boolPtr(true),
	}, "wo-1"))
	assert.Equal(t, models.CheckCompleted, app.WoodlandOfficerReview.Pw14.Status())
}

func TestConsultationsWithOutstandingInvites(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	require.NoError(t, svc.AddConsulteeInvite(context.Background(), "app-1", dto.AddConsulteeInviteRequest{
		Name:  "Natural England",
		Email: "consultations@example.gov.uk",
	}, "wo-1"))
	require.NoError(t, svc.UpdateConsultations(context.Background(), "app-1", dto.UpdateConsultationsRequest{
		Complete: boolPtr(true),
	}, "wo-1"))

	review := app.WoodlandOfficerReview
	assert.True(t, *review.ConsultationsNeeded)
	assert.Equal(t, models.CheckInProgress, review.ConsultationsStatus(app.OutstandingConsulteeInvites()))

	inviteID := app.ConsulteeInvites[0].ID
	require.NoError(t, svc.RecordConsulteeResponse(context.Background(), "app-1", inviteID, "wo-1"))
	assert.Equal(t, models.CheckCompleted, review.ConsultationsStatus(app.OutstandingConsulteeInvites()))

	// A second response does not overwrite the recorded time.
	first := *app.ConsulteeInvites[0].RespondedAt
	require.NoError(t, svc.RecordConsulteeResponse(context.Background(), "app-1", inviteID, "wo-1"))
	assert.Equal(t, first, *app.ConsulteeInvites[0].RespondedAt)
}

func TestRecordConsulteeResponseUnknownInvite(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	err := svc.RecordConsulteeResponse(context.Background(), "app-1", "missing", "wo-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, err.(*appErrors.Error).Code)
}

func TestUpdateEIAScreeningRequiresEIAApplication(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	err := svc.UpdateEIAScreening(context.Background(), "app-1", dto.UpdateEIAScreeningRequest{Complete: true}, "wo-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)

	app.IsEIAApplication = true
	require.NoError(t, svc.UpdateEIAScreening(context.Background(), "app-1", dto.UpdateEIAScreeningRequest{Complete: true}, "wo-1"))
	assert.True(t, *app.WoodlandOfficerReview.EIAScreeningComplete)
}

func TestUpdateConditions(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	// A sent date before the question is answered is rejected.
	err := svc.UpdateConditions(context.Background(), "app-1", dto.UpdateConditionsRequest{
		ConditionsSentDate: timePtr(testNow),
	}, "wo-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)

	require.NoError(t, svc.UpdateConditions(context.Background(), "app-1", dto.UpdateConditionsRequest{
		IsConditional:      boolPtr(true),
		ConditionsSentDate: timePtr(testNow),
	}, "wo-1"))
	review := app.WoodlandOfficerReview
	assert.Equal(t, models.CheckCompleted, review.ConditionsStatus())

	// Flipping back to unconditional clears the sent date.
	require.NoError(t, svc.UpdateConditions(context.Background(), "app-1", dto.UpdateConditionsRequest{
		IsConditional: boolPtr(false),
	}, "wo-1"))
	assert.Nil(t, review.ConditionsToApplicantDate)
	assert.Equal(t, models.CheckCompleted, review.ConditionsStatus())
}

func TestConfirmFellingAndRestockingCompleteNeedsConfirmedDetail(t *testing.T) {
	app := newWoodlandOfficerApp()
	svc, _, _ := newWoodlandOfficerFixture(app)

	err := svc.ConfirmFellingAndRestockingComplete(context.Background(), "app-1", "wo-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)

	app.SubmittedCompartments = []models.SubmittedCompartment{{
		ID: "sc-1", ApplicationID: "app-1", CompartmentID: "c-1",
		ConfirmedFellingDetails: []models.ConfirmedFellingDetail{{ID: "cfd-1"}},
	}}
	require.NoError(t, svc.ConfirmFellingAndRestockingComplete(context.Background(), "app-1", "wo-1"))
	assert.True(t, app.WoodlandOfficerReview.ConfirmedFellingAndRestockingComplete)
}

func TestStepUpdateRejectsWrongStageOrActor(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleWoodlandOfficer, "wo-1")
	svc, _, _ := newWoodlandOfficerFixture(app)

	err := svc.UpdatePw14(context.Background(), "app-1", dto.UpdatePw14Request{IsApplicationValid: boolPtr(true)}, "wo-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)

	app2 := newWoodlandOfficerApp()
	svc2, _, _ := newWoodlandOfficerFixture(app2)
	err = svc2.UpdatePw14(context.Background(), "app-1", dto.UpdatePw14Request{IsApplicationValid: boolPtr(true)}, "intruder")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, err.(*appErrors.Error).Code)
}

// completeReadyWoodlandApp builds an aggregate where every woodland officer
// step is resolved and a field manager is assigned.
func completeReadyWoodlandApp() *models.Application {
	app := newWoodlandOfficerApp()
	app.AssignUser("fm-1", models.AssignedRoleFieldManager, testNow.Add(-time.Hour))
	app.SubmittedCompartments = []models.SubmittedCompartment{{
		ID: "sc-1", ApplicationID: "app-1", CompartmentID: "c-1",
		ConfirmedFellingDetails: []models.ConfirmedFellingDetail{{ID: "cfd-1"}},
	}}
	exempt := true
	reason := "conditions only"
	app.PublicRegister = &models.PublicRegister{
		ID: "pr-1", ApplicationID: "app-1",
		ConsultationExempt: &exempt, ExemptionReason: &reason,
	}
	app.WoodlandOfficerReview = &models.WoodlandOfficerReview{
		ID:            "rev-1",
		ApplicationID: "app-1",
		SiteVisitNeeded: boolPtr(false),
		Pw14: models.Pw14Checklist{
			LandInformationSearchChecked:  boolPtr(true),
			AreProposalsUKFSCompliant:     boolPtr(true),
			TPOOrCADeclared:               boolPtr(false),
			IsApplicationValid:            boolPtr(true),
			EIAThresholdExceeded:          boolPtr(false),
			InterestDeclared:              boolPtr(false),
			ComplianceRecommendationsMade: boolPtr(true),
		},
		ConfirmedFellingAndRestockingComplete: true,
		IsConditional:                         boolPtr(false),
	}
	return app
}

func TestCompleteWoodlandOfficerReview(t *testing.T) {
	app := completeReadyWoodlandApp()
	svc, store, audit := newWoodlandOfficerFixture(app)

	result, err := svc.Complete(context.Background(), "app-1", dto.CompleteWoodlandOfficerReviewRequest{
		RecommendedLicenceDuration:      models.DurationFiveYear,
		RecommendDecisionPublicRegister: boolPtr(true),
	}, "wo-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusSentForApproval, result.NewStatus)
	assert.Equal(t, "fm-1", result.NextAssigneeID)
	assert.Equal(t, models.AssignedRoleFieldManager, result.NextAssigneeRole)
	assert.Equal(t, models.StatusSentForApproval, app.CurrentStatus())
	assert.True(t, app.WoodlandOfficerReview.Complete)
	assert.Equal(t, models.DurationFiveYear, *app.WoodlandOfficerReview.RecommendedLicenceDuration)
	assert.True(t, store.saved)
	assert.Equal(t, models.AuditActionWoodlandOfficerReviewComplete, audit.lastAction())
}

func TestCompleteRejectsUnresolvedStep(t *testing.T) {
	app := completeReadyWoodlandApp()
	app.PublicRegister = nil
	svc, store, _ := newWoodlandOfficerFixture(app)

	_, err := svc.Complete(context.Background(), "app-1", dto.CompleteWoodlandOfficerReviewRequest{
		RecommendedLicenceDuration:      models.DurationFiveYear,
		RecommendDecisionPublicRegister: boolPtr(false),
	}, "wo-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
	assert.False(t, store.saved)
	assert.Equal(t, models.StatusWoodlandOfficerReview, app.CurrentStatus())
}

func TestCompleteRejectsUnansweredConditions(t *testing.T) {
	app := completeReadyWoodlandApp()
	app.WoodlandOfficerReview.IsConditional = nil
	svc, _, _ := newWoodlandOfficerFixture(app)

	_, err := svc.Complete(context.Background(), "app-1", dto.CompleteWoodlandOfficerReviewRequest{
		RecommendedLicenceDuration:      models.DurationOneYear,
		RecommendDecisionPublicRegister: boolPtr(false),
	}, "wo-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
}

func TestCompleteConditionalNeedsSentDate(t *testing.T) {
	app := completeReadyWoodlandApp()
	app.WoodlandOfficerReview.IsConditional = boolPtr(true)
	svc, _, _ := newWoodlandOfficerFixture(app)

	_, err := svc.Complete(context.Background(), "app-1", dto.CompleteWoodlandOfficerReviewRequest{
		RecommendedLicenceDuration:      models.DurationOneYear,
		RecommendDecisionPublicRegister: boolPtr(false),
	}, "wo-1")
	require.Error(t, err)

	app.WoodlandOfficerReview.ConditionsToApplicantDate = timePtr(testNow)
	_, err = svc.Complete(context.Background(), "app-1", dto.CompleteWoodlandOfficerReviewRequest{
		RecommendedLicenceDuration:      models.DurationOneYear,
		RecommendDecisionPublicRegister: boolPtr(false),
	}, "wo-1")
	require.NoError(t, err)
}

func TestCompleteRequiresFieldManager(t *testing.T) {
	app := completeReadyWoodlandApp()
	app.UnassignUser("fm-1", testNow)
	svc, _, _ := newWoodlandOfficerFixture(app)

	_, err := svc.Complete(context.Background(), "app-1", dto.CompleteWoodlandOfficerReviewRequest{
		RecommendedLicenceDuration:      models.DurationOneYear,
		RecommendDecisionPublicRegister: boolPtr(false),
	}, "wo-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
}
