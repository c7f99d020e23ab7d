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

type fakeCandidateStore struct {
	apps []*models.Application
	err  error
}

func (f *fakeCandidateStore) ListWithActiveAmendmentReviews(_ context.Context) ([]*models.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.apps, nil
}

func newAmendmentFixture(app *models.Application, candidates []*models.Application) (*AmendmentReviewService, *fakeApplicationStore, *fakeAudit) {
	store := &fakeApplicationStore{app: app}
	audit := &fakeAudit{}
	svc := NewAmendmentReviewService(store, &fakeCandidateStore{apps: candidates}, audit, nil)
	svc.now = fixedClock
	return svc, store, audit
}

func TestCreateAmendmentReview(t *testing.T) {
	app := newTestApplication(models.StatusWoodlandOfficerReview, models.AssignedRoleWoodlandOfficer, "wo-1")
	svc, store, audit := newAmendmentFixture(app, nil)

	deadline := testNow.Add(14 * 24 * time.Hour)
	review, err := svc.CreateReview(context.Background(), "app-1", dto.CreateAmendmentReviewRequest{
		Reason:           "restocking density too low in compartment 2b",
		ResponseDeadline: deadline,
	}, "wo-1")

	require.NoError(t, err)
	assert.Equal(t, testNow, review.AmendmentsSentDate)
	assert.Equal(t, deadline, review.ResponseDeadline)
	assert.Equal(t, "wo-1", review.CreatedByID)
	assert.True(t, review.Active())
	assert.True(t, store.saved)
	assert.Equal(t, models.AuditActionAmendmentReviewCreate, audit.lastAction())
}

func TestCreateAmendmentReviewRejectsSecondActiveRound(t *testing.T) {
	app := newTestApplication(models.StatusWoodlandOfficerReview, models.AssignedRoleWoodlandOfficer, "wo-1")
	svc, _, _ := newAmendmentFixture(app, nil)
	deadline := testNow.Add(7 * 24 * time.Hour)
	_, err := svc.CreateReview(context.Background(), "app-1", dto.CreateAmendmentReviewRequest{
		Reason: "first round", ResponseDeadline: deadline,
	}, "wo-1")
	require.NoError(t, err)

	_, err = svc.CreateReview(context.Background(), "app-1", dto.CreateAmendmentReviewRequest{
		Reason: "second round", ResponseDeadline: deadline,
	}, "wo-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, err.(*appErrors.Error).Code)

	// Closing the round permits a new one.
	require.NoError(t, svc.CompleteReview(context.Background(), "app-1", "wo-1"))
	_, err = svc.CreateReview(context.Background(), "app-1", dto.CreateAmendmentReviewRequest{
		Reason: "second round", ResponseDeadline: deadline,
	}, "wo-1")
	require.NoError(t, err)
	assert.Len(t, app.AmendmentReviews, 2)
}

func TestCreateAmendmentReviewRejectsPastDeadline(t *testing.T) {
	app := newTestApplication(models.StatusWoodlandOfficerReview, models.AssignedRoleWoodlandOfficer, "wo-1")
	svc, _, _ := newAmendmentFixture(app, nil)

	_, err := svc.CreateReview(context.Background(), "app-1", dto.CreateAmendmentReviewRequest{
		Reason:           "late",
		ResponseDeadline: testNow.Add(-time.Hour),
	}, "wo-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, err.(*appErrors.Error).Code)
}

func TestCreateAmendmentReviewRejectsNonOfficer(t *testing.T) {
	app := newTestApplication(models.StatusWoodlandOfficerReview, models.AssignedRoleWoodlandOfficer, "wo-1")
	svc, _, _ := newAmendmentFixture(app, nil)

	_, err := svc.CreateReview(context.Background(), "app-1", dto.CreateAmendmentReviewRequest{
		Reason:           "nope",
		ResponseDeadline: testNow.Add(time.Hour),
	}, "intruder")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, err.(*appErrors.Error).Code)
}

func appWithActiveRound(deadline time.Time) *models.Application {
	app := newTestApplication(models.StatusWoodlandOfficerReview, models.AssignedRoleWoodlandOfficer, "wo-1")
	app.AmendmentReviews = append(app.AmendmentReviews, models.FellingAndRestockingAmendmentReview{
		ID:                 "amr-1",
		ApplicationID:      app.ID,
		AmendmentsSentDate: testNow.Add(-72 * time.Hour),
		AmendmentsReason:   "density",
		ResponseDeadline:   deadline,
		CreatedByID:        "wo-1",
		CreatedAt:          testNow.Add(-72 * time.Hour),
	})
	return app
}

func TestRecordApplicantAgreement(t *testing.T) {
	app := appWithActiveRound(testNow.Add(24 * time.Hour))
	svc, store, audit := newAmendmentFixture(app, nil)

	review, err := svc.RecordApplicantResponse(context.Background(), "app-1", dto.AmendmentResponseRequest{
		Agreed: true,
	}, "applicant-1")

	require.NoError(t, err)
	assert.True(t, *review.ApplicantAgreed)
	assert.Equal(t, testNow, *review.ResponseReceivedDate)
	assert.Nil(t, review.ApplicantDisagreementReason)
	assert.True(t, store.saved)
	assert.Equal(t, models.AuditActionAmendmentReviewResponse, audit.lastAction())
}

func TestRecordApplicantDisagreementRequiresReason(t *testing.T) {
	app := appWithActiveRound(testNow.Add(24 * time.Hour))
	svc, _, _ := newAmendmentFixture(app, nil)

	_, err := svc.RecordApplicantResponse(context.Background(), "app-1", dto.AmendmentResponseRequest{
		Agreed: false,
	}, "applicant-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, err.(*appErrors.Error).Code)

	review, err := svc.RecordApplicantResponse(context.Background(), "app-1", dto.AmendmentResponseRequest{
		Agreed:             false,
		DisagreementReason: strPtr("the proposed density is not viable on this soil"),
	}, "applicant-1")
	require.NoError(t, err)
	assert.False(t, *review.ApplicantAgreed)
	assert.Equal(t, "the proposed density is not viable on this soil", *review.ApplicantDisagreementReason)
}

func TestRecordApplicantResponseRejectsSecondResponse(t *testing.T) {
	app := appWithActiveRound(testNow.Add(24 * time.Hour))
	svc, _, _ := newAmendmentFixture(app, nil)
	_, err := svc.RecordApplicantResponse(context.Background(), "app-1", dto.AmendmentResponseRequest{Agreed: true}, "applicant-1")
	require.NoError(t, err)

	_, err = svc.RecordApplicantResponse(context.Background(), "app-1", dto.AmendmentResponseRequest{Agreed: false, DisagreementReason: strPtr("changed my mind")}, "applicant-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, err.(*appErrors.Error).Code)
}

func TestMarkReminderSentIdempotent(t *testing.T) {
	app := appWithActiveRound(testNow.Add(24 * time.Hour))
	svc, store, audit := newAmendmentFixture(app, nil)

	require.NoError(t, svc.MarkReminderSent(context.Background(), "app-1", "amr-1"))
	stamp := *app.AmendmentReviews[0].ReminderNotificationSentAt
	assert.Equal(t, testNow, stamp)
	assert.Equal(t, models.AuditActionAmendmentReminderSent, audit.lastAction())
	require.NotNil(t, audit.logs[0].UserID)
	assert.Equal(t, systemActorID, *audit.logs[0].UserID)

	store.saved = false
	require.NoError(t, svc.MarkReminderSent(context.Background(), "app-1", "amr-1"))
	assert.False(t, store.saved)
	assert.Equal(t, stamp, *app.AmendmentReviews[0].ReminderNotificationSentAt)
}

func TestMarkReminderSentUnknownRound(t *testing.T) {
	app := appWithActiveRound(testNow.Add(24 * time.Hour))
	svc, _, _ := newAmendmentFixture(app, nil)

	err := svc.MarkReminderSent(context.Background(), "app-1", "other")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, err.(*appErrors.Error).Code)
}

func TestForReminderFiltersByWindow(t *testing.T) {
	inWindow := appWithActiveRound(testNow.Add(24 * time.Hour))
	outOfWindow := appWithActiveRound(testNow.Add(500 * time.Hour))
	outOfWindow.ID = "app-2"
	responded := appWithActiveRound(testNow.Add(24 * time.Hour))
	responded.ID = "app-3"
	responded.AmendmentReviews[0].ResponseReceivedDate = timePtr(testNow.Add(-time.Hour))

	svc, _, _ := newAmendmentFixture(nil, []*models.Application{inWindow, outOfWindow, responded})

	due, err := svc.ForReminder(context.Background(), 48*time.Hour)

	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "app-1", due[0].ApplicationID)
	assert.Equal(t, "amr-1", due[0].AmendmentReviewID)
	assert.Equal(t, "applicant-1", due[0].ApplicantID)
	assert.Equal(t, "wo-1", due[0].WoodlandOfficerID)
}

func TestForWithdrawalPicksExpiredRounds(t *testing.T) {
	expired := appWithActiveRound(testNow.Add(-time.Hour))
	pending := appWithActiveRound(testNow.Add(time.Hour))
	pending.ID = "app-2"

	svc, _, _ := newAmendmentFixture(nil, []*models.Application{expired, pending})

	due, err := svc.ForWithdrawal(context.Background())

	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "app-1", due[0].ApplicationID)
}
