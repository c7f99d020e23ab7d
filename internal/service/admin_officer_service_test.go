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

func newAdminOfficerFixture(app *models.Application) (*AdminOfficerReviewService, *fakeApplicationStore, *fakeAudit) {
	store := &fakeApplicationStore{app: app}
	audit := &fakeAudit{}
	svc := NewAdminOfficerReviewService(store, audit, nil)
	svc.now = fixedClock
	return svc, store, audit
}

func passedCheck() models.ReviewCheck {
	return models.ReviewCheck{Checked: boolPtr(true), Passed: boolPtr(true)}
}

func TestUpdateCheckCreatesReviewLazily(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	svc, store, audit := newAdminOfficerFixture(app)

	err := svc.UpdateMappingCheck(context.Background(), "app-1", dto.UpdateReviewCheckRequest{
		Checked: boolPtr(true),
		Passed:  boolPtr(true),
	}, "admin-1")

	require.NoError(t, err)
	require.NotNil(t, app.AdminOfficerReview)
	assert.True(t, app.AdminOfficerReview.Mapping.CheckedTrue())
	assert.True(t, app.AdminOfficerReview.Mapping.PassedTrue())
	assert.Equal(t, "admin-1", app.AdminOfficerReview.LastUpdatedByID)
	assert.Equal(t, testNow, app.AdminOfficerReview.LastUpdatedAt)
	assert.True(t, store.saved)
	assert.Equal(t, models.AuditActionAdminOfficerCheckUpdate, audit.lastAction())
}

func TestUpdateCheckRecordsFailure(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	svc, _, _ := newAdminOfficerFixture(app)

	err := svc.UpdateConstraintsCheck(context.Background(), "app-1", dto.UpdateReviewCheckRequest{
		Checked:       boolPtr(true),
		Passed:        boolPtr(false),
		FailureReason: strPtr("boundary dispute unresolved"),
	}, "admin-1")

	require.NoError(t, err)
	c := app.AdminOfficerReview.Constraints
	require.NotNil(t, c.FailureReason)
	assert.Equal(t, "boundary dispute unresolved", *c.FailureReason)
}

func TestUpdateCheckRejectsWrongStage(t *testing.T) {
	app := newTestApplication(models.StatusWoodlandOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	svc, store, _ := newAdminOfficerFixture(app)

	err := svc.UpdateMappingCheck(context.Background(), "app-1", dto.UpdateReviewCheckRequest{Checked: boolPtr(true)}, "admin-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
	assert.False(t, store.saved)
}

func TestUpdateCheckRejectsNonAssignee(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	svc, _, _ := newAdminOfficerFixture(app)

	err := svc.UpdateMappingCheck(context.Background(), "app-1", dto.UpdateReviewCheckRequest{Checked: boolPtr(true)}, "intruder")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, err.(*appErrors.Error).Code)
}

func TestUpdateLarchCheckRequiresLarchSpecies(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	svc, _, _ := newAdminOfficerFixture(app)

	err := svc.UpdateLarchCheck(context.Background(), "app-1", dto.UpdateLarchCheckRequest{LarchChecked: boolPtr(true)}, "admin-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
}

func TestUpdateLarchCheckSharedRecord(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	app.IsLarchApplication = true
	svc, store, _ := newAdminOfficerFixture(app)

	err := svc.UpdateLarchCheck(context.Background(), "app-1", dto.UpdateLarchCheckRequest{
		LarchChecked:         boolPtr(true),
		ConfirmInspectionLog: boolPtr(true),
	}, "admin-1")

	require.NoError(t, err)
	require.NotNil(t, app.LarchCheck)
	assert.True(t, *app.LarchCheck.LarchChecked)
	assert.True(t, app.LarchCheck.ConfirmInspectionLog)
	assert.True(t, store.saved)

	// A second partial update keeps earlier answers.
	flight := testNow.AddDate(0, 0, 3)
	err = svc.UpdateLarchCheck(context.Background(), "app-1", dto.UpdateLarchCheckRequest{
		FlightDate: timePtr(flight),
	}, "admin-1")
	require.NoError(t, err)
	assert.True(t, *app.LarchCheck.LarchChecked)
	require.NotNil(t, app.LarchCheck.FlightDate)
	assert.Equal(t, flight, *app.LarchCheck.FlightDate)
}

func TestSummaryDerivesConditionalChecks(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	app.IsAgencyApplication = true
	app.IsLarchApplication = true
	app.IsCBWApplication = true
	svc, _, _ := newAdminOfficerFixture(app)

	// Nothing recorded yet.
	summary, err := svc.Summary(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckNotStarted, summary.AgentAuthorityForm)
	assert.Equal(t, models.CheckNotStarted, summary.Mapping)
	assert.Equal(t, models.CheckCannotStartYet, summary.Constraints)
	assert.Equal(t, models.CheckCannotStartYet, summary.LarchCheck)
	assert.Equal(t, models.CheckCannotStartYet, summary.CBW)
	assert.Equal(t, models.CheckNotRequired, summary.EIA)
	assert.Equal(t, models.CheckNotRequired, summary.LarchFlyover)
	assert.False(t, summary.Complete)

	// Mapping and agent authority pass; constraints unlock.
	app.AdminOfficerReview = &models.AdminOfficerReview{
		ID:                 "rev-1",
		ApplicationID:      "app-1",
		AgentAuthorityForm: passedCheck(),
		Mapping:            passedCheck(),
	}
	summary, err = svc.Summary(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckCompleted, summary.AgentAuthorityForm)
	assert.Equal(t, models.CheckNotStarted, summary.Constraints)
	assert.Equal(t, models.CheckCannotStartYet, summary.LarchCheck)

	// Constraints done; larch and CBW unlock.
	app.AdminOfficerReview.Constraints = models.ReviewCheck{Checked: boolPtr(true)}
	summary, err = svc.Summary(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckCompleted, summary.Constraints)
	assert.Equal(t, models.CheckNotStarted, summary.LarchCheck)
	assert.Equal(t, models.CheckNotStarted, summary.CBW)

	// A no answer to CBW still counts as done.
	app.AdminOfficerReview.CBW = models.ReviewCheck{Checked: boolPtr(false)}
	summary, err = svc.Summary(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckCompleted, summary.CBW)
}

func TestSummaryNonAgencySkipsAgentAuthority(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	svc, _, _ := newAdminOfficerFixture(app)

	summary, err := svc.Summary(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckNotRequired, summary.AgentAuthorityForm)
	assert.Equal(t, models.CheckNotRequired, summary.LarchCheck)
	assert.Equal(t, models.CheckNotRequired, summary.CBW)
	assert.Equal(t, models.CheckNotRequired, summary.EIA)
}

func TestLarchFlyoverLifecycle(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	app.IsLarchApplication = true
	app.AdminOfficerReview = &models.AdminOfficerReview{
		ID:            "rev-1",
		ApplicationID: "app-1",
		Mapping:       passedCheck(),
		Constraints:   models.ReviewCheck{Checked: boolPtr(true)},
	}
	svc, _, _ := newAdminOfficerFixture(app)

	// Inspection log confirmed but larch check unfinished: flyover blocked.
	app.LarchCheck = &models.LarchCheckDetails{
		ID:                   "larch-1",
		ApplicationID:        "app-1",
		LarchChecked:         boolPtr(false),
		ConfirmInspectionLog: true,
	}
	summary, err := svc.Summary(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckInProgress, summary.LarchCheck)
	assert.Equal(t, models.CheckCannotStartYet, summary.LarchFlyover)

	app.LarchCheck.LarchChecked = boolPtr(true)
	summary, err = svc.Summary(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckCompleted, summary.LarchCheck)
	assert.Equal(t, models.CheckNotStarted, summary.LarchFlyover)

	app.LarchCheck.FlightDate = timePtr(testNow)
	summary, err = svc.Summary(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckCompleted, summary.LarchFlyover)
}

func completeReadyAdminReview(app *models.Application) {
	app.AdminOfficerReview = &models.AdminOfficerReview{
		ID:            "rev-1",
		ApplicationID: app.ID,
		Mapping:       passedCheck(),
		Constraints:   models.ReviewCheck{Checked: boolPtr(true)},
	}
}

func TestCompleteRoutesToWoodlandOfficer(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	app.AssignUser("wo-1", models.AssignedRoleWoodlandOfficer, testNow.Add(-time.Hour))
	completeReadyAdminReview(app)
	svc, store, audit := newAdminOfficerFixture(app)

	result, err := svc.Complete(context.Background(), "app-1", dto.CompleteAdminOfficerReviewRequest{
		RequireWoodlandOfficerReview: true,
	}, "admin-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusWoodlandOfficerReview, result.NewStatus)
	assert.Equal(t, "wo-1", result.NextAssigneeID)
	assert.Equal(t, models.AssignedRoleWoodlandOfficer, result.NextAssigneeRole)
	assert.Equal(t, "applicant-1", result.ApplicantID)
	assert.Equal(t, models.StatusWoodlandOfficerReview, app.CurrentStatus())
	assert.True(t, app.AdminOfficerReview.Complete)
	assert.True(t, store.saved)
	assert.Equal(t, models.AuditActionAdminOfficerReviewComplete, audit.lastAction())
}

func TestCompleteSkipsStraightToApproval(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	app.AssignUser("fm-1", models.AssignedRoleFieldManager, testNow.Add(-time.Hour))
	completeReadyAdminReview(app)
	svc, _, _ := newAdminOfficerFixture(app)

	result, err := svc.Complete(context.Background(), "app-1", dto.CompleteAdminOfficerReviewRequest{
		RequireWoodlandOfficerReview: false,
	}, "admin-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusSentForApproval, result.NewStatus)
	assert.Equal(t, "fm-1", result.NextAssigneeID)
	assert.Equal(t, models.AssignedRoleFieldManager, result.NextAssigneeRole)
	assert.Equal(t, models.StatusSentForApproval, app.CurrentStatus())
}

func TestCompleteRejectsUncheckedMapping(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	app.AssignUser("wo-1", models.AssignedRoleWoodlandOfficer, testNow.Add(-time.Hour))
	app.AdminOfficerReview = &models.AdminOfficerReview{ID: "rev-1", ApplicationID: "app-1"}
	svc, store, _ := newAdminOfficerFixture(app)

	_, err := svc.Complete(context.Background(), "app-1", dto.CompleteAdminOfficerReviewRequest{
		RequireWoodlandOfficerReview: true,
	}, "admin-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
	assert.False(t, store.saved)
	assert.False(t, app.AdminOfficerReview.Complete)
	assert.Equal(t, models.StatusAdminOfficerReview, app.CurrentStatus())
}

func TestCompleteAgencyRequiresAgentAuthority(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	app.IsAgencyApplication = true
	app.AssignUser("wo-1", models.AssignedRoleWoodlandOfficer, testNow.Add(-time.Hour))
	completeReadyAdminReview(app)
	svc, _, _ := newAdminOfficerFixture(app)

	_, err := svc.Complete(context.Background(), "app-1", dto.CompleteAdminOfficerReviewRequest{
		RequireWoodlandOfficerReview: true,
	}, "admin-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)

	app.AdminOfficerReview.AgentAuthorityForm = passedCheck()
	_, err = svc.Complete(context.Background(), "app-1", dto.CompleteAdminOfficerReviewRequest{
		RequireWoodlandOfficerReview: true,
	}, "admin-1")
	require.NoError(t, err)
}

func TestCompleteRequiresNextAssignee(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	completeReadyAdminReview(app)
	svc, store, _ := newAdminOfficerFixture(app)

	_, err := svc.Complete(context.Background(), "app-1", dto.CompleteAdminOfficerReviewRequest{
		RequireWoodlandOfficerReview: true,
	}, "admin-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
	assert.False(t, store.saved)
}

func TestCompleteWithoutReviewStarted(t *testing.T) {
	app := newTestApplication(models.StatusAdminOfficerReview, models.AssignedRoleAdminOfficer, "admin-1")
	svc, _, _ := newAdminOfficerFixture(app)

	_, err := svc.Complete(context.Background(), "app-1", dto.CompleteAdminOfficerReviewRequest{
		RequireWoodlandOfficerReview: true,
	}, "admin-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
}
