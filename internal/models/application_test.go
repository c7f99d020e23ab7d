package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestCurrentStatusDefaultsToDraft(t *testing.T) {
	var nilApp *Application
	assert.Equal(t, StatusDraft, nilApp.CurrentStatus())
	assert.Equal(t, StatusDraft, (&Application{}).CurrentStatus())
}

func TestCurrentStatusPicksLatestTimestamp(t *testing.T) {
	app := &Application{ID: "app-1"}
	app.AppendStatus(StatusSubmitted, "u1", base)
	app.AppendStatus(StatusAdminOfficerReview, "u2", base.Add(time.Hour))
	app.AppendStatus(StatusReceived, "u3", base.Add(30*time.Minute))

	assert.Equal(t, StatusAdminOfficerReview, app.CurrentStatus())
	// Ledger order is irrelevant, only timestamps count.
	assert.Len(t, app.StatusHistory, 3)
}

func TestCurrentStatusTieBreaksTowardsLaterEntry(t *testing.T) {
	app := &Application{ID: "app-1"}
	app.AppendStatus(StatusSubmitted, "u1", base)
	app.AppendStatus(StatusWithdrawn, "u2", base)

	assert.Equal(t, StatusWithdrawn, app.CurrentStatus())
}

func TestStatusBeforeWithdrawal(t *testing.T) {
	app := &Application{ID: "app-1"}
	app.AppendStatus(StatusSubmitted, "u1", base)
	app.AppendStatus(StatusAdminOfficerReview, "u1", base.Add(time.Hour))
	app.AppendStatus(StatusWithdrawn, "u2", base.Add(2*time.Hour))

	restored, ok := app.StatusBeforeWithdrawal()
	require.True(t, ok)
	assert.Equal(t, StatusAdminOfficerReview, restored)
}

func TestStatusBeforeWithdrawalNotWithdrawn(t *testing.T) {
	app := &Application{ID: "app-1"}
	app.AppendStatus(StatusSubmitted, "u1", base)

	_, ok := app.StatusBeforeWithdrawal()
	assert.False(t, ok)
}

func TestStatusBeforeWithdrawalNoEarlierEntry(t *testing.T) {
	app := &Application{ID: "app-1"}
	app.AppendStatus(StatusWithdrawn, "u1", base)

	_, ok := app.StatusBeforeWithdrawal()
	assert.False(t, ok)
}

func TestAssignUserExclusivityPerRole(t *testing.T) {
	app := &Application{ID: "app-1"}

	already, displaced := app.AssignUser("u1", AssignedRoleAdminOfficer, base)
	assert.False(t, already)
	assert.Nil(t, displaced)

	already, displaced = app.AssignUser("u2", AssignedRoleAdminOfficer, base.Add(time.Hour))
	assert.False(t, already)
	require.NotNil(t, displaced)
	assert.Equal(t, "u1", *displaced)

	// The old tenure is closed, not removed.
	require.Len(t, app.AssigneeHistory, 2)
	require.NotNil(t, app.AssigneeHistory[0].UnassignedAt)
	assert.Equal(t, base.Add(time.Hour), *app.AssigneeHistory[0].UnassignedAt)
	assert.Equal(t, "u2", app.ActiveAssignee(AssignedRoleAdminOfficer).AssignedUserID)
}

func TestAssignUserIdempotentForCurrentHolder(t *testing.T) {
	app := &Application{ID: "app-1"}
	app.AssignUser("u1", AssignedRoleWoodlandOfficer, base)

	already, displaced := app.AssignUser("u1", AssignedRoleWoodlandOfficer, base.Add(time.Hour))

	assert.True(t, already)
	assert.Nil(t, displaced)
	assert.Len(t, app.AssigneeHistory, 1)
}

func TestRolesAreIndependent(t *testing.T) {
	app := &Application{ID: "app-1"}
	app.AssignUser("u1", AssignedRoleAdminOfficer, base)
	app.AssignUser("u1", AssignedRoleWoodlandOfficer, base)

	assert.True(t, app.IsAssigned("u1", AssignedRoleAdminOfficer))
	assert.True(t, app.IsAssigned("u1", AssignedRoleWoodlandOfficer))
	assert.False(t, app.IsAssigned("u1", AssignedRoleFieldManager))
}

func TestUnassignUserClosesEveryActiveRole(t *testing.T) {
	app := &Application{ID: "app-1"}
	app.AssignUser("u1", AssignedRoleAdminOfficer, base)
	app.AssignUser("u1", AssignedRoleWoodlandOfficer, base)

	assert.True(t, app.UnassignUser("u1", base.Add(time.Hour)))
	assert.Nil(t, app.ActiveAssignee(AssignedRoleAdminOfficer))
	assert.Nil(t, app.ActiveAssignee(AssignedRoleWoodlandOfficer))

	assert.False(t, app.UnassignUser("u1", base.Add(2*time.Hour)))
}

func TestHasSiteVisitEvidence(t *testing.T) {
	app := &Application{ID: "app-1"}
	assert.False(t, app.HasSiteVisitEvidence())

	app.CaseNotes = []CaseNote{{Type: CaseNoteGeneral}}
	assert.False(t, app.HasSiteVisitEvidence())

	app.CaseNotes = append(app.CaseNotes, CaseNote{Type: CaseNoteSiteVisit})
	assert.True(t, app.HasSiteVisitEvidence())

	app.CaseNotes = nil
	app.Documents = []Document{{Purpose: DocumentPurposeSiteVisitAttachment}}
	assert.True(t, app.HasSiteVisitEvidence())
}

func TestLatestActiveAmendmentReview(t *testing.T) {
	app := &Application{ID: "app-1"}
	assert.Nil(t, app.LatestActiveAmendmentReview())

	app.AmendmentReviews = []FellingAndRestockingAmendmentReview{
		{ID: "r1", AmendmentsSentDate: base, AmendmentReviewCompleted: true},
		{ID: "r2", AmendmentsSentDate: base.Add(time.Hour)},
		{ID: "r3", AmendmentsSentDate: base.Add(2 * time.Hour), AmendmentReviewCompleted: true},
	}
	active := app.LatestActiveAmendmentReview()
	require.NotNil(t, active)
	assert.Equal(t, "r2", active.ID)
}

func TestCompartmentNameFallsBackToRawID(t *testing.T) {
	sub := "ii"
	app := &Application{
		SubmittedCompartments: []SubmittedCompartment{
			{ID: "sc-1", CompartmentNumber: "3"},
			{ID: "sc-2", CompartmentNumber: "4", SubCompartmentName: &sub},
		},
	}
	assert.Equal(t, "3", app.CompartmentName("sc-1"))
	assert.Equal(t, "4/ii", app.CompartmentName("sc-2"))
	assert.Equal(t, "sc-unknown", app.CompartmentName("sc-unknown"))
}

func TestConfirmedFellingDetailLookups(t *testing.T) {
	proposedID := "pfd-1"
	app := &Application{
		SubmittedCompartments: []SubmittedCompartment{
			{ID: "sc-1", ConfirmedFellingDetails: []ConfirmedFellingDetail{
				{ID: "cfd-1", ProposedFellingDetailID: &proposedID},
				{ID: "cfd-2"},
			}},
		},
	}

	sc, cfd := app.ConfirmedFellingDetailByID("cfd-2")
	require.NotNil(t, cfd)
	assert.Equal(t, "sc-1", sc.ID)

	_, byProposed := app.ConfirmedFellingDetailByProposedID("pfd-1")
	require.NotNil(t, byProposed)
	assert.Equal(t, "cfd-1", byProposed.ID)

	_, none := app.ConfirmedFellingDetailByProposedID("pfd-missing")
	assert.Nil(t, none)

	assert.True(t, app.HasConfirmedFellingDetail())
}
