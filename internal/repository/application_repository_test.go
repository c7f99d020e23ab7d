package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fc-casework/felling-licence-api/internal/models"
)

func expectApplicationRow(mock sqlmock.Sqlmock, id string) {
	rows := sqlmock.NewRows([]string{
		"id", "reference", "created_by_id", "woodland_owner_id", "area_code", "centre_point",
		"date_received", "citizens_charter_date", "final_action_date",
		"is_agency_application", "is_larch_application", "is_cbw_application", "is_eia_application",
	}).AddRow(id, "FLA/2026/001", "author-1", "owner-1", "NE", nil, time.Now(), nil, nil, false, true, false, false)
	mock.ExpectQuery("SELECT id, reference, created_by_id").WithArgs(id).WillReturnRows(rows)
}

func expectEmptyChildren(mock sqlmock.Sqlmock, id string) {
	empty := func(cols ...string) *sqlmock.Rows { return sqlmock.NewRows(cols) }
	mock.ExpectQuery("FROM application_status_history").WithArgs(id).
		WillReturnRows(empty("id", "application_id", "status", "created_by_id", "created_at"))
	mock.ExpectQuery("FROM application_assignee_history").WithArgs(id).
		WillReturnRows(empty("id", "application_id", "role", "assigned_user_id", "assigned_at", "unassigned_at"))
	mock.ExpectQuery("FROM proposed_compartments").WithArgs(id).
		WillReturnRows(empty("id", "application_id", "compartment_id", "compartment_number", "sub_compartment_name", "total_hectares"))
	mock.ExpectQuery("FROM proposed_felling_details WHERE").WithArgs(id).
		WillReturnRows(empty("id", "application_id", "compartment_id", "operation_type", "area_to_be_felled",
			"number_of_trees", "estimated_total_felling_volume", "is_part_of_tpo", "tpo_reference",
			"is_within_conservation_area", "conservation_area_reference", "is_restocking", "no_restocking_reason"))
	mock.ExpectQuery("FROM proposed_felling_species").WithArgs(id).
		WillReturnRows(empty("id", "felling_detail_id", "species_code"))
	mock.ExpectQuery("FROM proposed_restocking_details").WithArgs(id).
		WillReturnRows(empty("id", "proposed_felling_detail_id", "compartment_id", "restocking_proposal",
			"area", "percentage_of_restock_area", "restocking_density", "number_of_trees"))
	mock.ExpectQuery("FROM proposed_restocking_species").WithArgs(id).
		WillReturnRows(empty("id", "restocking_detail_id", "species_code", "percentage"))
	mock.ExpectQuery("FROM submitted_compartments WHERE").WithArgs(id).
		WillReturnRows(empty("id", "application_id", "compartment_id", "compartment_number", "sub_compartment_name", "total_hectares"))
	mock.ExpectQuery("FROM confirmed_felling_details cfd").WithArgs(id).
		WillReturnRows(empty("id", "submitted_compartment_id", "proposed_felling_detail_id", "operation_type",
			"area_to_be_felled", "number_of_trees", "estimated_total_felling_volume", "is_part_of_tpo",
			"tpo_reference", "is_within_conservation_area", "conservation_area_reference", "is_restocking", "no_restocking_reason"))
	mock.ExpectQuery("FROM confirmed_felling_species").WithArgs(id).
		WillReturnRows(empty("id", "felling_detail_id", "species_code"))
	mock.ExpectQuery("FROM confirmed_restocking_details crd").WithArgs(id).
		WillReturnRows(empty("id", "confirmed_felling_detail_id", "submitted_compartment_id",
			"proposed_restocking_detail_id", "restocking_proposal", "area", "percentage_of_restock_area",
			"restocking_density", "number_of_trees"))
	mock.ExpectQuery("FROM confirmed_restocking_species").WithArgs(id).
		WillReturnRows(empty("id", "restocking_detail_id", "species_code", "percentage"))
	mock.ExpectQuery("FROM admin_officer_reviews").WithArgs(id).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM woodland_officer_reviews").WithArgs(id).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM approver_reviews").WithArgs(id).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM larch_checks").WithArgs(id).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM public_registers").WithArgs(id).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM amendment_reviews WHERE application_id").WithArgs(id).
		WillReturnRows(empty("id", "application_id", "amendments_sent_date", "amendments_reason",
			"response_deadline", "applicant_agreed", "applicant_disagreement_reason", "response_received_date",
			"reminder_notification_sent_at", "amendment_review_completed", "created_by_id", "created_at"))
	mock.ExpectQuery("FROM consultee_invites").WithArgs(id).
		WillReturnRows(empty("id", "application_id", "name", "email", "sent_at", "responded_at"))
	mock.ExpectQuery("FROM case_notes").WithArgs(id).
		WillReturnRows(empty("id", "application_id", "type", "text", "visible_to_applicant", "created_by_id", "created_at"))
	mock.ExpectQuery("FROM documents").WithArgs(id).
		WillReturnRows(empty("id", "application_id", "purpose", "file_name", "mime_type", "location", "created_by_id", "created_at"))
}

func TestGetApplicationHydratesAggregate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	expectApplicationRow(mock, "app-1")
	expectEmptyChildren(mock, "app-1")

	app, err := repo.GetApplication(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "FLA/2026/001", app.Reference)
	assert.True(t, app.IsLarchApplication)
	assert.Equal(t, models.StatusDraft, app.CurrentStatus())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetApplicationNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT id, reference, created_by_id").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetApplication(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetApplicationLoadsStatusLedger(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "reference", "created_by_id", "woodland_owner_id", "area_code", "centre_point",
		"date_received", "citizens_charter_date", "final_action_date",
		"is_agency_application", "is_larch_application", "is_cbw_application", "is_eia_application",
	}).AddRow("app-2", "FLA/2026/002", "author-1", "owner-1", "NE", nil, time.Now(), nil, nil, false, false, false, false)
	mock.ExpectQuery("SELECT id, reference, created_by_id").WithArgs("app-2").WillReturnRows(rows)

	earlier := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	statusRows := sqlmock.NewRows([]string{"id", "application_id", "status", "created_by_id", "created_at"}).
		AddRow("s1", "app-2", string(models.StatusSubmitted), "u1", earlier).
		AddRow("s2", "app-2", string(models.StatusAdminOfficerReview), "u2", later)
	mock.ExpectQuery("FROM application_status_history").WithArgs("app-2").WillReturnRows(statusRows)

	empty := func(cols ...string) *sqlmock.Rows { return sqlmock.NewRows(cols) }
	mock.ExpectQuery("FROM application_assignee_history").WithArgs("app-2").
		WillReturnRows(empty("id", "application_id", "role", "assigned_user_id", "assigned_at", "unassigned_at"))
	mock.ExpectQuery("FROM proposed_compartments").WithArgs("app-2").
		WillReturnRows(empty("id", "application_id", "compartment_id", "compartment_number", "sub_compartment_name", "total_hectares"))
	mock.ExpectQuery("FROM proposed_felling_details WHERE").WithArgs("app-2").
		WillReturnRows(empty("id", "application_id", "compartment_id", "operation_type", "area_to_be_felled",
			"number_of_trees", "estimated_total_felling_volume", "is_part_of_tpo", "tpo_reference",
			"is_within_conservation_area", "conservation_area_reference", "is_restocking", "no_restocking_reason"))
	mock.ExpectQuery("FROM proposed_felling_species").WithArgs("app-2").
		WillReturnRows(empty("id", "felling_detail_id", "species_code"))
	mock.ExpectQuery("FROM proposed_restocking_details").WithArgs("app-2").
		WillReturnRows(empty("id", "proposed_felling_detail_id", "compartment_id", "restocking_proposal",
			"area", "percentage_of_restock_area", "restocking_density", "number_of_trees"))
	mock.ExpectQuery("FROM proposed_restocking_species").WithArgs("app-2").
		WillReturnRows(empty("id", "restocking_detail_id", "species_code", "percentage"))
	mock.ExpectQuery("FROM submitted_compartments WHERE").WithArgs("app-2").
		WillReturnRows(empty("id", "application_id", "compartment_id", "compartment_number", "sub_compartment_name", "total_hectares"))
	mock.ExpectQuery("FROM confirmed_felling_details cfd").WithArgs("app-2").
		WillReturnRows(empty("id", "submitted_compartment_id", "proposed_felling_detail_id", "operation_type",
			"area_to_be_felled", "number_of_trees", "estimated_total_felling_volume", "is_part_of_tpo",
			"tpo_reference", "is_within_conservation_area", "conservation_area_reference", "is_restocking", "no_restocking_reason"))
	mock.ExpectQuery("FROM confirmed_felling_species").WithArgs("app-2").
		WillReturnRows(empty("id", "felling_detail_id", "species_code"))
	mock.ExpectQuery("FROM confirmed_restocking_details crd").WithArgs("app-2").
		WillReturnRows(empty("id", "confirmed_felling_detail_id", "submitted_compartment_id",
			"proposed_restocking_detail_id", "restocking_proposal", "area", "percentage_of_restock_area",
			"restocking_density", "number_of_trees"))
	mock.ExpectQuery("FROM confirmed_restocking_species").WithArgs("app-2").
		WillReturnRows(empty("id", "restocking_detail_id", "species_code", "percentage"))
	mock.ExpectQuery("FROM admin_officer_reviews").WithArgs("app-2").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM woodland_officer_reviews").WithArgs("app-2").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM approver_reviews").WithArgs("app-2").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM larch_checks").WithArgs("app-2").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM public_registers").WithArgs("app-2").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM amendment_reviews WHERE application_id").WithArgs("app-2").
		WillReturnRows(empty("id", "application_id", "amendments_sent_date", "amendments_reason",
			"response_deadline", "applicant_agreed", "applicant_disagreement_reason", "response_received_date",
			"reminder_notification_sent_at", "amendment_review_completed", "created_by_id", "created_at"))
	mock.ExpectQuery("FROM consultee_invites").WithArgs("app-2").
		WillReturnRows(empty("id", "application_id", "name", "email", "sent_at", "responded_at"))
	mock.ExpectQuery("FROM case_notes").WithArgs("app-2").
		WillReturnRows(empty("id", "application_id", "type", "text", "visible_to_applicant", "created_by_id", "created_at"))
	mock.ExpectQuery("FROM documents").WithArgs("app-2").
		WillReturnRows(empty("id", "application_id", "purpose", "file_name", "mime_type", "location", "created_by_id", "created_at"))

	app, err := repo.GetApplication(context.Background(), "app-2")
	require.NoError(t, err)
	require.Len(t, app.StatusHistory, 2)
	assert.Equal(t, models.StatusAdminOfficerReview, app.CurrentStatus())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveApplicationWritesLedgersInOneTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now().UTC()
	app := &models.Application{
		ID:          "app-1",
		Reference:   "FLA/2026/001",
		CreatedByID: "author-1",
		StatusHistory: []models.StatusHistoryEntry{
			{ID: "s1", ApplicationID: "app-1", Status: models.StatusSubmitted, CreatedByID: "u1", CreatedAt: now},
		},
		AssigneeHistory: []models.AssigneeHistoryEntry{
			{ID: "a1", ApplicationID: "app-1", Role: models.AssignedRoleAdminOfficer, AssignedUserID: "u2", AssignedAt: now},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO application_status_history").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO application_assignee_history").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admin_officer_reviews WHERE application_id = $1")).
		WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM woodland_officer_reviews WHERE application_id = $1")).
		WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM approver_reviews WHERE application_id = $1")).
		WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM larch_checks WHERE application_id = $1")).
		WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM public_registers WHERE application_id = $1")).
		WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM confirmed_restocking_species").WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM confirmed_restocking_details").WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM confirmed_felling_species").WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM confirmed_felling_details").WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM amendment_reviews WHERE application_id = $1")).
		WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.SaveApplication(context.Background(), app)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveApplicationRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	app := &models.Application{ID: "app-1", Reference: "FLA/2026/001"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications SET").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.SaveApplication(context.Background(), app)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithActiveAmendmentReviews(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	idRows := sqlmock.NewRows([]string{"application_id"}).AddRow("app-1")
	mock.ExpectQuery("SELECT DISTINCT application_id FROM amendment_reviews").WillReturnRows(idRows)

	expectApplicationRow(mock, "app-1")
	expectEmptyChildren(mock, "app-1")

	apps, err := repo.ListWithActiveAmendmentReviews(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "app-1", apps[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
