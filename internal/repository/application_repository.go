package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fc-casework/felling-licence-api/internal/models"
)

// ApplicationRepository persists the application aggregate. GetApplication
// returns it fully hydrated; SaveApplication writes every mutable child set
// back in one transaction.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, reference, created_by_id, woodland_owner_id, area_code, centre_point,
	date_received, citizens_charter_date, final_action_date,
	is_agency_application, is_larch_application, is_cbw_application, is_eia_application`

// GetApplication loads the aggregate with all its children. Returns
// sql.ErrNoRows when no application matches.
func (r *ApplicationRepository) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) hydrate(ctx context.Context, app *models.Application) error {
	const statusQuery = `SELECT id, application_id, status, created_by_id, created_at
        FROM application_status_history WHERE application_id = $1 ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &app.StatusHistory, statusQuery, app.ID); err != nil {
		return fmt.Errorf("load status history: %w", err)
	}

	const assigneeQuery = `SELECT id, application_id, role, assigned_user_id, assigned_at, unassigned_at
        FROM application_assignee_history WHERE application_id = $1 ORDER BY assigned_at, id`
	if err := r.db.SelectContext(ctx, &app.AssigneeHistory, assigneeQuery, app.ID); err != nil {
		return fmt.Errorf("load assignee history: %w", err)
	}

	const proposedCompartmentQuery = `SELECT id, application_id, compartment_id, compartment_number, sub_compartment_name, total_hectares
        FROM proposed_compartments WHERE application_id = $1 ORDER BY compartment_number`
	if err := r.db.SelectContext(ctx, &app.ProposedCompartments, proposedCompartmentQuery, app.ID); err != nil {
		return fmt.Errorf("load proposed compartments: %w", err)
	}

	if err := r.hydrateProposedPlan(ctx, app); err != nil {
		return err
	}
	if err := r.hydrateConfirmedPlan(ctx, app); err != nil {
		return err
	}
	if err := r.hydrateReviews(ctx, app); err != nil {
		return err
	}

	const amendmentQuery = `SELECT id, application_id, amendments_sent_date, amendments_reason, response_deadline,
        applicant_agreed, applicant_disagreement_reason, response_received_date, reminder_notification_sent_at,
        amendment_review_completed, created_by_id, created_at
        FROM amendment_reviews WHERE application_id = $1 ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &app.AmendmentReviews, amendmentQuery, app.ID); err != nil {
		return fmt.Errorf("load amendment reviews: %w", err)
	}

	const inviteQuery = `SELECT id, application_id, name, email, sent_at, responded_at
        FROM consultee_invites WHERE application_id = $1 ORDER BY sent_at, id`
	if err := r.db.SelectContext(ctx, &app.ConsulteeInvites, inviteQuery, app.ID); err != nil {
		return fmt.Errorf("load consultee invites: %w", err)
	}

	const noteQuery = `SELECT id, application_id, type, text, visible_to_applicant, created_by_id, created_at
        FROM case_notes WHERE application_id = $1 ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &app.CaseNotes, noteQuery, app.ID); err != nil {
		return fmt.Errorf("load case notes: %w", err)
	}

	const documentQuery = `SELECT id, application_id, purpose, file_name, mime_type, location, created_by_id, created_at
        FROM documents WHERE application_id = $1 ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &app.Documents, documentQuery, app.ID); err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) hydrateProposedPlan(ctx context.Context, app *models.Application) error {
	const fellingQuery = `SELECT id, application_id, compartment_id, operation_type, area_to_be_felled, number_of_trees,
        estimated_total_felling_volume, is_part_of_tpo, tpo_reference, is_within_conservation_area,
        conservation_area_reference, is_restocking, no_restocking_reason
        FROM proposed_felling_details WHERE application_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &app.ProposedFellingDetails, fellingQuery, app.ID); err != nil {
		return fmt.Errorf("load proposed felling details: %w", err)
	}

	var fellingSpecies []models.FellingSpecies
	const fellingSpeciesQuery = `SELECT fs.id, fs.felling_detail_id, fs.species_code
        FROM proposed_felling_species fs
        JOIN proposed_felling_details fd ON fd.id = fs.felling_detail_id
        WHERE fd.application_id = $1 ORDER BY fs.species_code`
	if err := r.db.SelectContext(ctx, &fellingSpecies, fellingSpeciesQuery, app.ID); err != nil {
		return fmt.Errorf("load proposed felling species: %w", err)
	}

	var restocking []models.ProposedRestockingDetail
	const restockingQuery = `SELECT rd.id, rd.proposed_felling_detail_id, rd.compartment_id, rd.restocking_proposal,
        rd.area, rd.percentage_of_restock_area, rd.restocking_density, rd.number_of_trees
        FROM proposed_restocking_details rd
        JOIN proposed_felling_details fd ON fd.id = rd.proposed_felling_detail_id
        WHERE fd.application_id = $1 ORDER BY rd.id`
	if err := r.db.SelectContext(ctx, &restocking, restockingQuery, app.ID); err != nil {
		return fmt.Errorf("load proposed restocking details: %w", err)
	}

	var restockingSpecies []models.RestockingSpecies
	const restockingSpeciesQuery = `SELECT rs.id, rs.restocking_detail_id, rs.species_code, rs.percentage
        FROM proposed_restocking_species rs
        JOIN proposed_restocking_details rd ON rd.id = rs.restocking_detail_id
        JOIN proposed_felling_details fd ON fd.id = rd.proposed_felling_detail_id
        WHERE fd.application_id = $1 ORDER BY rs.species_code`
	if err := r.db.SelectContext(ctx, &restockingSpecies, restockingSpeciesQuery, app.ID); err != nil {
		return fmt.Errorf("load proposed restocking species: %w", err)
	}

	speciesByRestocking := map[string][]models.RestockingSpecies{}
	for _, sp := range restockingSpecies {
		speciesByRestocking[sp.RestockingDetailID] = append(speciesByRestocking[sp.RestockingDetailID], sp)
	}
	restockingByFelling := map[string][]models.ProposedRestockingDetail{}
	for _, rd := range restocking {
		rd.Species = speciesByRestocking[rd.ID]
		restockingByFelling[rd.ProposedFellingDetailID] = append(restockingByFelling[rd.ProposedFellingDetailID], rd)
	}
	speciesByFelling := map[string][]models.FellingSpecies{}
	for _, sp := range fellingSpecies {
		speciesByFelling[sp.FellingDetailID] = append(speciesByFelling[sp.FellingDetailID], sp)
	}
	for i := range app.ProposedFellingDetails {
		fd := &app.ProposedFellingDetails[i]
		fd.Species = speciesByFelling[fd.ID]
		fd.RestockingDetails = restockingByFelling[fd.ID]
	}
	return nil
}

func (r *ApplicationRepository) hydrateConfirmedPlan(ctx context.Context, app *models.Application) error {
	const compartmentQuery = `SELECT id, application_id, compartment_id, compartment_number, sub_compartment_name, total_hectares
        FROM submitted_compartments WHERE application_id = $1 ORDER BY compartment_number`
	if err := r.db.SelectContext(ctx, &app.SubmittedCompartments, compartmentQuery, app.ID); err != nil {
		return fmt.Errorf("load submitted compartments: %w", err)
	}

	var felling []models.ConfirmedFellingDetail
	const fellingQuery = `SELECT cfd.id, cfd.submitted_compartment_id, cfd.proposed_felling_detail_id, cfd.operation_type,
        cfd.area_to_be_felled, cfd.number_of_trees, cfd.estimated_total_felling_volume, cfd.is_part_of_tpo,
        cfd.tpo_reference, cfd.is_within_conservation_area, cfd.conservation_area_reference,
        cfd.is_restocking, cfd.no_restocking_reason
        FROM confirmed_felling_details cfd
        JOIN submitted_compartments sc ON sc.id = cfd.submitted_compartment_id
        WHERE sc.application_id = $1 ORDER BY cfd.id`
	if err := r.db.SelectContext(ctx, &felling, fellingQuery, app.ID); err != nil {
		return fmt.Errorf("load confirmed felling details: %w", err)
	}

	var fellingSpecies []models.FellingSpecies
	const fellingSpeciesQuery = `SELECT fs.id, fs.felling_detail_id, fs.species_code
        FROM confirmed_felling_species fs
        JOIN confirmed_felling_details cfd ON cfd.id = fs.felling_detail_id
        JOIN submitted_compartments sc ON sc.id = cfd.submitted_compartment_id
        WHERE sc.application_id = $1 ORDER BY fs.species_code`
	if err := r.db.SelectContext(ctx, &fellingSpecies, fellingSpeciesQuery, app.ID); err != nil {
		return fmt.Errorf("load confirmed felling species: %w", err)
	}

	var restocking []models.ConfirmedRestockingDetail
	const restockingQuery = `SELECT crd.id, crd.confirmed_felling_detail_id, crd.submitted_compartment_id,
        crd.proposed_restocking_detail_id, crd.restocking_proposal, crd.area, crd.percentage_of_restock_area,
        crd.restocking_density, crd.number_of_trees
        FROM confirmed_restocking_details crd
        JOIN confirmed_felling_details cfd ON cfd.id = crd.confirmed_felling_detail_id
        JOIN submitted_compartments sc ON sc.id = cfd.submitted_compartment_id
        WHERE sc.application_id = $1 ORDER BY crd.id`
	if err := r.db.SelectContext(ctx, &restocking, restockingQuery, app.ID); err != nil {
		return fmt.Errorf("load confirmed restocking details: %w", err)
	}

	var restockingSpecies []models.RestockingSpecies
	const restockingSpeciesQuery = `SELECT rs.id, rs.restocking_detail_id, rs.species_code, rs.percentage
        FROM confirmed_restocking_species rs
        JOIN confirmed_restocking_details crd ON crd.id = rs.restocking_detail_id
        JOIN confirmed_felling_details cfd ON cfd.id = crd.confirmed_felling_detail_id
        JOIN submitted_compartments sc ON sc.id = cfd.submitted_compartment_id
        WHERE sc.application_id = $1 ORDER BY rs.species_code`
	if err := r.db.SelectContext(ctx, &restockingSpecies, restockingSpeciesQuery, app.ID); err != nil {
		return fmt.Errorf("load confirmed restocking species: %w", err)
	}

	speciesByRestocking := map[string][]models.RestockingSpecies{}
	for _, sp := range restockingSpecies {
		speciesByRestocking[sp.RestockingDetailID] = append(speciesByRestocking[sp.RestockingDetailID], sp)
	}
	restockingByFelling := map[string][]models.ConfirmedRestockingDetail{}
	for _, rd := range restocking {
		rd.Species = speciesByRestocking[rd.ID]
		restockingByFelling[rd.ConfirmedFellingDetailID] = append(restockingByFelling[rd.ConfirmedFellingDetailID], rd)
	}
	speciesByFelling := map[string][]models.FellingSpecies{}
	for _, sp := range fellingSpecies {
		speciesByFelling[sp.FellingDetailID] = append(speciesByFelling[sp.FellingDetailID], sp)
	}
	fellingByCompartment := map[string][]models.ConfirmedFellingDetail{}
	for _, fd := range felling {
		fd.Species = speciesByFelling[fd.ID]
		fd.RestockingDetails = restockingByFelling[fd.ID]
		fellingByCompartment[fd.SubmittedCompartmentID] = append(fellingByCompartment[fd.SubmittedCompartmentID], fd)
	}
	for i := range app.SubmittedCompartments {
		sc := &app.SubmittedCompartments[i]
		sc.ConfirmedFellingDetails = fellingByCompartment[sc.ID]
	}
	return nil
}

// adminOfficerReviewRow flattens the nested check columns for scanning.
type adminOfficerReviewRow struct {
	ID            string `db:"id"`
	ApplicationID string `db:"application_id"`

	AAChecked       *bool   `db:"aa_checked"`
	AAPassed        *bool   `db:"aa_passed"`
	AAFailureReason *string `db:"aa_failure_reason"`

	MappingChecked       *bool   `db:"mapping_checked"`
	MappingPassed        *bool   `db:"mapping_passed"`
	MappingFailureReason *string `db:"mapping_failure_reason"`

	ConstraintsChecked       *bool   `db:"constraints_checked"`
	ConstraintsPassed        *bool   `db:"constraints_passed"`
	ConstraintsFailureReason *string `db:"constraints_failure_reason"`

	CBWChecked       *bool   `db:"cbw_checked"`
	CBWPassed        *bool   `db:"cbw_passed"`
	CBWFailureReason *string `db:"cbw_failure_reason"`

	EIAChecked       *bool   `db:"eia_checked"`
	EIAPassed        *bool   `db:"eia_passed"`
	EIAFailureReason *string `db:"eia_failure_reason"`

	Complete        bool         `db:"complete"`
	LastUpdatedByID string       `db:"last_updated_by_id"`
	LastUpdatedAt   sql.NullTime `db:"last_updated_at"`
}

func (row adminOfficerReviewRow) toModel() *models.AdminOfficerReview {
	review := &models.AdminOfficerReview{
		ID:                 row.ID,
		ApplicationID:      row.ApplicationID,
		AgentAuthorityForm: models.ReviewCheck{Checked: row.AAChecked, Passed: row.AAPassed, FailureReason: row.AAFailureReason},
		Mapping:            models.ReviewCheck{Checked: row.MappingChecked, Passed: row.MappingPassed, FailureReason: row.MappingFailureReason},
		Constraints:        models.ReviewCheck{Checked: row.ConstraintsChecked, Passed: row.ConstraintsPassed, FailureReason: row.ConstraintsFailureReason},
		CBW:                models.ReviewCheck{Checked: row.CBWChecked, Passed: row.CBWPassed, FailureReason: row.CBWFailureReason},
		EIA:                models.ReviewCheck{Checked: row.EIAChecked, Passed: row.EIAPassed, FailureReason: row.EIAFailureReason},
		Complete:           row.Complete,
		LastUpdatedByID:    row.LastUpdatedByID,
	}
	if row.LastUpdatedAt.Valid {
		review.LastUpdatedAt = row.LastUpdatedAt.Time
	}
	return review
}

// woodlandOfficerReviewRow flattens the PW14 checklist columns for scanning.
type woodlandOfficerReviewRow struct {
	ID            string `db:"id"`
	ApplicationID string `db:"application_id"`

	SiteVisitNeeded   *bool `db:"site_visit_needed"`
	SiteVisitArranged *bool `db:"site_visit_arranged"`
	SiteVisitComplete bool  `db:"site_visit_complete"`

	Pw14LandInformationSearchChecked  *bool `db:"pw14_land_information_search_checked"`
	Pw14AreProposalsUKFSCompliant     *bool `db:"pw14_are_proposals_ukfs_compliant"`
	Pw14TPOOrCADeclared               *bool `db:"pw14_tpo_or_ca_declared"`
	Pw14IsApplicationValid            *bool `db:"pw14_is_application_valid"`
	Pw14EIAThresholdExceeded          *bool `db:"pw14_eia_threshold_exceeded"`
	Pw14InterestDeclared              *bool `db:"pw14_interest_declared"`
	Pw14InterestDeclarationCompleted  *bool `db:"pw14_interest_declaration_completed"`
	Pw14ComplianceRecommendationsMade *bool `db:"pw14_compliance_recommendations_made"`

	ConsultationsNeeded   *bool `db:"consultations_needed"`
	ConsultationsComplete *bool `db:"consultations_complete"`
	EIAScreeningComplete  *bool `db:"eia_screening_complete"`

	ConfirmedFRComplete bool `db:"confirmed_fr_complete"`

	IsConditional             *bool        `db:"is_conditional"`
	ConditionsToApplicantDate sql.NullTime `db:"conditions_to_applicant_date"`

	RecommendedLicenceDuration      *models.LicenceDuration `db:"recommended_licence_duration"`
	RecommendDecisionPublicRegister *bool                   `db:"recommend_decision_public_register"`

	Complete        bool         `db:"complete"`
	LastUpdatedByID string       `db:"last_updated_by_id"`
	LastUpdatedAt   sql.NullTime `db:"last_updated_at"`
}

func (row woodlandOfficerReviewRow) toModel() *models.WoodlandOfficerReview {
	review := &models.WoodlandOfficerReview{
		ID:                row.ID,
		ApplicationID:     row.ApplicationID,
		SiteVisitNeeded:   row.SiteVisitNeeded,
		SiteVisitArranged: row.SiteVisitArranged,
		SiteVisitComplete: row.SiteVisitComplete,
		Pw14: models.Pw14Checklist{
			LandInformationSearchChecked:  row.Pw14LandInformationSearchChecked,
			AreProposalsUKFSCompliant:     row.Pw14AreProposalsUKFSCompliant,
			TPOOrCADeclared:               row.Pw14TPOOrCADeclared,
			IsApplicationValid:            row.Pw14IsApplicationValid,
			EIAThresholdExceeded:          row.Pw14EIAThresholdExceeded,
			InterestDeclared:              row.Pw14InterestDeclared,
			InterestDeclarationCompleted:  row.Pw14InterestDeclarationCompleted,
			ComplianceRecommendationsMade: row.Pw14ComplianceRecommendationsMade,
		},
		ConsultationsNeeded:                   row.ConsultationsNeeded,
		ConsultationsComplete:                 row.ConsultationsComplete,
		EIAScreeningComplete:                  row.EIAScreeningComplete,
		ConfirmedFellingAndRestockingComplete: row.ConfirmedFRComplete,
		IsConditional:                         row.IsConditional,
		RecommendedLicenceDuration:            row.RecommendedLicenceDuration,
		RecommendDecisionPublicRegister:       row.RecommendDecisionPublicRegister,
		Complete:                              row.Complete,
		LastUpdatedByID:                       row.LastUpdatedByID,
	}
	if row.ConditionsToApplicantDate.Valid {
		t := row.ConditionsToApplicantDate.Time
		review.ConditionsToApplicantDate = &t
	}
	if row.LastUpdatedAt.Valid {
		review.LastUpdatedAt = row.LastUpdatedAt.Time
	}
	return review
}

func (r *ApplicationRepository) hydrateReviews(ctx context.Context, app *models.Application) error {
	var aoRow adminOfficerReviewRow
	const aoQuery = `SELECT id, application_id, aa_checked, aa_passed, aa_failure_reason,
        mapping_checked, mapping_passed, mapping_failure_reason,
        constraints_checked, constraints_passed, constraints_failure_reason,
        cbw_checked, cbw_passed, cbw_failure_reason,
        eia_checked, eia_passed, eia_failure_reason,
        complete, last_updated_by_id, last_updated_at
        FROM admin_officer_reviews WHERE application_id = $1`
	switch err := r.db.GetContext(ctx, &aoRow, aoQuery, app.ID); err {
	case nil:
		app.AdminOfficerReview = aoRow.toModel()
	case sql.ErrNoRows:
	default:
		return fmt.Errorf("load admin officer review: %w", err)
	}

	var woRow woodlandOfficerReviewRow
	const woQuery = `SELECT id, application_id, site_visit_needed, site_visit_arranged, site_visit_complete,
        pw14_land_information_search_checked, pw14_are_proposals_ukfs_compliant, pw14_tpo_or_ca_declared,
        pw14_is_application_valid, pw14_eia_threshold_exceeded, pw14_interest_declared,
        pw14_interest_declaration_completed, pw14_compliance_recommendations_made,
        consultations_needed, consultations_complete, eia_screening_complete, confirmed_fr_complete,
        is_conditional, conditions_to_applicant_date, recommended_licence_duration,
        recommend_decision_public_register, complete, last_updated_by_id, last_updated_at
        FROM woodland_officer_reviews WHERE application_id = $1`
	switch err := r.db.GetContext(ctx, &woRow, woQuery, app.ID); err {
	case nil:
		app.WoodlandOfficerReview = woRow.toModel()
	case sql.ErrNoRows:
	default:
		return fmt.Errorf("load woodland officer review: %w", err)
	}

	var approver models.ApproverReview
	const approverQuery = `SELECT id, application_id, checked_application, checked_documentation, checked_case_notes,
        checked_review_process, requested_decision, approved_licence_duration, duration_change_reason,
        public_register_publish, last_updated_by_id, last_updated_at
        FROM approver_reviews WHERE application_id = $1`
	switch err := r.db.GetContext(ctx, &approver, approverQuery, app.ID); err {
	case nil:
		app.ApproverReview = &approver
	case sql.ErrNoRows:
	default:
		return fmt.Errorf("load approver review: %w", err)
	}

	var larch models.LarchCheckDetails
	const larchQuery = `SELECT id, application_id, larch_checked, confirm_inspection_log, flight_date,
        flight_observations, last_updated_by_id, last_updated_at
        FROM larch_checks WHERE application_id = $1`
	switch err := r.db.GetContext(ctx, &larch, larchQuery, app.ID); err {
	case nil:
		app.LarchCheck = &larch
	case sql.ErrNoRows:
	default:
		return fmt.Errorf("load larch check: %w", err)
	}

	var register models.PublicRegister
	const registerQuery = `SELECT id, application_id, consultation_exempt, exemption_reason,
        consultation_published_at, consultation_expires_at, consultation_removed_at,
        decision_published_at, decision_removed_at
        FROM public_registers WHERE application_id = $1`
	switch err := r.db.GetContext(ctx, &register, registerQuery, app.ID); err {
	case nil:
		app.PublicRegister = &register
	case sql.ErrNoRows:
	default:
		return fmt.Errorf("load public register: %w", err)
	}
	return nil
}

// SaveApplication writes every mutable part of the aggregate in one
// transaction. The status ledger is append-only: existing entries are never
// touched. Child sets that services rebuild wholesale are replaced.
func (r *ApplicationRepository) SaveApplication(ctx context.Context, app *models.Application) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	const updateApp = `UPDATE applications SET reference = :reference, woodland_owner_id = :woodland_owner_id,
        area_code = :area_code, centre_point = :centre_point, date_received = :date_received,
        citizens_charter_date = :citizens_charter_date, final_action_date = :final_action_date,
        is_agency_application = :is_agency_application, is_larch_application = :is_larch_application,
        is_cbw_application = :is_cbw_application, is_eia_application = :is_eia_application
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateApp, app); err != nil {
		return fmt.Errorf("save application: %w", err)
	}

	const insertStatus = `INSERT INTO application_status_history (id, application_id, status, created_by_id, created_at)
        VALUES (:id, :application_id, :status, :created_by_id, :created_at)
        ON CONFLICT (id) DO NOTHING`
	for i := range app.StatusHistory {
		if _, err := tx.NamedExecContext(ctx, insertStatus, app.StatusHistory[i]); err != nil {
			return fmt.Errorf("save status history: %w", err)
		}
	}

	const upsertAssignee = `INSERT INTO application_assignee_history (id, application_id, role, assigned_user_id, assigned_at, unassigned_at)
        VALUES (:id, :application_id, :role, :assigned_user_id, :assigned_at, :unassigned_at)
        ON CONFLICT (id) DO UPDATE SET unassigned_at = EXCLUDED.unassigned_at`
	for i := range app.AssigneeHistory {
		if _, err := tx.NamedExecContext(ctx, upsertAssignee, app.AssigneeHistory[i]); err != nil {
			return fmt.Errorf("save assignee history: %w", err)
		}
	}

	if err := r.saveReviews(ctx, tx, app); err != nil {
		return err
	}
	if err := r.saveConfirmedPlan(ctx, tx, app); err != nil {
		return err
	}

	const deleteAmendments = `DELETE FROM amendment_reviews WHERE application_id = $1`
	if _, err := tx.ExecContext(ctx, deleteAmendments, app.ID); err != nil {
		return fmt.Errorf("clear amendment reviews: %w", err)
	}
	const insertAmendment = `INSERT INTO amendment_reviews (id, application_id, amendments_sent_date, amendments_reason,
        response_deadline, applicant_agreed, applicant_disagreement_reason, response_received_date,
        reminder_notification_sent_at, amendment_review_completed, created_by_id, created_at)
        VALUES (:id, :application_id, :amendments_sent_date, :amendments_reason, :response_deadline,
        :applicant_agreed, :applicant_disagreement_reason, :response_received_date,
        :reminder_notification_sent_at, :amendment_review_completed, :created_by_id, :created_at)`
	for i := range app.AmendmentReviews {
		if _, err := tx.NamedExecContext(ctx, insertAmendment, app.AmendmentReviews[i]); err != nil {
			return fmt.Errorf("save amendment review: %w", err)
		}
	}

	const upsertInvite = `INSERT INTO consultee_invites (id, application_id, name, email, sent_at, responded_at)
        VALUES (:id, :application_id, :name, :email, :sent_at, :responded_at)
        ON CONFLICT (id) DO UPDATE SET responded_at = EXCLUDED.responded_at`
	for i := range app.ConsulteeInvites {
		if _, err := tx.NamedExecContext(ctx, upsertInvite, app.ConsulteeInvites[i]); err != nil {
			return fmt.Errorf("save consultee invite: %w", err)
		}
	}

	const insertNote = `INSERT INTO case_notes (id, application_id, type, text, visible_to_applicant, created_by_id, created_at)
        VALUES (:id, :application_id, :type, :text, :visible_to_applicant, :created_by_id, :created_at)
        ON CONFLICT (id) DO NOTHING`
	for i := range app.CaseNotes {
		if _, err := tx.NamedExecContext(ctx, insertNote, app.CaseNotes[i]); err != nil {
			return fmt.Errorf("save case note: %w", err)
		}
	}

	const insertDocument = `INSERT INTO documents (id, application_id, purpose, file_name, mime_type, location, created_by_id, created_at)
        VALUES (:id, :application_id, :purpose, :file_name, :mime_type, :location, :created_by_id, :created_at)
        ON CONFLICT (id) DO NOTHING`
	for i := range app.Documents {
		if _, err := tx.NamedExecContext(ctx, insertDocument, app.Documents[i]); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) saveReviews(ctx context.Context, tx *sqlx.Tx, app *models.Application) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM admin_officer_reviews WHERE application_id = $1`, app.ID); err != nil {
		return fmt.Errorf("clear admin officer review: %w", err)
	}
	if review := app.AdminOfficerReview; review != nil {
		const insert = `INSERT INTO admin_officer_reviews (id, application_id,
            aa_checked, aa_passed, aa_failure_reason,
            mapping_checked, mapping_passed, mapping_failure_reason,
            constraints_checked, constraints_passed, constraints_failure_reason,
            cbw_checked, cbw_passed, cbw_failure_reason,
            eia_checked, eia_passed, eia_failure_reason,
            complete, last_updated_by_id, last_updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
		if _, err := tx.ExecContext(ctx, insert, review.ID, review.ApplicationID,
			review.AgentAuthorityForm.Checked, review.AgentAuthorityForm.Passed, review.AgentAuthorityForm.FailureReason,
			review.Mapping.Checked, review.Mapping.Passed, review.Mapping.FailureReason,
			review.Constraints.Checked, review.Constraints.Passed, review.Constraints.FailureReason,
			review.CBW.Checked, review.CBW.Passed, review.CBW.FailureReason,
			review.EIA.Checked, review.EIA.Passed, review.EIA.FailureReason,
			review.Complete, review.LastUpdatedByID, review.LastUpdatedAt); err != nil {
			return fmt.Errorf("save admin officer review: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM woodland_officer_reviews WHERE application_id = $1`, app.ID); err != nil {
		return fmt.Errorf("clear woodland officer review: %w", err)
	}
	if review := app.WoodlandOfficerReview; review != nil {
		const insert = `INSERT INTO woodland_officer_reviews (id, application_id,
            site_visit_needed, site_visit_arranged, site_visit_complete,
            pw14_land_information_search_checked, pw14_are_proposals_ukfs_compliant, pw14_tpo_or_ca_declared,
            pw14_is_application_valid, pw14_eia_threshold_exceeded, pw14_interest_declared,
            pw14_interest_declaration_completed, pw14_compliance_recommendations_made,
            consultations_needed, consultations_complete, eia_screening_complete, confirmed_fr_complete,
            is_conditional, conditions_to_applicant_date, recommended_licence_duration,
            recommend_decision_public_register, complete, last_updated_by_id, last_updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
		if _, err := tx.ExecContext(ctx, insert, review.ID, review.ApplicationID,
			review.SiteVisitNeeded, review.SiteVisitArranged, review.SiteVisitComplete,
			review.Pw14.LandInformationSearchChecked, review.Pw14.AreProposalsUKFSCompliant, review.Pw14.TPOOrCADeclared,
			review.Pw14.IsApplicationValid, review.Pw14.EIAThresholdExceeded, review.Pw14.InterestDeclared,
			review.Pw14.InterestDeclarationCompleted, review.Pw14.ComplianceRecommendationsMade,
			review.ConsultationsNeeded, review.ConsultationsComplete, review.EIAScreeningComplete,
			review.ConfirmedFellingAndRestockingComplete,
			review.IsConditional, review.ConditionsToApplicantDate, review.RecommendedLicenceDuration,
			review.RecommendDecisionPublicRegister, review.Complete, review.LastUpdatedByID, review.LastUpdatedAt); err != nil {
			return fmt.Errorf("save woodland officer review: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM approver_reviews WHERE application_id = $1`, app.ID); err != nil {
		return fmt.Errorf("clear approver review: %w", err)
	}
	if review := app.ApproverReview; review != nil {
		const insert = `INSERT INTO approver_reviews (id, application_id, checked_application, checked_documentation,
            checked_case_notes, checked_review_process, requested_decision, approved_licence_duration,
            duration_change_reason, public_register_publish, last_updated_by_id, last_updated_at)
            VALUES (:id, :application_id, :checked_application, :checked_documentation, :checked_case_notes,
            :checked_review_process, :requested_decision, :approved_licence_duration, :duration_change_reason,
            :public_register_publish, :last_updated_by_id, :last_updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, review); err != nil {
			return fmt.Errorf("save approver review: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM larch_checks WHERE application_id = $1`, app.ID); err != nil {
		return fmt.Errorf("clear larch check: %w", err)
	}
	if larch := app.LarchCheck; larch != nil {
		const insert = `INSERT INTO larch_checks (id, application_id, larch_checked, confirm_inspection_log,
            flight_date, flight_observations, last_updated_by_id, last_updated_at)
            VALUES (:id, :application_id, :larch_checked, :confirm_inspection_log, :flight_date,
            :flight_observations, :last_updated_by_id, :last_updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, larch); err != nil {
			return fmt.Errorf("save larch check: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM public_registers WHERE application_id = $1`, app.ID); err != nil {
		return fmt.Errorf("clear public register: %w", err)
	}
	if register := app.PublicRegister; register != nil {
		const insert = `INSERT INTO public_registers (id, application_id, consultation_exempt, exemption_reason,
            consultation_published_at, consultation_expires_at, consultation_removed_at,
            decision_published_at, decision_removed_at)
            VALUES (:id, :application_id, :consultation_exempt, :exemption_reason, :consultation_published_at,
            :consultation_expires_at, :consultation_removed_at, :decision_published_at, :decision_removed_at)`
		if _, err := tx.NamedExecContext(ctx, insert, register); err != nil {
			return fmt.Errorf("save public register: %w", err)
		}
	}
	return nil
}

func (r *ApplicationRepository) saveConfirmedPlan(ctx context.Context, tx *sqlx.Tx, app *models.Application) error {
	const deleteRestockingSpecies = `DELETE FROM confirmed_restocking_species WHERE restocking_detail_id IN (
        SELECT crd.id FROM confirmed_restocking_details crd
        JOIN confirmed_felling_details cfd ON cfd.id = crd.confirmed_felling_detail_id
        JOIN submitted_compartments sc ON sc.id = cfd.submitted_compartment_id
        WHERE sc.application_id = $1)`
	if _, err := tx.ExecContext(ctx, deleteRestockingSpecies, app.ID); err != nil {
		return fmt.Errorf("clear confirmed restocking species: %w", err)
	}
	const deleteRestocking = `DELETE FROM confirmed_restocking_details WHERE confirmed_felling_detail_id IN (
        SELECT cfd.id FROM confirmed_felling_details cfd
        JOIN submitted_compartments sc ON sc.id = cfd.submitted_compartment_id
        WHERE sc.application_id = $1)`
	if _, err := tx.ExecContext(ctx, deleteRestocking, app.ID); err != nil {
		return fmt.Errorf("clear confirmed restocking details: %w", err)
	}
	const deleteFellingSpecies = `DELETE FROM confirmed_felling_species WHERE felling_detail_id IN (
        SELECT cfd.id FROM confirmed_felling_details cfd
        JOIN submitted_compartments sc ON sc.id = cfd.submitted_compartment_id
        WHERE sc.application_id = $1)`
	if _, err := tx.ExecContext(ctx, deleteFellingSpecies, app.ID); err != nil {
		return fmt.Errorf("clear confirmed felling species: %w", err)
	}
	const deleteFelling = `DELETE FROM confirmed_felling_details WHERE submitted_compartment_id IN (
        SELECT id FROM submitted_compartments WHERE application_id = $1)`
	if _, err := tx.ExecContext(ctx, deleteFelling, app.ID); err != nil {
		return fmt.Errorf("clear confirmed felling details: %w", err)
	}

	const insertFelling = `INSERT INTO confirmed_felling_details (id, submitted_compartment_id, proposed_felling_detail_id,
        operation_type, area_to_be_felled, number_of_trees, estimated_total_felling_volume, is_part_of_tpo,
        tpo_reference, is_within_conservation_area, conservation_area_reference, is_restocking, no_restocking_reason)
        VALUES (:id, :submitted_compartment_id, :proposed_felling_detail_id, :operation_type, :area_to_be_felled,
        :number_of_trees, :estimated_total_felling_volume, :is_part_of_tpo, :tpo_reference,
        :is_within_conservation_area, :conservation_area_reference, :is_restocking, :no_restocking_reason)`
	const insertFellingSpecies = `INSERT INTO confirmed_felling_species (id, felling_detail_id, species_code)
        VALUES (:id, :felling_detail_id, :species_code)`
	const insertRestocking = `INSERT INTO confirmed_restocking_details (id, confirmed_felling_detail_id,
        submitted_compartment_id, proposed_restocking_detail_id, restocking_proposal, area,
        percentage_of_restock_area, restocking_density, number_of_trees)
        VALUES (:id, :confirmed_felling_detail_id, :submitted_compartment_id, :proposed_restocking_detail_id,
        :restocking_proposal, :area, :percentage_of_restock_area, :restocking_density, :number_of_trees)`
	const insertRestockingSpecies = `INSERT INTO confirmed_restocking_species (id, restocking_detail_id, species_code, percentage)
        VALUES (:id, :restocking_detail_id, :species_code, :percentage)`

	for i := range app.SubmittedCompartments {
		sc := &app.SubmittedCompartments[i]
		for j := range sc.ConfirmedFellingDetails {
			cfd := &sc.ConfirmedFellingDetails[j]
			if _, err := tx.NamedExecContext(ctx, insertFelling, cfd); err != nil {
				return fmt.Errorf("save confirmed felling detail: %w", err)
			}
			for k := range cfd.Species {
				if _, err := tx.NamedExecContext(ctx, insertFellingSpecies, cfd.Species[k]); err != nil {
					return fmt.Errorf("save confirmed felling species: %w", err)
				}
			}
			for k := range cfd.RestockingDetails {
				crd := &cfd.RestockingDetails[k]
				if _, err := tx.NamedExecContext(ctx, insertRestocking, crd); err != nil {
					return fmt.Errorf("save confirmed restocking detail: %w", err)
				}
				for l := range crd.Species {
					if _, err := tx.NamedExecContext(ctx, insertRestockingSpecies, crd.Species[l]); err != nil {
						return fmt.Errorf("save confirmed restocking species: %w", err)
					}
				}
			}
		}
	}
	return nil
}

// ListApplications returns aggregates matching the filter. Each match is
// hydrated with its status and assignee history only; callers needing the
// full aggregate follow up with GetApplication.
func (r *ApplicationRepository) ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int, error) {
	base := `FROM applications a`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf(`(SELECT h.status FROM application_status_history h
            WHERE h.application_id = a.id ORDER BY h.created_at DESC LIMIT 1) = $%d`, len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.AreaCode != "" {
		conditions = append(conditions, fmt.Sprintf("a.area_code = $%d", len(args)+1))
		args = append(args, filter.AreaCode)
	}
	if filter.AssignedUserID != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (SELECT 1 FROM application_assignee_history ah
            WHERE ah.application_id = a.id AND ah.assigned_user_id = $%d AND ah.unassigned_at IS NULL)`, len(args)+1))
		args = append(args, filter.AssignedUserID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("a.reference ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"reference":         "a.reference",
		"date_received":     "a.date_received",
		"final_action_date": "a.final_action_date",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "a.date_received"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.reference, a.created_by_id, a.woodland_owner_id, a.area_code, a.centre_point,
        a.date_received, a.citizens_charter_date, a.final_action_date,
        a.is_agency_application, a.is_larch_application, a.is_cbw_application, a.is_eia_application
        %s ORDER BY %s %s NULLS LAST LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var rows []models.Application
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	out := make([]*models.Application, 0, len(rows))
	for i := range rows {
		app := rows[i]
		const statusQuery = `SELECT id, application_id, status, created_by_id, created_at
            FROM application_status_history WHERE application_id = $1 ORDER BY created_at, id`
		if err := r.db.SelectContext(ctx, &app.StatusHistory, statusQuery, app.ID); err != nil {
			return nil, 0, fmt.Errorf("load status history: %w", err)
		}
		const assigneeQuery = `SELECT id, application_id, role, assigned_user_id, assigned_at, unassigned_at
            FROM application_assignee_history WHERE application_id = $1 ORDER BY assigned_at, id`
		if err := r.db.SelectContext(ctx, &app.AssigneeHistory, assigneeQuery, app.ID); err != nil {
			return nil, 0, fmt.Errorf("load assignee history: %w", err)
		}
		out = append(out, &app)
	}
	return out, total, nil
}

// ListWithActiveAmendmentReviews returns every application carrying an
// uncompleted amendment round, fully hydrated for the timer sweeps.
func (r *ApplicationRepository) ListWithActiveAmendmentReviews(ctx context.Context) ([]*models.Application, error) {
	const query = `SELECT DISTINCT application_id FROM amendment_reviews WHERE amendment_review_completed = FALSE`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list active amendment rounds: %w", err)
	}
	out := make([]*models.Application, 0, len(ids))
	for _, id := range ids {
		app, err := r.GetApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, nil
}
