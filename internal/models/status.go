package models

import "time"

// ApplicationStatus enumerates the workflow states of a felling licence application.
type ApplicationStatus string

const (
	StatusDraft                 ApplicationStatus = "DRAFT"
	StatusSubmitted             ApplicationStatus = "SUBMITTED"
	StatusReceived              ApplicationStatus = "RECEIVED"
	StatusAdminOfficerReview    ApplicationStatus = "ADMIN_OFFICER_REVIEW"
	StatusWoodlandOfficerReview ApplicationStatus = "WOODLAND_OFFICER_REVIEW"
	StatusSentForApproval       ApplicationStatus = "SENT_FOR_APPROVAL"
	StatusApproved              ApplicationStatus = "APPROVED"
	StatusRefused               ApplicationStatus = "REFUSED"
	StatusReturnedToApplicant   ApplicationStatus = "RETURNED_TO_APPLICANT"
	StatusWithdrawn             ApplicationStatus = "WITHDRAWN"
)

// StatusHistoryEntry is one append-only status ledger row. Entries are never
// updated or deleted; the entry with the latest timestamp is the current status.
type StatusHistoryEntry struct {
	ID            string            `db:"id" json:"id"`
	ApplicationID string            `db:"application_id" json:"applicationId"`
	Status        ApplicationStatus `db:"status" json:"status"`
	CreatedByID   string            `db:"created_by_id" json:"createdById"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
}
