package models

import "time"

// ApproverDecision is the field manager's requested outcome for the licence.
type ApproverDecision string

const (
	DecisionApprove             ApproverDecision = "APPROVE"
	DecisionRefuse              ApproverDecision = "REFUSE"
	DecisionReturnToWoodlandOfficer ApproverDecision = "RETURN_TO_WOODLAND_OFFICER"
)

// ApproverReview is the final approval-stage checklist.
type ApproverReview struct {
	ID            string `db:"id" json:"id"`
	ApplicationID string `db:"application_id" json:"applicationId"`

	CheckedApplication   bool `db:"checked_application" json:"checkedApplication"`
	CheckedDocumentation bool `db:"checked_documentation" json:"checkedDocumentation"`
	CheckedCaseNotes     bool `db:"checked_case_notes" json:"checkedCaseNotes"`
	CheckedReviewProcess bool `db:"checked_review_process" json:"checkedReviewProcess"`

	RequestedDecision       *ApproverDecision `db:"requested_decision" json:"requestedDecision,omitempty"`
	ApprovedLicenceDuration *LicenceDuration  `db:"approved_licence_duration" json:"approvedLicenceDuration,omitempty"`
	DurationChangeReason    *string           `db:"duration_change_reason" json:"durationChangeReason,omitempty"`
	PublicRegisterPublish   *bool             `db:"public_register_publish" json:"publicRegisterPublish,omitempty"`

	LastUpdatedByID string    `db:"last_updated_by_id" json:"lastUpdatedById"`
	LastUpdatedAt   time.Time `db:"last_updated_at" json:"lastUpdatedAt"`
}

// ChecksComplete reports whether every approver checklist item was confirmed.
func (r *ApproverReview) ChecksComplete() bool {
	return r != nil && r.CheckedApplication && r.CheckedDocumentation && r.CheckedCaseNotes && r.CheckedReviewProcess
}
