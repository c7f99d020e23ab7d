package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionUserCreate     = "USER_CREATE"
	AuditActionUserUpdate     = "USER_UPDATE"
	AuditActionUserDelete     = "USER_DELETE"
	AuditActionPasswordChange = "PASSWORD_CHANGE"

	AuditActionAssignApplication   = "ASSIGN_APPLICATION"
	AuditActionUnassignApplication = "UNASSIGN_APPLICATION"
	AuditActionStatusChange        = "APPLICATION_STATUS_CHANGE"

	AuditActionAdminOfficerCheckUpdate    = "ADMIN_OFFICER_CHECK_UPDATE"
	AuditActionAdminOfficerReviewComplete = "ADMIN_OFFICER_REVIEW_COMPLETE"

	AuditActionWoodlandOfficerUpdate         = "WOODLAND_OFFICER_REVIEW_UPDATE"
	AuditActionWoodlandOfficerReviewComplete = "WOODLAND_OFFICER_REVIEW_COMPLETE"

	AuditActionConfirmedDetailsConvert = "CONFIRMED_FELLING_RESTOCKING_CONVERT"
	AuditActionConfirmedDetailsUpdate  = "CONFIRMED_FELLING_RESTOCKING_UPDATE"
	AuditActionConfirmedDetailsDelete  = "CONFIRMED_FELLING_DETAIL_DELETE"
	AuditActionConfirmedDetailsRevert  = "CONFIRMED_FELLING_DETAIL_REVERT"

	AuditActionApproverReviewUpdate   = "APPROVER_REVIEW_UPDATE"
	AuditActionApproverReviewComplete = "APPROVER_REVIEW_COMPLETE"
	AuditActionApproverReviewDelete   = "APPROVER_REVIEW_DELETE"

	AuditActionDocumentUpload   = "DOCUMENT_UPLOAD"
	AuditActionDocumentDownload = "DOCUMENT_DOWNLOAD"
	AuditActionDocumentDelete   = "DOCUMENT_DELETE"

	AuditActionAmendmentReviewCreate   = "AMENDMENT_REVIEW_CREATE"
	AuditActionAmendmentReviewResponse = "AMENDMENT_REVIEW_RESPONSE"
	AuditActionAmendmentReminderSent   = "AMENDMENT_REMINDER_SENT"
	AuditActionApplicationWithdrawn    = "APPLICATION_WITHDRAWN"
	AuditActionWithdrawalReverted      = "APPLICATION_WITHDRAWAL_REVERTED"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
