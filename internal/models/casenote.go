package models

import "time"

// CaseNoteType categorises notes recorded against an application.
type CaseNoteType string

const (
	CaseNoteGeneral          CaseNoteType = "GENERAL"
	CaseNoteSiteVisit        CaseNoteType = "SITE_VISIT_COMMENT"
	CaseNoteAmendment        CaseNoteType = "AMENDMENT_COMMENT"
	CaseNoteAdminOfficer     CaseNoteType = "ADMIN_OFFICER_REVIEW_COMMENT"
	CaseNoteWoodlandOfficer  CaseNoteType = "WOODLAND_OFFICER_REVIEW_COMMENT"
	CaseNoteLarchCheck       CaseNoteType = "LARCH_CHECK_COMMENT"
	CaseNoteReturnToApplicant CaseNoteType = "RETURN_TO_APPLICANT_COMMENT"
	CaseNoteWithdrawal       CaseNoteType = "WITHDRAWAL_COMMENT"
)

// CaseNote is a free-text note on an application's history.
type CaseNote struct {
	ID                 string       `db:"id" json:"id"`
	ApplicationID      string       `db:"application_id" json:"applicationId"`
	Type               CaseNoteType `db:"type" json:"type"`
	Text               string       `db:"text" json:"text"`
	VisibleToApplicant bool         `db:"visible_to_applicant" json:"visibleToApplicant"`
	CreatedByID        string       `db:"created_by_id" json:"createdById"`
	CreatedAt          time.Time    `db:"created_at" json:"createdAt"`
}

// ConsulteeInvite tracks one statutory or local consultee invited to comment.
type ConsulteeInvite struct {
	ID            string     `db:"id" json:"id"`
	ApplicationID string     `db:"application_id" json:"applicationId"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	SentAt        time.Time  `db:"sent_at" json:"sentAt"`
	RespondedAt   *time.Time `db:"responded_at" json:"respondedAt,omitempty"`
}

// Outstanding reports whether the invite still awaits a response.
func (i *ConsulteeInvite) Outstanding() bool {
	return i != nil && i.RespondedAt == nil
}

// DocumentPurpose categorises stored documents.
type DocumentPurpose string

const (
	DocumentPurposeAttachment         DocumentPurpose = "ATTACHMENT"
	DocumentPurposeSiteVisitAttachment DocumentPurpose = "SITE_VISIT_ATTACHMENT"
	DocumentPurposeAgentAuthorityForm DocumentPurpose = "AGENT_AUTHORITY_FORM"
	DocumentPurposeApplicationDocument DocumentPurpose = "APPLICATION_DOCUMENT"
	DocumentPurposeCorrespondence     DocumentPurpose = "CORRESPONDENCE"
)

// Document is a stored file reference; the bytes live in external storage.
type Document struct {
	ID            string          `db:"id" json:"id"`
	ApplicationID string          `db:"application_id" json:"applicationId"`
	Purpose       DocumentPurpose `db:"purpose" json:"purpose"`
	FileName      string          `db:"file_name" json:"fileName"`
	MimeType      string          `db:"mime_type" json:"mimeType"`
	Location      string          `db:"location" json:"location"`
	CreatedByID   string          `db:"created_by_id" json:"createdById"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}
