package dto

import "github.com/fc-casework/felling-licence-api/internal/models"

// UpdateApproverReviewRequest updates the approver checklist and requested
// outcome. Nil fields are left untouched.
type UpdateApproverReviewRequest struct {
	CheckedApplication   *bool `json:"checkedApplication,omitempty"`
	CheckedDocumentation *bool `json:"checkedDocumentation,omitempty"`
	CheckedCaseNotes     *bool `json:"checkedCaseNotes,omitempty"`
	CheckedReviewProcess *bool `json:"checkedReviewProcess,omitempty"`

	RequestedDecision       *models.ApproverDecision `json:"requestedDecision,omitempty"`
	ApprovedLicenceDuration *models.LicenceDuration  `json:"approvedLicenceDuration,omitempty"`
	DurationChangeReason    *string                  `json:"durationChangeReason,omitempty"`
	PublicRegisterPublish   *bool                    `json:"publicRegisterPublish,omitempty"`
}
