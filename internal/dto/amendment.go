package dto

import "time"

// CreateAmendmentReviewRequest opens an amendment round with the applicant.
type CreateAmendmentReviewRequest struct {
	Reason           string    `json:"reason" validate:"required"`
	ResponseDeadline time.Time `json:"responseDeadline" validate:"required"`
}

// AmendmentResponseRequest records the applicant's answer to an amendment
// round.
type AmendmentResponseRequest struct {
	Agreed             bool    `json:"agreed"`
	DisagreementReason *string `json:"disagreementReason,omitempty"`
}

// LateAmendmentResponse identifies one application whose active amendment
// round is overdue, for an external notifier or withdrawal dispatcher.
type LateAmendmentResponse struct {
	ApplicationID        string    `json:"applicationId"`
	ApplicationReference string    `json:"applicationReference"`
	AmendmentReviewID    string    `json:"amendmentReviewId"`
	ResponseDeadline     time.Time `json:"responseDeadline"`
	ApplicantID          string    `json:"applicantId"`
	WoodlandOfficerID    string    `json:"woodlandOfficerId,omitempty"`
}
