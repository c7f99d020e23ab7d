package models

import "time"

// PublicRegister tracks an application's presence on the consultation and
// decision public registers, or its exemption from them.
type PublicRegister struct {
	ID                      string     `db:"id" json:"id"`
	ApplicationID           string     `db:"application_id" json:"applicationId"`
	ConsultationExempt      *bool      `db:"consultation_exempt" json:"consultationExempt"`
	ExemptionReason         *string    `db:"exemption_reason" json:"exemptionReason,omitempty"`
	ConsultationPublishedAt *time.Time `db:"consultation_published_at" json:"consultationPublishedAt,omitempty"`
	ConsultationExpiresAt   *time.Time `db:"consultation_expires_at" json:"consultationExpiresAt,omitempty"`
	ConsultationRemovedAt   *time.Time `db:"consultation_removed_at" json:"consultationRemovedAt,omitempty"`
	DecisionPublishedAt     *time.Time `db:"decision_published_at" json:"decisionPublishedAt,omitempty"`
	DecisionRemovedAt       *time.Time `db:"decision_removed_at" json:"decisionRemovedAt,omitempty"`
}

// PublicRegisterStatus derives the consultation public register step: the
// step resolves once the application is either exempted with a reason or
// published to the register.
func PublicRegisterStatus(pr *PublicRegister) CheckStatus {
	if pr == nil {
		return CheckNotStarted
	}
	if pr.ConsultationExempt != nil && *pr.ConsultationExempt {
		return CheckCompleted
	}
	if pr.ConsultationPublishedAt != nil {
		return CheckCompleted
	}
	if pr.ConsultationExempt != nil {
		return CheckInProgress
	}
	return CheckNotStarted
}
