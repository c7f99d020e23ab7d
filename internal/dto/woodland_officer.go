package dto

import (
	"time"

	"github.com/fc-casework/felling-licence-api/internal/models"
)

// SetPublicRegisterExemptRequest records a consultation register exemption.
type SetPublicRegisterExemptRequest struct {
	Exempt bool   `json:"exempt"`
	Reason string `json:"reason,omitempty"`
}

// PublishToPublicRegisterRequest publishes the application for consultation.
type PublishToPublicRegisterRequest struct {
	PeriodDays int `json:"periodDays" validate:"required,gt=0"`
}

// SiteVisitNotNeededRequest records that no site visit is required, with the
// officer's reason captured as a case note.
type SiteVisitNotNeededRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ArrangeSiteVisitRequest marks the visit as arranged.
type ArrangeSiteVisitRequest struct {
	Notes string `json:"notes,omitempty"`
}

// CompleteSiteVisitRequest marks the visit complete; Notes becomes a site
// visit case note and counts as evidence.
type CompleteSiteVisitRequest struct {
	Notes string `json:"notes,omitempty"`
}

// UpdatePw14Request updates answers on the PW14 checklist. Nil fields are
// left untouched.
type UpdatePw14Request struct {
	LandInformationSearchChecked  *bool `json:"landInformationSearchChecked,omitempty"`
	AreProposalsUKFSCompliant     *bool `json:"areProposalsUkfsCompliant,omitempty"`
	TPOOrCADeclared               *bool `json:"tpoOrCaDeclared,omitempty"`
	IsApplicationValid            *bool `json:"isApplicationValid,omitempty"`
	EIAThresholdExceeded          *bool `json:"eiaThresholdExceeded,omitempty"`
	InterestDeclared              *bool `json:"interestDeclared,omitempty"`
	InterestDeclarationCompleted  *bool `json:"interestDeclarationCompleted,omitempty"`
	ComplianceRecommendationsMade *bool `json:"complianceRecommendationsMade,omitempty"`
}

// UpdateConsultationsRequest updates the consultation step flags.
type UpdateConsultationsRequest struct {
	Needed   *bool `json:"needed,omitempty"`
	Complete *bool `json:"complete,omitempty"`
}

// AddConsulteeInviteRequest invites a consultee to comment.
type AddConsulteeInviteRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateEIAScreeningRequest records EIA screening progress.
type UpdateEIAScreeningRequest struct {
	Complete bool `json:"complete"`
}

// UpdateConditionsRequest answers the conditionality question and records
// when conditions were sent to the applicant.
type UpdateConditionsRequest struct {
	IsConditional      *bool      `json:"isConditional,omitempty"`
	ConditionsSentDate *time.Time `json:"conditionsSentDate,omitempty"`
}

// CompleteWoodlandOfficerReviewRequest finishes the woodland officer stage.
type CompleteWoodlandOfficerReviewRequest struct {
	RecommendedLicenceDuration      models.LicenceDuration `json:"recommendedLicenceDuration" validate:"required"`
	RecommendDecisionPublicRegister *bool                  `json:"recommendDecisionPublicRegister" validate:"required"`
}

// WoodlandOfficerReviewSummary is the derived state of every woodland
// officer step.
type WoodlandOfficerReviewSummary struct {
	ApplicationID        string             `json:"applicationId"`
	PublicRegister       models.CheckStatus `json:"publicRegister"`
	SiteVisit            models.CheckStatus `json:"siteVisit"`
	Pw14                 models.CheckStatus `json:"pw14"`
	FellingAndRestocking models.CheckStatus `json:"fellingAndRestocking"`
	Conditions           models.CheckStatus `json:"conditions"`
	LarchCheck           models.CheckStatus `json:"larchCheck"`
	LarchFlyover         models.CheckStatus `json:"larchFlyover"`
	Consultations        models.CheckStatus `json:"consultations"`
	EIAScreening         models.CheckStatus `json:"eiaScreening"`
	Complete             bool               `json:"complete"`
}
