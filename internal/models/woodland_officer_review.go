package models

import "time"

// LicenceDuration is the recommended or approved licence length in years.
type LicenceDuration int

const (
	DurationNone      LicenceDuration = 0
	DurationOneYear   LicenceDuration = 1
	DurationTwoYear   LicenceDuration = 2
	DurationThreeYear LicenceDuration = 3
	DurationFourYear  LicenceDuration = 4
	DurationFiveYear  LicenceDuration = 5
	DurationTenYear   LicenceDuration = 10
)

// Pw14Checklist is the woodland officer's PW14 compliance checklist.
type Pw14Checklist struct {
	LandInformationSearchChecked  *bool `db:"land_information_search_checked" json:"landInformationSearchChecked"`
	AreProposalsUKFSCompliant     *bool `db:"are_proposals_ukfs_compliant" json:"areProposalsUkfsCompliant"`
	TPOOrCADeclared               *bool `db:"tpo_or_ca_declared" json:"tpoOrCaDeclared"`
	IsApplicationValid            *bool `db:"is_application_valid" json:"isApplicationValid"`
	EIAThresholdExceeded          *bool `db:"eia_threshold_exceeded" json:"eiaThresholdExceeded"`
	InterestDeclared              *bool `db:"interest_declared" json:"interestDeclared"`
	InterestDeclarationCompleted  *bool `db:"interest_declaration_completed" json:"interestDeclarationCompleted"`
	ComplianceRecommendationsMade *bool `db:"compliance_recommendations_made" json:"complianceRecommendationsMade"`
}

// Status derives the checklist state. The interest declaration follow-up is
// only needed when an interest was declared.
func (p Pw14Checklist) Status() CheckStatus {
	required := []*bool{
		p.LandInformationSearchChecked,
		p.AreProposalsUKFSCompliant,
		p.TPOOrCADeclared,
		p.IsApplicationValid,
		p.EIAThresholdExceeded,
		p.InterestDeclared,
		p.ComplianceRecommendationsMade,
	}
	answered := 0
	for _, v := range required {
		if v != nil {
			answered++
		}
	}
	if p.InterestDeclared != nil && *p.InterestDeclared {
		required = append(required, p.InterestDeclarationCompleted)
		if p.InterestDeclarationCompleted != nil {
			answered++
		}
	}
	switch {
	case answered == 0:
		return CheckNotStarted
	case answered < len(required):
		return CheckInProgress
	default:
		return CheckCompleted
	}
}

// WoodlandOfficerReview is the per-application woodland officer stage record.
type WoodlandOfficerReview struct {
	ID            string `db:"id" json:"id"`
	ApplicationID string `db:"application_id" json:"applicationId"`

	SiteVisitNeeded   *bool `db:"site_visit_needed" json:"siteVisitNeeded"`
	SiteVisitArranged *bool `db:"site_visit_arranged" json:"siteVisitArranged"`
	SiteVisitComplete bool  `db:"site_visit_complete" json:"siteVisitComplete"`

	Pw14 Pw14Checklist `json:"pw14"`

	ConsultationsNeeded   *bool `db:"consultations_needed" json:"consultationsNeeded"`
	ConsultationsComplete *bool `db:"consultations_complete" json:"consultationsComplete"`

	EIAScreeningComplete *bool `db:"eia_screening_complete" json:"eiaScreeningComplete"`

	ConfirmedFellingAndRestockingComplete bool `db:"confirmed_fr_complete" json:"confirmedFellingAndRestockingComplete"`

	IsConditional             *bool      `db:"is_conditional" json:"isConditional"`
	ConditionsToApplicantDate *time.Time `db:"conditions_to_applicant_date" json:"conditionsToApplicantDate,omitempty"`

	RecommendedLicenceDuration     *LicenceDuration `db:"recommended_licence_duration" json:"recommendedLicenceDuration,omitempty"`
	RecommendDecisionPublicRegister *bool           `db:"recommend_decision_public_register" json:"recommendDecisionPublicRegister,omitempty"`

	Complete        bool      `db:"complete" json:"complete"`
	LastUpdatedByID string    `db:"last_updated_by_id" json:"lastUpdatedById"`
	LastUpdatedAt   time.Time `db:"last_updated_at" json:"lastUpdatedAt"`
}

// SiteVisitStatus derives the site visit step. Completion needs recorded
// evidence: either an uploaded site visit attachment or a site visit case
// note taken on the day.
func (r *WoodlandOfficerReview) SiteVisitStatus(hasEvidence bool) CheckStatus {
	if r == nil || r.SiteVisitNeeded == nil {
		return CheckNotStarted
	}
	if !*r.SiteVisitNeeded {
		return CheckNotRequired
	}
	if r.SiteVisitComplete && hasEvidence {
		return CheckCompleted
	}
	return CheckInProgress
}

// ConsultationsStatus derives the consultation step. outstandingInvites is the
// number of consultee invitations still awaiting a response.
func (r *WoodlandOfficerReview) ConsultationsStatus(outstandingInvites int) CheckStatus {
	if r == nil || r.ConsultationsNeeded == nil {
		return CheckNotStarted
	}
	if !*r.ConsultationsNeeded {
		return CheckNotRequired
	}
	if r.ConsultationsComplete != nil && *r.ConsultationsComplete && outstandingInvites == 0 {
		return CheckCompleted
	}
	return CheckInProgress
}

// EIAScreeningStatus derives the EIA screening step.
func (r *WoodlandOfficerReview) EIAScreeningStatus(isEIAApplication bool) CheckStatus {
	if !isEIAApplication {
		return CheckNotRequired
	}
	if r == nil || r.EIAScreeningComplete == nil {
		return CheckNotStarted
	}
	if *r.EIAScreeningComplete {
		return CheckCompleted
	}
	return CheckInProgress
}

// FellingAndRestockingStatus derives the confirmed felling/restocking step
// from whether any confirmed detail exists and the officer's completion flag.
func (r *WoodlandOfficerReview) FellingAndRestockingStatus(hasConfirmedDetail bool) CheckStatus {
	if !hasConfirmedDetail {
		return CheckNotStarted
	}
	if r != nil && r.ConfirmedFellingAndRestockingComplete {
		return CheckCompleted
	}
	return CheckInProgress
}

// ConditionsStatus derives the conditions step: resolved once the officer has
// answered the conditionality question and, for conditional licences, sent
// the conditions to the applicant.
func (r *WoodlandOfficerReview) ConditionsStatus() CheckStatus {
	if r == nil || r.IsConditional == nil {
		return CheckNotStarted
	}
	if !*r.IsConditional {
		return CheckCompleted
	}
	if r.ConditionsToApplicantDate != nil {
		return CheckCompleted
	}
	return CheckInProgress
}

// LarchStatus derives the larch check for the woodland officer stage, which
// gates it on the confirmed felling/restocking step instead of constraints.
func (r *WoodlandOfficerReview) LarchStatus(isLarchApplication, hasConfirmedDetail bool, lc *LarchCheckDetails) CheckStatus {
	prereqDone := r.FellingAndRestockingStatus(hasConfirmedDetail) == CheckCompleted
	return LarchCheckStatus(isLarchApplication, prereqDone, lc)
}
