package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPw14StatusInterestDeclarationCounting(t *testing.T) {
	p := Pw14Checklist{}
	assert.Equal(t, CheckNotStarted, p.Status())

	p.LandInformationSearchChecked = bp(true)
	assert.Equal(t, CheckInProgress, p.Status())

	p.AreProposalsUKFSCompliant = bp(true)
	p.TPOOrCADeclared = bp(false)
	p.IsApplicationValid = bp(true)
	p.EIAThresholdExceeded = bp(false)
	p.ComplianceRecommendationsMade = bp(true)

	// No interest declared: seven answers complete the list.
	p.InterestDeclared = bp(false)
	assert.Equal(t, CheckCompleted, p.Status())

	// A declared interest adds the follow-up question.
	p.InterestDeclared = bp(true)
	assert.Equal(t, CheckInProgress, p.Status())
	p.InterestDeclarationCompleted = bp(true)
	assert.Equal(t, CheckCompleted, p.Status())
}

func TestSiteVisitStatusNeedsEvidence(t *testing.T) {
	var nilReview *WoodlandOfficerReview
	assert.Equal(t, CheckNotStarted, nilReview.SiteVisitStatus(false))

	r := &WoodlandOfficerReview{}
	assert.Equal(t, CheckNotStarted, r.SiteVisitStatus(false))

	r.SiteVisitNeeded = bp(false)
	assert.Equal(t, CheckNotRequired, r.SiteVisitStatus(false))

	r.SiteVisitNeeded = bp(true)
	assert.Equal(t, CheckInProgress, r.SiteVisitStatus(false))

	r.SiteVisitComplete = true
	assert.Equal(t, CheckInProgress, r.SiteVisitStatus(false))
	assert.Equal(t, CheckCompleted, r.SiteVisitStatus(true))
}

func TestConsultationsStatus(t *testing.T) {
	var nilReview *WoodlandOfficerReview
	assert.Equal(t, CheckNotStarted, nilReview.ConsultationsStatus(0))

	r := &WoodlandOfficerReview{ConsultationsNeeded: bp(false)}
	assert.Equal(t, CheckNotRequired, r.ConsultationsStatus(0))

	r.ConsultationsNeeded = bp(true)
	r.ConsultationsComplete = bp(true)
	assert.Equal(t, CheckInProgress, r.ConsultationsStatus(2))
	assert.Equal(t, CheckCompleted, r.ConsultationsStatus(0))
}

func TestFellingAndRestockingStatus(t *testing.T) {
	var nilReview *WoodlandOfficerReview
	assert.Equal(t, CheckNotStarted, nilReview.FellingAndRestockingStatus(false))
	assert.Equal(t, CheckInProgress, nilReview.FellingAndRestockingStatus(true))

	r := &WoodlandOfficerReview{ConfirmedFellingAndRestockingComplete: true}
	assert.Equal(t, CheckNotStarted, r.FellingAndRestockingStatus(false))
	assert.Equal(t, CheckCompleted, r.FellingAndRestockingStatus(true))
}

func TestConditionsStatus(t *testing.T) {
	var nilReview *WoodlandOfficerReview
	assert.Equal(t, CheckNotStarted, nilReview.ConditionsStatus())

	r := &WoodlandOfficerReview{IsConditional: bp(false)}
	assert.Equal(t, CheckCompleted, r.ConditionsStatus())

	r.IsConditional = bp(true)
	assert.Equal(t, CheckInProgress, r.ConditionsStatus())

	sent := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	r.ConditionsToApplicantDate = &sent
	assert.Equal(t, CheckCompleted, r.ConditionsStatus())
}

func TestWoodlandOfficerLarchGatedOnConfirmedPlan(t *testing.T) {
	r := &WoodlandOfficerReview{}
	lc := &LarchCheckDetails{LarchChecked: bp(true)}

	assert.Equal(t, CheckCannotStartYet, r.LarchStatus(true, true, lc))
	r.ConfirmedFellingAndRestockingComplete = true
	assert.Equal(t, CheckCompleted, r.LarchStatus(true, true, lc))
	assert.Equal(t, CheckCannotStartYet, r.LarchStatus(true, false, lc))
	assert.Equal(t, CheckNotRequired, r.LarchStatus(false, true, lc))
}

func TestPublicRegisterStatusDerivation(t *testing.T) {
	assert.Equal(t, CheckNotStarted, PublicRegisterStatus(nil))
	assert.Equal(t, CheckNotStarted, PublicRegisterStatus(&PublicRegister{}))

	exempt := PublicRegister{ConsultationExempt: bp(true)}
	assert.Equal(t, CheckCompleted, PublicRegisterStatus(&exempt))

	notExempt := PublicRegister{ConsultationExempt: bp(false)}
	assert.Equal(t, CheckInProgress, PublicRegisterStatus(&notExempt))

	published := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	notExempt.ConsultationPublishedAt = &published
	assert.Equal(t, CheckCompleted, PublicRegisterStatus(&notExempt))
}
