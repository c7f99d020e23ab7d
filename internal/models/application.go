package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Application is the aggregate root for one felling licence application. The
// repository loads it fully hydrated; services mutate it in memory and save
// all pending changes in one transaction.
type Application struct {
	ID              string  `db:"id" json:"id"`
	Reference       string  `db:"reference" json:"reference"`
	CreatedByID     string  `db:"created_by_id" json:"createdById"`
	WoodlandOwnerID string  `db:"woodland_owner_id" json:"woodlandOwnerId"`
	AreaCode        string  `db:"area_code" json:"areaCode"`
	CentrePoint     *string `db:"centre_point" json:"centrePoint,omitempty"`

	DateReceived        *time.Time `db:"date_received" json:"dateReceived,omitempty"`
	CitizensCharterDate *time.Time `db:"citizens_charter_date" json:"citizensCharterDate,omitempty"`
	FinalActionDate     *time.Time `db:"final_action_date" json:"finalActionDate,omitempty"`

	IsAgencyApplication bool `db:"is_agency_application" json:"isAgencyApplication"`
	IsLarchApplication  bool `db:"is_larch_application" json:"isLarchApplication"`
	IsCBWApplication    bool `db:"is_cbw_application" json:"isCbwApplication"`
	IsEIAApplication    bool `db:"is_eia_application" json:"isEiaApplication"`

	StatusHistory   []StatusHistoryEntry   `json:"statusHistory"`
	AssigneeHistory []AssigneeHistoryEntry `json:"assigneeHistory"`

	ProposedCompartments  []ProposedCompartment   `json:"proposedCompartments"`
	ProposedFellingDetails []ProposedFellingDetail `json:"proposedFellingDetails"`
	SubmittedCompartments []SubmittedCompartment  `json:"submittedCompartments"`

	AdminOfficerReview    *AdminOfficerReview    `json:"adminOfficerReview,omitempty"`
	WoodlandOfficerReview *WoodlandOfficerReview `json:"woodlandOfficerReview,omitempty"`
	ApproverReview        *ApproverReview        `json:"approverReview,omitempty"`
	LarchCheck            *LarchCheckDetails     `json:"larchCheck,omitempty"`
	PublicRegister        *PublicRegister        `json:"publicRegister,omitempty"`

	AmendmentReviews []FellingAndRestockingAmendmentReview `json:"amendmentReviews"`
	ConsulteeInvites []ConsulteeInvite                     `json:"consulteeInvites"`
	CaseNotes        []CaseNote                            `json:"caseNotes"`
	Documents        []Document                            `json:"documents"`
}

// ApplicationFilter captures filtering criteria for listing applications.
type ApplicationFilter struct {
	Status         *ApplicationStatus
	AreaCode       string
	AssignedUserID string
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// CurrentStatus is the status ledger entry with the latest timestamp, or
// Draft when no entry exists yet. Ties break towards the later entry.
func (a *Application) CurrentStatus() ApplicationStatus {
	if a == nil || len(a.StatusHistory) == 0 {
		return StatusDraft
	}
	latest := a.StatusHistory[0]
	for _, e := range a.StatusHistory[1:] {
		if !e.CreatedAt.Before(latest.CreatedAt) {
			latest = e
		}
	}
	return latest.Status
}

// AppendStatus appends a new ledger entry. Transition validity is the
// calling gate's responsibility, never checked here.
func (a *Application) AppendStatus(status ApplicationStatus, actorID string, ts time.Time) StatusHistoryEntry {
	entry := StatusHistoryEntry{
		ID:            uuid.NewString(),
		ApplicationID: a.ID,
		Status:        status,
		CreatedByID:   actorID,
		CreatedAt:     ts,
	}
	a.StatusHistory = append(a.StatusHistory, entry)
	return entry
}

// StatusBeforeWithdrawal finds the status value that was current immediately
// before the application was withdrawn. The second return is false when the
// application is not currently withdrawn or no earlier status exists.
func (a *Application) StatusBeforeWithdrawal() (ApplicationStatus, bool) {
	if a.CurrentStatus() != StatusWithdrawn {
		return "", false
	}
	ordered := make([]StatusHistoryEntry, len(a.StatusHistory))
	copy(ordered, a.StatusHistory)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})
	for _, e := range ordered {
		if e.Status != StatusWithdrawn {
			return e.Status, true
		}
	}
	return "", false
}

// ActiveAssignee returns the active holder of a role, or nil.
func (a *Application) ActiveAssignee(role AssignedRole) *AssigneeHistoryEntry {
	for i := range a.AssigneeHistory {
		e := &a.AssigneeHistory[i]
		if e.Role == role && e.Active() {
			return e
		}
	}
	return nil
}

// AssignUser makes userID the active holder of role, closing any existing
// active entry for that role first. It reports whether the user was already
// the active holder (in which case nothing changes) and the id of a
// displaced previous holder, if any.
func (a *Application) AssignUser(userID string, role AssignedRole, ts time.Time) (alreadyAssigned bool, displacedUserID *string) {
	current := a.ActiveAssignee(role)
	if current != nil {
		if current.AssignedUserID == userID {
			return true, nil
		}
		closed := ts
		current.UnassignedAt = &closed
		displaced := current.AssignedUserID
		displacedUserID = &displaced
	}
	a.AssigneeHistory = append(a.AssigneeHistory, AssigneeHistoryEntry{
		ID:             uuid.NewString(),
		ApplicationID:  a.ID,
		Role:           role,
		AssignedUserID: userID,
		AssignedAt:     ts,
	})
	return false, displacedUserID
}

// UnassignUser closes every active entry held by userID. Idempotent: a
// second call for the same user is a no-op and reports false.
func (a *Application) UnassignUser(userID string, ts time.Time) bool {
	closedAny := false
	for i := range a.AssigneeHistory {
		e := &a.AssigneeHistory[i]
		if e.AssignedUserID == userID && e.Active() {
			closed := ts
			e.UnassignedAt = &closed
			closedAny = true
		}
	}
	return closedAny
}

// IsAssigned reports whether userID actively holds any of the given roles.
func (a *Application) IsAssigned(userID string, roles ...AssignedRole) bool {
	for _, role := range roles {
		if e := a.ActiveAssignee(role); e != nil && e.AssignedUserID == userID {
			return true
		}
	}
	return false
}

// SubmittedCompartmentByCompartmentID resolves a submitted compartment by
// the logical compartment id carried over from the property profile.
func (a *Application) SubmittedCompartmentByCompartmentID(compartmentID string) *SubmittedCompartment {
	for i := range a.SubmittedCompartments {
		if a.SubmittedCompartments[i].CompartmentID == compartmentID {
			return &a.SubmittedCompartments[i]
		}
	}
	return nil
}

// CompartmentName resolves a submitted compartment id to its display name
// for amendment diffs; unknown ids render as the raw id.
func (a *Application) CompartmentName(submittedCompartmentID string) string {
	for i := range a.SubmittedCompartments {
		if a.SubmittedCompartments[i].ID == submittedCompartmentID {
			return a.SubmittedCompartments[i].DisplayName()
		}
	}
	return submittedCompartmentID
}

// ProposedFellingDetailByID looks up a proposed felling detail.
func (a *Application) ProposedFellingDetailByID(id string) *ProposedFellingDetail {
	for i := range a.ProposedFellingDetails {
		if a.ProposedFellingDetails[i].ID == id {
			return &a.ProposedFellingDetails[i]
		}
	}
	return nil
}

// ConfirmedFellingDetailByID searches every submitted compartment.
func (a *Application) ConfirmedFellingDetailByID(id string) (*SubmittedCompartment, *ConfirmedFellingDetail) {
	for i := range a.SubmittedCompartments {
		sc := &a.SubmittedCompartments[i]
		for j := range sc.ConfirmedFellingDetails {
			if sc.ConfirmedFellingDetails[j].ID == id {
				return sc, &sc.ConfirmedFellingDetails[j]
			}
		}
	}
	return nil, nil
}

// ConfirmedFellingDetailByProposedID finds the confirmed detail linked back
// to a proposed felling detail, if it still exists.
func (a *Application) ConfirmedFellingDetailByProposedID(proposedID string) (*SubmittedCompartment, *ConfirmedFellingDetail) {
	for i := range a.SubmittedCompartments {
		sc := &a.SubmittedCompartments[i]
		for j := range sc.ConfirmedFellingDetails {
			cfd := &sc.ConfirmedFellingDetails[j]
			if cfd.ProposedFellingDetailID != nil && *cfd.ProposedFellingDetailID == proposedID {
				return sc, cfd
			}
		}
	}
	return nil, nil
}

// HasConfirmedFellingDetail reports whether any confirmed detail exists.
func (a *Application) HasConfirmedFellingDetail() bool {
	for i := range a.SubmittedCompartments {
		if len(a.SubmittedCompartments[i].ConfirmedFellingDetails) > 0 {
			return true
		}
	}
	return false
}

// OutstandingConsulteeInvites counts invites still awaiting a response.
func (a *Application) OutstandingConsulteeInvites() int {
	n := 0
	for i := range a.ConsulteeInvites {
		if a.ConsulteeInvites[i].Outstanding() {
			n++
		}
	}
	return n
}

// HasSiteVisitEvidence reports whether site visit evidence was recorded:
// either an uploaded site visit attachment or a site visit case note.
func (a *Application) HasSiteVisitEvidence() bool {
	for i := range a.Documents {
		if a.Documents[i].Purpose == DocumentPurposeSiteVisitAttachment {
			return true
		}
	}
	for i := range a.CaseNotes {
		if a.CaseNotes[i].Type == CaseNoteSiteVisit {
			return true
		}
	}
	return false
}

// LatestActiveAmendmentReview returns the most recently sent amendment round
// that is still active, or nil.
func (a *Application) LatestActiveAmendmentReview() *FellingAndRestockingAmendmentReview {
	var latest *FellingAndRestockingAmendmentReview
	for i := range a.AmendmentReviews {
		r := &a.AmendmentReviews[i]
		if !r.Active() {
			continue
		}
		if latest == nil || r.AmendmentsSentDate.After(latest.AmendmentsSentDate) {
			latest = r
		}
	}
	return latest
}
