package models

import "time"

// LarchCheckDetails records the larch inspection shared by the admin officer
// and woodland officer review stages. The two stages gate it on different
// prerequisites but read the same record.
type LarchCheckDetails struct {
	ID                   string     `db:"id" json:"id"`
	ApplicationID        string     `db:"application_id" json:"applicationId"`
	LarchChecked         *bool      `db:"larch_checked" json:"larchChecked"`
	ConfirmInspectionLog bool       `db:"confirm_inspection_log" json:"confirmInspectionLog"`
	FlightDate           *time.Time `db:"flight_date" json:"flightDate,omitempty"`
	FlightObservations   *string    `db:"flight_observations" json:"flightObservations,omitempty"`
	LastUpdatedByID      string     `db:"last_updated_by_id" json:"lastUpdatedById"`
	LastUpdatedAt        time.Time  `db:"last_updated_at" json:"lastUpdatedAt"`
}

// LarchCheckStatus derives the larch check state. prereqDone is the gating
// stage's own prerequisite (constraints+mapping for the admin officer stage,
// confirmed felling/restocking for the woodland officer stage).
func LarchCheckStatus(isLarchApplication, prereqDone bool, lc *LarchCheckDetails) CheckStatus {
	if !isLarchApplication {
		return CheckNotRequired
	}
	if !prereqDone {
		return CheckCannotStartYet
	}
	if lc == nil || lc.LarchChecked == nil {
		return CheckNotStarted
	}
	if !*lc.LarchChecked {
		return CheckInProgress
	}
	return CheckCompleted
}

// LarchFlyoverStatus derives the flyover state. A flyover is only required
// when the larch check confirmed an inspection log; it cannot start until the
// larch check itself completed, and completes once a flight date is recorded.
func LarchFlyoverStatus(isLarchApplication bool, lc *LarchCheckDetails) CheckStatus {
	if !isLarchApplication || lc == nil || !lc.ConfirmInspectionLog {
		return CheckNotRequired
	}
	if lc.LarchChecked == nil || !*lc.LarchChecked {
		return CheckCannotStartYet
	}
	if lc.FlightDate == nil {
		return CheckNotStarted
	}
	return CheckCompleted
}
