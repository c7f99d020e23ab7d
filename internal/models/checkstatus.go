package models

// CheckStatus is the derived state of a single review-gate check item.
type CheckStatus string

const (
	CheckNotStarted     CheckStatus = "NOT_STARTED"
	CheckInProgress     CheckStatus = "IN_PROGRESS"
	CheckCompleted      CheckStatus = "COMPLETED"
	CheckFailed         CheckStatus = "FAILED"
	CheckCannotStartYet CheckStatus = "CANNOT_START_YET"
	CheckNotRequired    CheckStatus = "NOT_REQUIRED"
)

// Resolved reports whether a check no longer blocks stage completion.
func (s CheckStatus) Resolved() bool {
	return s == CheckCompleted || s == CheckNotRequired
}

// ReviewCheck is the stored state behind a derivable check item: whether the
// officer has marked it checked, whether it passed, and why it failed.
type ReviewCheck struct {
	Checked       *bool   `db:"checked" json:"checked"`
	Passed        *bool   `db:"passed" json:"passed"`
	FailureReason *string `db:"failure_reason" json:"failureReason,omitempty"`
}

// CheckedTrue reports whether the item has been explicitly marked checked.
func (c ReviewCheck) CheckedTrue() bool {
	return c.Checked != nil && *c.Checked
}

// PassedTrue reports whether the item has been explicitly marked passed.
func (c ReviewCheck) PassedTrue() bool {
	return c.Passed != nil && *c.Passed
}

// pairStatus derives NotStarted / InProgress / Completed / Failed from the
// checked+passed pair. An untouched item is NotStarted; checked=false keeps
// the item InProgress until the officer records an outcome.
func (c ReviewCheck) pairStatus() CheckStatus {
	switch {
	case c.Checked == nil:
		return CheckNotStarted
	case !*c.Checked:
		return CheckInProgress
	case c.Passed == nil:
		return CheckInProgress
	case *c.Passed:
		return CheckCompleted
	default:
		return CheckFailed
	}
}

// progressStatus derives NotStarted / InProgress / Completed from the checked
// flag alone. Used for items that have no failure branch.
func (c ReviewCheck) progressStatus() CheckStatus {
	switch {
	case c.Checked == nil:
		return CheckNotStarted
	case !*c.Checked:
		return CheckInProgress
	default:
		return CheckCompleted
	}
}

// answeredStatus treats any recorded answer, pass or fail, as completion.
func (c ReviewCheck) answeredStatus() CheckStatus {
	if c.Checked == nil {
		return CheckNotStarted
	}
	return CheckCompleted
}
