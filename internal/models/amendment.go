package models

import "time"

// FellingAndRestockingAmendmentReview records one round of officer-requested
// amendments to the confirmed plan sent to the applicant for agreement.
// Several rounds may exist per application; active means not yet completed.
type FellingAndRestockingAmendmentReview struct {
	ID            string `db:"id" json:"id"`
	ApplicationID string `db:"application_id" json:"applicationId"`

	AmendmentsSentDate time.Time `db:"amendments_sent_date" json:"amendmentsSentDate"`
	AmendmentsReason   string    `db:"amendments_reason" json:"amendmentsReason"`
	ResponseDeadline   time.Time `db:"response_deadline" json:"responseDeadline"`

	ApplicantAgreed             *bool      `db:"applicant_agreed" json:"applicantAgreed,omitempty"`
	ApplicantDisagreementReason *string    `db:"applicant_disagreement_reason" json:"applicantDisagreementReason,omitempty"`
	ResponseReceivedDate        *time.Time `db:"response_received_date" json:"responseReceivedDate,omitempty"`

	ReminderNotificationSentAt *time.Time `db:"reminder_notification_sent_at" json:"reminderNotificationSentAt,omitempty"`

	AmendmentReviewCompleted bool      `db:"amendment_review_completed" json:"amendmentReviewCompleted"`
	CreatedByID              string    `db:"created_by_id" json:"createdById"`
	CreatedAt                time.Time `db:"created_at" json:"createdAt"`
}

// Active reports whether the review round is still awaiting resolution.
func (r *FellingAndRestockingAmendmentReview) Active() bool {
	return r != nil && !r.AmendmentReviewCompleted
}

// DueReminder reports whether the round needs a reminder: still active, no
// reminder sent yet, no response received, and the deadline falls within the
// reminder window measured from now.
func (r *FellingAndRestockingAmendmentReview) DueReminder(now time.Time, window time.Duration) bool {
	if !r.Active() || r.ReminderNotificationSentAt != nil || r.ResponseReceivedDate != nil {
		return false
	}
	return !r.ResponseDeadline.After(now.Add(window))
}

// DueWithdrawal reports whether the round's deadline has fully passed with no
// response, making the application eligible for automatic withdrawal.
func (r *FellingAndRestockingAmendmentReview) DueWithdrawal(now time.Time) bool {
	if !r.Active() || r.ResponseReceivedDate != nil {
		return false
	}
	return r.ResponseDeadline.Before(now)
}
