package dto

import (
	"time"

	"github.com/fc-casework/felling-licence-api/internal/models"
)

// UpdateReviewCheckRequest updates one checked/passed check item.
type UpdateReviewCheckRequest struct {
	Checked       *bool   `json:"checked" validate:"required"`
	Passed        *bool   `json:"passed,omitempty"`
	FailureReason *string `json:"failureReason,omitempty"`
}

// UpdateLarchCheckRequest updates the shared larch inspection record.
type UpdateLarchCheckRequest struct {
	LarchChecked         *bool      `json:"larchChecked,omitempty"`
	ConfirmInspectionLog *bool      `json:"confirmInspectionLog,omitempty"`
	FlightDate           *time.Time `json:"flightDate,omitempty"`
	FlightObservations   *string    `json:"flightObservations,omitempty"`
}

// AdminOfficerReviewSummary carries the derived state of every admin officer
// check for display; the gates recompute it server side on completion.
type AdminOfficerReviewSummary struct {
	ApplicationID      string             `json:"applicationId"`
	AgentAuthorityForm models.CheckStatus `json:"agentAuthorityForm"`
	Mapping            models.CheckStatus `json:"mapping"`
	Constraints        models.CheckStatus `json:"constraints"`
	LarchCheck         models.CheckStatus `json:"larchCheck"`
	LarchFlyover       models.CheckStatus `json:"larchFlyover"`
	CBW                models.CheckStatus `json:"cbw"`
	EIA                models.CheckStatus `json:"eia"`
	Complete           bool               `json:"complete"`
}

// CompleteAdminOfficerReviewRequest finishes the admin officer stage.
// RequireWoodlandOfficerReview=false routes the application straight to
// approval for workflows that skip the woodland officer stage.
type CompleteAdminOfficerReviewRequest struct {
	RequireWoodlandOfficerReview bool `json:"requireWoodlandOfficerReview"`
}

// CompleteReviewResult reports a successful stage completion and the user
// ids an external notifier should contact. The core never sends anything.
type CompleteReviewResult struct {
	ApplicationID    string                   `json:"applicationId"`
	NewStatus        models.ApplicationStatus `json:"newStatus"`
	ApplicantID      string                   `json:"applicantId"`
	NextAssigneeID   string                   `json:"nextAssigneeId"`
	NextAssigneeRole models.AssignedRole      `json:"nextAssigneeRole"`
}
