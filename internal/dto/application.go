package dto

import (
	"time"

	"github.com/fc-casework/felling-licence-api/internal/models"
)

// ApplicationSummary is the read model returned for listing and detail
// headers.
type ApplicationSummary struct {
	ID              string                   `json:"id"`
	Reference       string                   `json:"reference"`
	CurrentStatus   models.ApplicationStatus `json:"currentStatus"`
	AreaCode        string                   `json:"areaCode"`
	WoodlandOwnerID string                   `json:"woodlandOwnerId"`
	DateReceived    *time.Time               `json:"dateReceived,omitempty"`
	FinalActionDate *time.Time               `json:"finalActionDate,omitempty"`

	AdminOfficerID    *string `json:"adminOfficerId,omitempty"`
	WoodlandOfficerID *string `json:"woodlandOfficerId,omitempty"`
	FieldManagerID    *string `json:"fieldManagerId,omitempty"`
}

// WithdrawApplicationRequest withdraws an application with a reason.
type WithdrawApplicationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// StatusChangeResult reports a ledger append for audit and notification.
type StatusChangeResult struct {
	ApplicationID string                   `json:"applicationId"`
	NewStatus     models.ApplicationStatus `json:"newStatus"`
	PriorStatus   models.ApplicationStatus `json:"priorStatus"`
	ApplicantID   string                   `json:"applicantId"`
}
