package dto

import "github.com/fc-casework/felling-licence-api/internal/models"

// AssignApplicationRequest asks for a user to take a role on an application.
type AssignApplicationRequest struct {
	UserID   string              `json:"userId" validate:"required"`
	Role     models.AssignedRole `json:"role" validate:"required"`
	CaseNote string              `json:"caseNote,omitempty"`
}

// AssignApplicationResult reports the outcome of an assignment, including
// who needs notifying: the new assignee and any displaced previous holder.
type AssignApplicationResult struct {
	ApplicationID   string              `json:"applicationId"`
	Role            models.AssignedRole `json:"role"`
	AssignedUserID  string              `json:"assignedUserId"`
	AlreadyAssigned bool                `json:"alreadyAssigned"`
	DisplacedUserID *string             `json:"displacedUserId,omitempty"`
	NotifyUserIDs   []string            `json:"notifyUserIds"`
}

// UnassignApplicationRequest removes a user from all roles they hold.
type UnassignApplicationRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// UnassignApplicationResult reports whether anything was closed.
type UnassignApplicationResult struct {
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
	Unassigned    bool   `json:"unassigned"`
}
