package models

import "time"

// AssignedRole enumerates the roles a user may hold on a single application.
// Roles are independent of each other; one user may hold several at once.
type AssignedRole string

const (
	AssignedRoleAuthor          AssignedRole = "AUTHOR"
	AssignedRoleApplicant       AssignedRole = "APPLICANT"
	AssignedRoleAdminOfficer    AssignedRole = "ADMIN_OFFICER"
	AssignedRoleWoodlandOfficer AssignedRole = "WOODLAND_OFFICER"
	AssignedRoleFieldManager    AssignedRole = "FIELD_MANAGER"
)

// AssigneeHistoryEntry records one user's tenure in a role on an application.
// At most one entry per application and role may have a nil UnassignedAt.
type AssigneeHistoryEntry struct {
	ID             string       `db:"id" json:"id"`
	ApplicationID  string       `db:"application_id" json:"applicationId"`
	Role           AssignedRole `db:"role" json:"role"`
	AssignedUserID string       `db:"assigned_user_id" json:"assignedUserId"`
	AssignedAt     time.Time    `db:"assigned_at" json:"assignedAt"`
	UnassignedAt   *time.Time   `db:"unassigned_at" json:"unassignedAt,omitempty"`
}

// Active reports whether the entry is the current holder of its role.
func (e *AssigneeHistoryEntry) Active() bool {
	return e != nil && e.UnassignedAt == nil
}
