package models

import "time"

// UserRole represents the account-level roles for the RBAC system. These are
// distinct from AssignedRole, which is held per application.
type UserRole string

const (
	RoleAccountAdmin    UserRole = "ACCOUNT_ADMIN"
	RoleAdminOfficer    UserRole = "ADMIN_OFFICER"
	RoleWoodlandOfficer UserRole = "WOODLAND_OFFICER"
	RoleFieldManager    UserRole = "FIELD_MANAGER"
	RoleApplicant       UserRole = "APPLICANT"
)

// User represents an account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// CanHoldAssignedRole reports whether the account role is eligible for a
// given per-application role.
func (u *User) CanHoldAssignedRole(role AssignedRole) bool {
	switch role {
	case AssignedRoleAdminOfficer:
		return u.Role == RoleAdminOfficer || u.Role == RoleAccountAdmin
	case AssignedRoleWoodlandOfficer:
		return u.Role == RoleWoodlandOfficer || u.Role == RoleAccountAdmin
	case AssignedRoleFieldManager:
		return u.Role == RoleFieldManager || u.Role == RoleAccountAdmin
	case AssignedRoleApplicant, AssignedRoleAuthor:
		return true
	default:
		return false
	}
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
