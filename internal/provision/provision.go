package provision

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidRole  = errors.New("unknown role")
	ErrConflict     = errors.New("employee already exists")
)

// Tenant-scoped roles an identity may hold. One active role per tenant.
const (
	RoleEmployee = "employee"
	RoleTeamlead = "teamlead"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

var roles = map[string]struct{}{
	RoleEmployee: {},
	RoleTeamlead: {},
	RoleHR:       {},
	RoleAdmin:    {},
}

// ValidRole reports whether role is in the enumerated set.
func ValidRole(role string) bool {
	_, ok := roles[role]
	return ok
}

// Employee statuses.
const (
	StatusPending = "pending"
	StatusActive  = "active"
)

// Employee is a tenant-scoped profile linked 1:1 to an identity account.
type Employee struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	IdentityID   string    `json:"identity_id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	DepartmentID string    `json:"department_id,omitempty"`
	TeamID       string    `json:"team_id,omitempty"`
	SiteID       string    `json:"site_id,omitempty"`
	InvitedBy    string    `json:"invited_by,omitempty"`
	TestUser     bool      `json:"is_test_user"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleAssignment maps an identity to a role within one tenant.
type RoleAssignment struct {
	IdentityID string    `json:"identity_id"`
	TenantID   string    `json:"tenant_id"`
	Role       string    `json:"role"`
	AssignedBy string    `json:"assigned_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmployeeStore persists employee records. CreateEmployee must map a
// duplicate (tenant, email) constraint violation to ErrConflict; the
// EmployeeExistsByEmail pre-check is best effort only.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e Employee) (Employee, error)
	EmployeeExistsByEmail(ctx context.Context, tenantID, email string) (bool, error)
}

// RoleStore persists role assignments. AssignRole replaces any existing
// role of the identity within the tenant.
type RoleStore interface {
	AssignRole(ctx context.Context, a RoleAssignment) error
}
