package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teamwerk.io/internal/identity"
	"teamwerk.io/internal/ids"
	"teamwerk.io/internal/obs"
	"teamwerk.io/internal/tenant"
)

// InviteParams carries one user invitation.
type InviteParams struct {
	TenantID     string
	Email        string
	Role         string
	FullName     string
	DepartmentID string
	TeamID       string
	SiteID       string
	ActorID      string
}

// InviteResult is returned to the caller on a successful invitation.
type InviteResult struct {
	IdentityID   string `json:"identity_id"`
	EmployeeID   string `json:"employee_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	InviteStatus string `json:"invite_status"`
}

// TestUserParams carries one disposable test-identity request.
type TestUserParams struct {
	TenantID string
	Role     string
	FullName string
	Email    string
	ActorID  string
}

// Credentials are returned exactly once, in the create-test-user success
// response. They are redacted before reaching the audit store.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TestUserResult is returned to the caller for a created test user.
type TestUserResult struct {
	IdentityID  string      `json:"identity_id"`
	EmployeeID  string      `json:"employee_id"`
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	TestUser    bool        `json:"is_test_user"`
	Credentials Credentials `json:"credentials"`
}

// Service coordinates an identity account, an employee record and a role
// assignment as one logical provisioning unit. There is no cross-resource
// transaction: identity creation is the step of record, and a failed
// secondary write triggers a compensating delete of the fresh account.
type Service struct {
	tenants   tenant.Store
	idp       identity.Service
	employees EmployeeStore
	roles     RoleStore
}

// NewService constructs a Service.
func NewService(tenants tenant.Store, idp identity.Service, employees EmployeeStore, roles RoleStore) (*Service, error) {
	if tenants == nil || idp == nil || employees == nil || roles == nil {
		return nil, errors.New("tenant store, identity service, employee store and role store are required")
	}
	return &Service{tenants: tenants, idp: idp, employees: employees, roles: roles}, nil
}

// InviteUser invites a real user into a tenant: unconfirmed identity with
// invitation email, pending employee record, role assignment.
func (s *Service) InviteUser(ctx context.Context, p InviteParams) (InviteResult, error) {
	email := strings.TrimSpace(strings.ToLower(p.Email))
	if email == "" || !strings.Contains(email, "@") {
		return InviteResult{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	role := strings.TrimSpace(strings.ToLower(p.Role))
	if role == "" {
		return InviteResult{}, fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	if !ValidRole(role) {
		return InviteResult{}, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	t, err := s.tenants.GetTenant(ctx, strings.TrimSpace(p.TenantID))
	if err != nil {
		return InviteResult{}, err
	}

	exists, err := s.employees.EmployeeExistsByEmail(ctx, t.ID, email)
	if err != nil {
		return InviteResult{}, err
	}
	if exists {
		return InviteResult{}, fmt.Errorf("%w: %s in tenant %s", ErrConflict, email, t.ID)
	}

	account, err := s.idp.Invite(ctx, identity.InviteParams{
		Email:    email,
		TenantID: t.ID,
		FullName: strings.TrimSpace(p.FullName),
		Role:     role,
	})
	if err != nil {
		return InviteResult{}, fmt.Errorf("invite identity: %w", err)
	}

	first, last := splitName(p.FullName)
	emp := Employee{
		ID:           ids.New(),
		TenantID:     t.ID,
		IdentityID:   account.ID,
		Email:        email,
		FirstName:    first,
		LastName:     last,
		Role:         role,
		Status:       StatusPending,
		DepartmentID: strings.TrimSpace(p.DepartmentID),
		TeamID:       strings.TrimSpace(p.TeamID),
		SiteID:       strings.TrimSpace(p.SiteID),
		InvitedBy:    strings.TrimSpace(p.ActorID),
	}
	emp, err = s.writeRecords(ctx, emp, p.ActorID)
	if err != nil {
		return InviteResult{}, err
	}

	return InviteResult{
		IdentityID:   account.ID,
		EmployeeID:   emp.ID,
		Email:        email,
		Role:         role,
		InviteStatus: "sent",
	}, nil
}

// CreateTestUser creates a disposable, pre-confirmed identity with a known
// password and an active employee record, both flagged as test artifacts.
func (s *Service) CreateTestUser(ctx context.Context, p TestUserParams) (TestUserResult, error) {
	role := strings.TrimSpace(strings.ToLower(p.Role))
	if role == "" {
		return TestUserResult{}, fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	if !ValidRole(role) {
		return TestUserResult{}, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	t, err := s.tenants.GetTenant(ctx, strings.TrimSpace(p.TenantID))
	if err != nil {
		return TestUserResult{}, err
	}

	email := strings.TrimSpace(strings.ToLower(p.Email))
	if email == "" {
		email = identity.SyntheticEmail(t.ID)
	}
	password := identity.SyntheticPassword()

	exists, err := s.employees.EmployeeExistsByEmail(ctx, t.ID, email)
	if err != nil {
		return TestUserResult{}, err
	}
	if exists {
		return TestUserResult{}, fmt.Errorf("%w: %s in tenant %s", ErrConflict, email, t.ID)
	}

	account, err := s.idp.CreateAccount(ctx, identity.CreateParams{
		Email:    email,
		Password: password,
		TenantID: t.ID,
		FullName: strings.TrimSpace(p.FullName),
		Role:     role,
		TestUser: true,
	})
	if err != nil {
		return TestUserResult{}, fmt.Errorf("create identity: %w", err)
	}

	first, last := splitName(p.FullName)
	emp := Employee{
		ID:         ids.New(),
		TenantID:   t.ID,
		IdentityID: account.ID,
		Email:      email,
		FirstName:  first,
		LastName:   last,
		Role:       role,
		Status:     StatusActive,
		InvitedBy:  strings.TrimSpace(p.ActorID),
		TestUser:   true,
	}
	emp, err = s.writeRecords(ctx, emp, p.ActorID)
	if err != nil {
		return TestUserResult{}, err
	}

	return TestUserResult{
		IdentityID: account.ID,
		EmployeeID: emp.ID,
		Email:      email,
		Role:       role,
		TestUser:   true,
		Credentials: Credentials{
			Email:    email,
			Password: password,
		},
	}, nil
}

// writeRecords persists the employee record and role assignment. On failure
// the freshly created identity is deleted so no orphan account survives; if
// that compensation also fails, the error names the orphan for operator
// reconciliation.
func (s *Service) writeRecords(ctx context.Context, emp Employee, actorID string) (Employee, error) {
	created, err := s.employees.CreateEmployee(ctx, emp)
	if err != nil {
		return Employee{}, s.compensate(ctx, emp.IdentityID, fmt.Errorf("create employee: %w", err))
	}
	err = s.roles.AssignRole(ctx, RoleAssignment{
		IdentityID: emp.IdentityID,
		TenantID:   emp.TenantID,
		Role:       emp.Role,
		AssignedBy: strings.TrimSpace(actorID),
	})
	if err != nil {
		return Employee{}, s.compensate(ctx, emp.IdentityID, fmt.Errorf("assign role: %w", err))
	}
	return created, nil
}

func (s *Service) compensate(ctx context.Context, identityID string, cause error) error {
	if delErr := s.idp.Delete(ctx, identityID); delErr != nil {
		obs.LogEvent(map[string]any{
			"level":       "error",
			"msg":         "identity compensation failed",
			"identity_id": identityID,
			"error":       delErr.Error(),
		})
		return fmt.Errorf("provisioning_incomplete: orphan identity %s: %w", identityID, cause)
	}
	return cause
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	idx := strings.LastIndex(full, " ")
	if idx < 0 {
		return full, ""
	}
	return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+1:])
}
