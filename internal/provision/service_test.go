package provision

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"teamwerk.io/internal/identity"
	"teamwerk.io/internal/tenant"
)

type stubTenantStore struct {
	getFn func(context.Context, string) (tenant.Tenant, error)
}

func (s *stubTenantStore) CreateTenant(_ context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	return t, nil
}

func (s *stubTenantStore) GetTenant(ctx context.Context, id string) (tenant.Tenant, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return tenant.Tenant{}, tenant.ErrNotFound
}

func (s *stubTenantStore) TenantExistsByName(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type stubIdentity struct {
	inviteFn func(context.Context, identity.InviteParams) (identity.Account, error)
	createFn func(context.Context, identity.CreateParams) (identity.Account, error)
	deleteFn func(context.Context, string) error

	invites int
	creates int
	deletes []string
}

func (s *stubIdentity) Invite(ctx context.Context, p identity.InviteParams) (identity.Account, error) {
	s.invites++
	if s.inviteFn != nil {
		return s.inviteFn(ctx, p)
	}
	return identity.Account{ID: "idp-1", Email: p.Email}, nil
}

func (s *stubIdentity) CreateAccount(ctx context.Context, p identity.CreateParams) (identity.Account, error) {
	s.creates++
	if s.createFn != nil {
		return s.createFn(ctx, p)
	}
	return identity.Account{ID: "idp-2", Email: p.Email, Confirmed: true}, nil
}

func (s *stubIdentity) Delete(ctx context.Context, id string) error {
	s.deletes = append(s.deletes, id)
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type stubEmployeeStore struct {
	createFn func(context.Context, Employee) (Employee, error)
	existsFn func(context.Context, string, string) (bool, error)

	created []Employee
}

func (s *stubEmployeeStore) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	if s.createFn != nil {
		return s.createFn(ctx, e)
	}
	s.created = append(s.created, e)
	return e, nil
}

func (s *stubEmployeeStore) EmployeeExistsByEmail(ctx context.Context, tenantID, email string) (bool, error) {
	if s.existsFn != nil {
		return s.existsFn(ctx, tenantID, email)
	}
	return false, nil
}

type stubRoleStore struct {
	assignFn func(context.Context, RoleAssignment) error

	assigned []RoleAssignment
}

func (s *stubRoleStore) AssignRole(ctx context.Context, a RoleAssignment) error {
	if s.assignFn != nil {
		return s.assignFn(ctx, a)
	}
	s.assigned = append(s.assigned, a)
	return nil
}

func knownTenant(id string) *stubTenantStore {
	return &stubTenantStore{
		getFn: func(_ context.Context, got string) (tenant.Tenant, error) {
			if got != id {
				return tenant.Tenant{}, tenant.ErrNotFound
			}
			return tenant.Tenant{ID: id, Name: "Acme GmbH", Status: tenant.StatusActive}, nil
		},
	}
}

func newTestService(t *testing.T, tenants tenant.Store, idp identity.Service, emps EmployeeStore, roles RoleStore) *Service {
	t.Helper()
	svc, err := NewService(tenants, idp, emps, roles)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestInviteUserSuccess(t *testing.T) {
	idp := &stubIdentity{}
	emps := &stubEmployeeStore{}
	roles := &stubRoleStore{}
	svc := newTestService(t, knownTenant("t-1"), idp, emps, roles)

	res, err := svc.InviteUser(context.Background(), InviteParams{
		TenantID: "t-1",
		Email:    "Max.Muster@Example.com",
		Role:     "HR",
		FullName: "Max Muster",
		ActorID:  "op-1",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if res.Email != "max.muster@example.com" {
		t.Fatalf("email not normalized: %q", res.Email)
	}
	if res.Role != RoleHR {
		t.Fatalf("role not normalized: %q", res.Role)
	}
	if res.InviteStatus != "sent" {
		t.Fatalf("unexpected invite status %q", res.InviteStatus)
	}
	if len(emps.created) != 1 {
		t.Fatalf("expected one employee record, got %d", len(emps.created))
	}
	emp := emps.created[0]
	if emp.Status != StatusPending {
		t.Fatalf("invited employee must be pending, got %q", emp.Status)
	}
	if emp.FirstName != "Max" || emp.LastName != "Muster" {
		t.Fatalf("name not split: %q %q", emp.FirstName, emp.LastName)
	}
	if emp.InvitedBy != "op-1" {
		t.Fatalf("invited_by not recorded: %q", emp.InvitedBy)
	}
	if len(roles.assigned) != 1 || roles.assigned[0].Role != RoleHR {
		t.Fatalf("role assignment missing: %+v", roles.assigned)
	}
}

func TestInviteUserInvalidRoleWritesNothing(t *testing.T) {
	idp := &stubIdentity{}
	emps := &stubEmployeeStore{}
	roles := &stubRoleStore{}
	svc := newTestService(t, knownTenant("t-1"), idp, emps, roles)

	_, err := svc.InviteUser(context.Background(), InviteParams{
		TenantID: "t-1",
		Email:    "a@b.test",
		Role:     "superuser",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if idp.invites != 0 || len(emps.created) != 0 || len(roles.assigned) != 0 {
		t.Fatal("invalid role must produce no writes")
	}
}

func TestInviteUserUnknownTenant(t *testing.T) {
	svc := newTestService(t, knownTenant("t-1"), &stubIdentity{}, &stubEmployeeStore{}, &stubRoleStore{})
	_, err := svc.InviteUser(context.Background(), InviteParams{
		TenantID: "t-404",
		Email:    "a@b.test",
		Role:     RoleEmployee,
	})
	if !errors.Is(err, tenant.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInviteUserDuplicateEmail(t *testing.T) {
	idp := &stubIdentity{}
	emps := &stubEmployeeStore{
		existsFn: func(_ context.Context, _, _ string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(t, knownTenant("t-1"), idp, emps, &stubRoleStore{})

	_, err := svc.InviteUser(context.Background(), InviteParams{
		TenantID: "t-1",
		Email:    "a@b.test",
		Role:     RoleEmployee,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if idp.invites != 0 {
		t.Fatal("identity invite must not run on duplicate email")
	}
}

func TestCreateTestUserSyntheticCredentials(t *testing.T) {
	idp := &stubIdentity{}
	emps := &stubEmployeeStore{}
	svc := newTestService(t, knownTenant("t-1"), idp, emps, &stubRoleStore{})

	res, err := svc.CreateTestUser(context.Background(), TestUserParams{
		TenantID: "t-1",
		Role:     RoleAdmin,
		ActorID:  "op-1",
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}

	pattern := regexp.MustCompile(`^test-[0-9a-f]+@tenant-[0-9a-z-]+\.test$`)
	if !pattern.MatchString(res.Email) {
		t.Fatalf("synthetic email %q does not match pattern", res.Email)
	}
	if !res.TestUser {
		t.Fatal("result not flagged as test user")
	}
	if res.Credentials.Password == "" {
		t.Fatal("password missing from result")
	}
	if res.Credentials.Email != res.Email {
		t.Fatalf("credential email mismatch: %q vs %q", res.Credentials.Email, res.Email)
	}
	if len(emps.created) != 1 {
		t.Fatalf("expected one employee record, got %d", len(emps.created))
	}
	emp := emps.created[0]
	if emp.Status != StatusActive {
		t.Fatalf("test employee must be active, got %q", emp.Status)
	}
	if !emp.TestUser {
		t.Fatal("employee not flagged as test user")
	}
}

func TestCreateTestUserHonorsSuppliedEmail(t *testing.T) {
	var captured identity.CreateParams
	idp := &stubIdentity{
		createFn: func(_ context.Context, p identity.CreateParams) (identity.Account, error) {
			captured = p
			return identity.Account{ID: "idp-9", Email: p.Email}, nil
		},
	}
	svc := newTestService(t, knownTenant("t-1"), idp, &stubEmployeeStore{}, &stubRoleStore{})

	res, err := svc.CreateTestUser(context.Background(), TestUserParams{
		TenantID: "t-1",
		Role:     RoleEmployee,
		Email:    "QA@Example.test",
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	if res.Email != "qa@example.test" {
		t.Fatalf("supplied email not used: %q", res.Email)
	}
	if !captured.TestUser {
		t.Fatal("identity create not flagged as test user")
	}
	if captured.Password == "" {
		t.Fatal("synthetic password not generated")
	}
}

func TestProvisioningCompensatesOnEmployeeFailure(t *testing.T) {
	idp := &stubIdentity{}
	emps := &stubEmployeeStore{
		createFn: func(_ context.Context, _ Employee) (Employee, error) {
			return Employee{}, errors.New("insert failed")
		},
	}
	svc := newTestService(t, knownTenant("t-1"), idp, emps, &stubRoleStore{})

	_, err := svc.InviteUser(context.Background(), InviteParams{
		TenantID: "t-1",
		Email:    "a@b.test",
		Role:     RoleEmployee,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(idp.deletes) != 1 || idp.deletes[0] != "idp-1" {
		t.Fatalf("compensating delete missing: %v", idp.deletes)
	}
	if strings.Contains(err.Error(), "provisioning_incomplete") {
		t.Fatalf("successful compensation must not report orphan: %v", err)
	}
}

func TestProvisioningReportsOrphanWhenCompensationFails(t *testing.T) {
	idp := &stubIdentity{
		deleteFn: func(_ context.Context, _ string) error {
			return errors.New("idp unavailable")
		},
	}
	roles := &stubRoleStore{
		assignFn: func(_ context.Context, _ RoleAssignment) error {
			return errors.New("insert failed")
		},
	}
	svc := newTestService(t, knownTenant("t-1"), idp, &stubEmployeeStore{}, roles)

	_, err := svc.InviteUser(context.Background(), InviteParams{
		TenantID: "t-1",
		Email:    "a@b.test",
		Role:     RoleEmployee,
	})
	if err == nil || !strings.Contains(err.Error(), "provisioning_incomplete: orphan identity idp-1") {
		t.Fatalf("orphan identity not reported: %v", err)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleEmployee, RoleTeamlead, RoleHR, RoleAdmin} {
		if !ValidRole(role) {
			t.Fatalf("role %q should be valid", role)
		}
	}
	for _, role := range []string{"", "root", "Admin "} {
		if ValidRole(role) {
			t.Fatalf("role %q should be invalid", role)
		}
	}
}
