package pg

import (
	"context"
	"database/sql"
	"fmt"

	"teamwerk.io/internal/provision"
	"teamwerk.io/internal/tenant"
)

var (
	_ provision.EmployeeStore = (*Store)(nil)
	_ provision.RoleStore     = (*Store)(nil)
)

func (s *Store) CreateEmployee(ctx context.Context, e provision.Employee) (provision.Employee, error) {
	var (
		out        provision.Employee
		first      sql.NullString
		last       sql.NullString
		department sql.NullString
		team       sql.NullString
		site       sql.NullString
		invitedBy  sql.NullString
	)
	row := s.db.QueryRowContext(ctx, `
		insert into employees
			(id, tenant_id, identity_id, email, first_name, last_name, role, status,
			 department_id, team_id, site_id, invited_by, is_test_user)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		returning id, tenant_id, identity_id, email, first_name, last_name, role, status,
			department_id, team_id, site_id, invited_by, is_test_user, created_at
	`, e.ID, e.TenantID, e.IdentityID, e.Email,
		nullIfEmpty(e.FirstName), nullIfEmpty(e.LastName), e.Role, e.Status,
		nullIfEmpty(e.DepartmentID), nullIfEmpty(e.TeamID), nullIfEmpty(e.SiteID),
		nullIfEmpty(e.InvitedBy), e.TestUser)
	err := row.Scan(&out.ID, &out.TenantID, &out.IdentityID, &out.Email,
		&first, &last, &out.Role, &out.Status,
		&department, &team, &site, &invitedBy, &out.TestUser, &out.CreatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return provision.Employee{}, fmt.Errorf("%w: %s", provision.ErrConflict, e.Email)
			case pgErrForeignKeyViolation:
				return provision.Employee{}, tenant.ErrNotFound
			}
		}
		return provision.Employee{}, err
	}
	out.FirstName = first.String
	out.LastName = last.String
	out.DepartmentID = department.String
	out.TeamID = team.String
	out.SiteID = site.String
	out.InvitedBy = invitedBy.String
	return out, nil
}

func (s *Store) EmployeeExistsByEmail(ctx context.Context, tenantID, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists(
			select 1 from employees
			where tenant_id = $1 and lower(email) = lower($2)
		)
	`, tenantID, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// AssignRole upserts the identity's role within the tenant. The unique
// constraint on (identity_id, tenant_id) keeps one active role per tenant.
func (s *Store) AssignRole(ctx context.Context, a provision.RoleAssignment) error {
	_, err := s.db.ExecContext(ctx, `
		insert into role_assignments (identity_id, tenant_id, role, assigned_by)
		values ($1, $2, $3, $4)
		on conflict (identity_id, tenant_id) do update
		set role = excluded.role, assigned_by = excluded.assigned_by
	`, a.IdentityID, a.TenantID, a.Role, nullIfEmpty(a.AssignedBy))
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return tenant.ErrNotFound
		}
		return err
	}
	return nil
}
