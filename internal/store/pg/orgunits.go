package pg

import (
	"context"
	"database/sql"
	"errors"

	"teamwerk.io/internal/org"
	"teamwerk.io/internal/tenant"
)

var _ org.Store = (*Store)(nil)

func (s *Store) CreateUnit(ctx context.Context, u org.Unit) (org.Unit, error) {
	var (
		out    org.Unit
		code   sql.NullString
		parent sql.NullString
	)
	row := s.db.QueryRowContext(ctx, `
		insert into org_units (id, tenant_id, kind, name, code, parent_id, is_default)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id, tenant_id, kind, name, code, parent_id, is_default, created_at
	`, u.ID, u.TenantID, u.Kind, u.Name, nullIfEmpty(u.Code), nullIfEmpty(u.ParentID), u.Default)
	err := row.Scan(&out.ID, &out.TenantID, &out.Kind, &out.Name, &code, &parent, &out.Default, &out.CreatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return org.Unit{}, org.ErrConflict
			case pgErrForeignKeyViolation:
				return org.Unit{}, tenant.ErrNotFound
			}
		}
		return org.Unit{}, err
	}
	out.Code = code.String
	out.ParentID = parent.String
	return out, nil
}

func (s *Store) FirstUnitOfKind(ctx context.Context, tenantID, kind string) (org.Unit, bool, error) {
	var (
		out    org.Unit
		code   sql.NullString
		parent sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, tenant_id, kind, name, code, parent_id, is_default, created_at
		from org_units
		where tenant_id = $1 and kind = $2
		order by created_at asc
		limit 1
	`, tenantID, kind).Scan(&out.ID, &out.TenantID, &out.Kind, &out.Name, &code, &parent, &out.Default, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return org.Unit{}, false, nil
	}
	if err != nil {
		return org.Unit{}, false, err
	}
	out.Code = code.String
	out.ParentID = parent.String
	return out, true, nil
}
