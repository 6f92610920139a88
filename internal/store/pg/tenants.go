package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"teamwerk.io/internal/tenant"
)

var _ tenant.Store = (*Store)(nil)

func (s *Store) CreateTenant(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	metaJSON := []byte("{}")
	if len(t.Metadata) > 0 {
		data, err := json.Marshal(t.Metadata)
		if err != nil {
			return tenant.Tenant{}, fmt.Errorf("marshal metadata: %w", err)
		}
		metaJSON = data
	}

	var (
		out      tenant.Tenant
		industry sql.NullString
		rawMeta  []byte
	)
	row := s.db.QueryRowContext(ctx, `
		insert into tenants (id, name, country_code, status, industry, metadata)
		values ($1, $2, $3, $4, $5, $6)
		returning id, name, country_code, status, industry, metadata, created_at, updated_at
	`, t.ID, t.Name, t.CountryCode, t.Status, nullIfEmpty(t.Industry), metaJSON)
	if err := row.Scan(&out.ID, &out.Name, &out.CountryCode, &out.Status, &industry, &rawMeta, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return tenant.Tenant{}, fmt.Errorf("%w: %s", tenant.ErrConflict, t.Name)
		}
		return tenant.Tenant{}, err
	}
	if industry.Valid {
		out.Industry = industry.String
	}
	if err := decodeMetadata(rawMeta, &out.Metadata); err != nil {
		return tenant.Tenant{}, err
	}
	return out, nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (tenant.Tenant, error) {
	var (
		out      tenant.Tenant
		industry sql.NullString
		rawMeta  []byte
	)
	err := s.db.QueryRowContext(ctx, `
		select id, name, country_code, status, industry, metadata, created_at, updated_at
		from tenants
		where id = $1
	`, id).Scan(&out.ID, &out.Name, &out.CountryCode, &out.Status, &industry, &rawMeta, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	if err != nil {
		return tenant.Tenant{}, err
	}
	if industry.Valid {
		out.Industry = industry.String
	}
	if err := decodeMetadata(rawMeta, &out.Metadata); err != nil {
		return tenant.Tenant{}, err
	}
	return out, nil
}

func (s *Store) TenantExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from tenants where name = $1)
	`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func decodeMetadata(raw []byte, dst *map[string]string) error {
	*dst = map[string]string{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	return nil
}
