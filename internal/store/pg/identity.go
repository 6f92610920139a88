package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"teamwerk.io/internal/identity"
	"teamwerk.io/internal/ids"
)

// Directory is the database-backed identity provider used when no
// external identity service is configured.
type Directory struct {
	db *sql.DB
}

var _ identity.Service = (*Directory)(nil)

func NewDirectory(s *Store) *Directory {
	return &Directory{db: s.db}
}

func (d *Directory) Invite(ctx context.Context, p identity.InviteParams) (identity.Account, error) {
	acc := identity.Account{
		ID:    ids.New(),
		Email: p.Email,
		Metadata: map[string]string{
			identity.MetaTenantID: p.TenantID,
		},
	}
	if err := d.insert(ctx, acc, ""); err != nil {
		return identity.Account{}, err
	}
	return acc, nil
}

func (d *Directory) CreateAccount(ctx context.Context, p identity.CreateParams) (identity.Account, error) {
	hash, err := identity.HashPassword(p.Password)
	if err != nil {
		return identity.Account{}, fmt.Errorf("hash password: %w", err)
	}
	acc := identity.Account{
		ID:        ids.New(),
		Email:     p.Email,
		Confirmed: true,
		Metadata: map[string]string{
			identity.MetaTenantID: p.TenantID,
		},
	}
	if p.TestUser {
		acc.Metadata[identity.MetaTestUser] = "true"
	}
	if err := d.insert(ctx, acc, hash); err != nil {
		return identity.Account{}, err
	}
	return acc, nil
}

func (d *Directory) Delete(ctx context.Context, accountID string) error {
	res, err := d.db.ExecContext(ctx, `delete from identity_accounts where id = $1`, accountID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return identity.ErrNotFound
	}
	return nil
}

func (d *Directory) insert(ctx context.Context, acc identity.Account, passwordHash string) error {
	metaJSON, err := json.Marshal(acc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = d.db.ExecContext(ctx, `
		insert into identity_accounts (id, email, password_hash, confirmed, metadata)
		values ($1, $2, $3, $4, $5)
	`, acc.ID, acc.Email, nullIfEmpty(passwordHash), acc.Confirmed, metaJSON)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return fmt.Errorf("%w: %s", identity.ErrConflict, acc.Email)
		}
		return err
	}
	return nil
}

// GetAccount is used by operational tooling; the provisioning flow never
// reads accounts back.
func (d *Directory) GetAccount(ctx context.Context, accountID string) (identity.Account, error) {
	var (
		acc     identity.Account
		rawMeta []byte
	)
	err := d.db.QueryRowContext(ctx, `
		select id, email, confirmed, metadata from identity_accounts where id = $1
	`, accountID).Scan(&acc.ID, &acc.Email, &acc.Confirmed, &rawMeta)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Account{}, identity.ErrNotFound
	}
	if err != nil {
		return identity.Account{}, err
	}
	if len(rawMeta) > 0 {
		if err := json.Unmarshal(rawMeta, &acc.Metadata); err != nil {
			return identity.Account{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return acc, nil
}
