package pg

import (
	"context"

	"teamwerk.io/internal/auth"
)

var _ auth.PrivilegeStore = (*Store)(nil)

// IsSuperadmin runs the privilege-check query the guard relies on.
func (s *Store) IsSuperadmin(ctx context.Context, userID string) (bool, error) {
	var elevated bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from superadmins where user_id = $1)
	`, userID).Scan(&elevated)
	if err != nil {
		return false, err
	}
	return elevated, nil
}

// GrantSuperadmin marks a user id as a platform operator. Used by the
// operator CLI, never by the HTTP surface.
func (s *Store) GrantSuperadmin(ctx context.Context, userID, grantedBy string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into superadmins (user_id, granted_by)
		values ($1, $2)
		on conflict (user_id) do nothing
	`, userID, nullIfEmpty(grantedBy))
	return err
}

// RevokeSuperadmin removes the elevation.
func (s *Store) RevokeSuperadmin(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `delete from superadmins where user_id = $1`, userID)
	return err
}
