package mem

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"teamwerk.io/internal/identity"
	"teamwerk.io/internal/ids"
)

// Directory is the in-memory identity directory. Accounts hold argon2id
// hashes, never the raw password.
type Directory struct {
	mu       sync.Mutex
	accounts map[string]account
}

type account struct {
	identity.Account
	passwordHash string
}

var _ identity.Service = (*Directory)(nil)

// NewDirectory constructs an empty Directory.
func NewDirectory() *Directory {
	return &Directory{accounts: map[string]account{}}
}

func (d *Directory) Invite(_ context.Context, p identity.InviteParams) (identity.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.emailTaken(p.Email) {
		return identity.Account{}, fmt.Errorf("%w: %s", identity.ErrConflict, p.Email)
	}
	acc := identity.Account{
		ID:    ids.New(),
		Email: strings.ToLower(p.Email),
		Metadata: map[string]string{
			identity.MetaTenantID: p.TenantID,
			"full_name":           p.FullName,
			"role":                p.Role,
		},
	}
	d.accounts[acc.ID] = account{Account: acc}
	return acc, nil
}

func (d *Directory) CreateAccount(_ context.Context, p identity.CreateParams) (identity.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.emailTaken(p.Email) {
		return identity.Account{}, fmt.Errorf("%w: %s", identity.ErrConflict, p.Email)
	}
	hash, err := identity.HashPassword(p.Password)
	if err != nil {
		return identity.Account{}, err
	}
	meta := map[string]string{
		identity.MetaTenantID: p.TenantID,
		"full_name":           p.FullName,
		"role":                p.Role,
	}
	if p.TestUser {
		meta[identity.MetaTestUser] = "true"
	}
	acc := identity.Account{
		ID:        ids.New(),
		Email:     strings.ToLower(p.Email),
		Confirmed: true,
		Metadata:  meta,
	}
	d.accounts[acc.ID] = account{Account: acc, passwordHash: hash}
	return acc, nil
}

func (d *Directory) Delete(_ context.Context, accountID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[accountID]; !ok {
		return identity.ErrNotFound
	}
	delete(d.accounts, accountID)
	return nil
}

// Count reports how many accounts exist. Test hook.
func (d *Directory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.accounts)
}

func (d *Directory) emailTaken(email string) bool {
	email = strings.ToLower(email)
	for _, acc := range d.accounts {
		if acc.Email == email {
			return true
		}
	}
	return false
}
