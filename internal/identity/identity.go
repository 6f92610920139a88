// Package identity defines the contract with the authentication service
// that owns accounts and credentials. The control plane creates and reads
// accounts through this interface but never stores credentials itself
// beyond the moment of creation.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrConflict means the authentication service already holds an account
	// for the address.
	ErrConflict = errors.New("identity: account already exists")
	// ErrNotFound means no account exists for the given id.
	ErrNotFound = errors.New("identity: account not found")
	// ErrUpstream covers transient or configuration faults of the
	// authentication service.
	ErrUpstream = errors.New("identity: upstream failure")
)

// Metadata keys attached to accounts at creation time.
const (
	MetaTenantID = "tenant_id"
	MetaTestUser = "test_user"
)

// Account is an authentication-service record, independent of any
// tenant-scoped profile data.
type Account struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Confirmed bool              `json:"confirmed"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// InviteParams creates an unconfirmed account and triggers the invitation
// email. This is the step of record for user invitations.
type InviteParams struct {
	Email    string
	TenantID string
	FullName string
	Role     string
}

// CreateParams creates a pre-confirmed account with a known password. Used
// exclusively for disposable test identities.
type CreateParams struct {
	Email    string
	Password string
	TenantID string
	FullName string
	Role     string
	TestUser bool
}

// Service is the authentication-service surface this subsystem consumes.
// Delete exists for compensating removal of an orphaned account when the
// secondary employee write fails.
type Service interface {
	Invite(ctx context.Context, p InviteParams) (Account, error)
	CreateAccount(ctx context.Context, p CreateParams) (Account, error)
	Delete(ctx context.Context, accountID string) error
}
