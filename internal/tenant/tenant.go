package tenant

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("tenant not found")
	ErrConflict     = errors.New("tenant already exists")
)

// Lifecycle statuses. Tenants are never physically deleted by this subsystem.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Tenant is one customer organization. Every org unit, employee and role
// assignment is scoped to exactly one tenant.
type Tenant struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	CountryCode string            `json:"country_code"`
	Status      string            `json:"status"`
	Industry    string            `json:"industry,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Store persists tenants. CreateTenant must map a duplicate-name constraint
// violation to ErrConflict so a concurrent duplicate insert surfaces the
// same way as the pre-check.
type Store interface {
	CreateTenant(ctx context.Context, t Tenant) (Tenant, error)
	GetTenant(ctx context.Context, id string) (Tenant, error)
	TenantExistsByName(ctx context.Context, name string) (bool, error)
}
