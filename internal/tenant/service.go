package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teamwerk.io/internal/ids"
)

const (
	defaultCountry  = "DE"
	defaultTimezone = "Europe/Berlin"
)

// CreateParams carries the caller-supplied tenant attributes.
type CreateParams struct {
	Name     string
	Country  string
	Timezone string
	Industry string
}

// Service implements the tenant lifecycle operations.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("tenant store is required")
	}
	return &Service{store: store}, nil
}

// CreateTenant validates and persists a new tenant with status active.
// Name matching is case-sensitive exact match; the store's unique constraint
// is the authoritative guard, the ExistsByName call only a best-effort
// pre-check (concurrent duplicates still surface as ErrConflict).
func (s *Service) CreateTenant(ctx context.Context, p CreateParams) (Tenant, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Tenant{}, fmt.Errorf("%w: tenant name is required", ErrInvalidInput)
	}

	exists, err := s.store.TenantExistsByName(ctx, name)
	if err != nil {
		return Tenant{}, err
	}
	if exists {
		return Tenant{}, fmt.Errorf("%w: %s", ErrConflict, name)
	}

	country := strings.ToUpper(strings.TrimSpace(p.Country))
	if country == "" {
		country = defaultCountry
	}
	timezone := strings.TrimSpace(p.Timezone)
	if timezone == "" {
		timezone = defaultTimezone
	}

	t := Tenant{
		ID:          ids.New(),
		Name:        name,
		CountryCode: country,
		Status:      StatusActive,
		Industry:    strings.TrimSpace(p.Industry),
		Metadata:    map[string]string{"timezone": timezone},
	}
	return s.store.CreateTenant(ctx, t)
}

// Get loads a tenant by id.
func (s *Service) Get(ctx context.Context, id string) (Tenant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Tenant{}, fmt.Errorf("%w: tenant_id is required", ErrInvalidInput)
	}
	return s.store.GetTenant(ctx, id)
}
