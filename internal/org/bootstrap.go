package org

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teamwerk.io/internal/ids"
	"teamwerk.io/internal/tenant"
)

// Default unit names created by bootstrap.
const (
	defaultLocationName   = "Hauptstandort"
	defaultDepartmentName = "Allgemein"
	defaultDepartmentCode = "ALLG"
	defaultTeamName       = "Team 1"
)

// Result reports what bootstrap created and what it skipped.
type Result struct {
	TenantID string            `json:"tenant_id"`
	Created  map[string]string `json:"created"`
	Skipped  []string          `json:"skipped"`
}

// Engine creates the minimal organizational skeleton a tenant needs: one
// location, one department, one team. Each kind is an independent
// insert-if-absent, which makes the whole operation idempotent.
type Engine struct {
	tenants tenant.Store
	units   Store
}

// NewEngine constructs an Engine.
func NewEngine(tenants tenant.Store, units Store) (*Engine, error) {
	if tenants == nil || units == nil {
		return nil, errors.New("tenant store and unit store are required")
	}
	return &Engine{tenants: tenants, units: units}, nil
}

// Bootstrap provisions missing default units for the tenant. Kinds that
// already have at least one unit are reported in Skipped instead of
// erroring, so repeated invocations produce no duplicates.
func (e *Engine) Bootstrap(ctx context.Context, tenantID string) (Result, error) {
	t, err := e.tenants.GetTenant(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return Result{}, err
	}

	res := Result{
		TenantID: t.ID,
		Created:  map[string]string{},
		Skipped:  []string{},
	}

	location, created, err := e.ensureUnit(ctx, Unit{
		TenantID: t.ID,
		Kind:     KindLocation,
		Name:     defaultLocationName,
		Default:  true,
	})
	if err != nil {
		return Result{}, err
	}
	if created {
		res.Created["site_id"] = location.ID
	} else {
		res.Skipped = append(res.Skipped, KindLocation)
	}

	department, created, err := e.ensureUnit(ctx, Unit{
		TenantID: t.ID,
		Kind:     KindDepartment,
		Name:     defaultDepartmentName,
		Code:     defaultDepartmentCode,
		Default:  true,
	})
	if err != nil {
		return Result{}, err
	}
	if created {
		res.Created["department_id"] = department.ID
	} else {
		res.Skipped = append(res.Skipped, KindDepartment)
	}

	// The team references the department created above, or the pre-existing
	// one when the department kind was skipped.
	team, created, err := e.ensureUnit(ctx, Unit{
		TenantID: t.ID,
		Kind:     KindTeam,
		Name:     defaultTeamName,
		ParentID: department.ID,
		Default:  true,
	})
	if err != nil {
		return Result{}, err
	}
	if created {
		res.Created["team_id"] = team.ID
	} else {
		res.Skipped = append(res.Skipped, KindTeam)
	}

	return res, nil
}

// ensureUnit is one insert-if-absent step. The existence check is a best
// effort pre-check; the storage constraint on default units per (tenant,
// kind) closes the race, and a conflict is re-read as "already exists".
func (e *Engine) ensureUnit(ctx context.Context, u Unit) (Unit, bool, error) {
	existing, found, err := e.units.FirstUnitOfKind(ctx, u.TenantID, u.Kind)
	if err != nil {
		return Unit{}, false, err
	}
	if found {
		return existing, false, nil
	}

	u.ID = ids.New()
	created, err := e.units.CreateUnit(ctx, u)
	if err == nil {
		return created, true, nil
	}
	if errors.Is(err, ErrConflict) {
		existing, found, readErr := e.units.FirstUnitOfKind(ctx, u.TenantID, u.Kind)
		if readErr != nil {
			return Unit{}, false, readErr
		}
		if found {
			return existing, false, nil
		}
	}
	return Unit{}, false, fmt.Errorf("create %s: %w", u.Kind, err)
}
