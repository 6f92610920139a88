package org

import (
	"context"
	"errors"
	"testing"

	"teamwerk.io/internal/tenant"
)

type stubTenantStore struct{ known string }

func (s *stubTenantStore) CreateTenant(_ context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	return t, nil
}

func (s *stubTenantStore) GetTenant(_ context.Context, id string) (tenant.Tenant, error) {
	if id != s.known {
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	return tenant.Tenant{ID: id, Name: "Acme GmbH"}, nil
}

func (s *stubTenantStore) TenantExistsByName(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type fakeUnitStore struct {
	units    []Unit
	createFn func(context.Context, Unit) (Unit, error)
}

func (s *fakeUnitStore) CreateUnit(ctx context.Context, u Unit) (Unit, error) {
	if s.createFn != nil {
		return s.createFn(ctx, u)
	}
	if u.Default {
		for _, existing := range s.units {
			if existing.TenantID == u.TenantID && existing.Kind == u.Kind && existing.Default {
				return Unit{}, ErrConflict
			}
		}
	}
	s.units = append(s.units, u)
	return u, nil
}

func (s *fakeUnitStore) FirstUnitOfKind(_ context.Context, tenantID, kind string) (Unit, bool, error) {
	for _, u := range s.units {
		if u.TenantID == tenantID && u.Kind == kind {
			return u, true, nil
		}
	}
	return Unit{}, false, nil
}

func TestBootstrapCreatesSkeleton(t *testing.T) {
	units := &fakeUnitStore{}
	eng, err := NewEngine(&stubTenantStore{known: "t-1"}, units)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	res, err := eng.Bootstrap(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if res.TenantID != "t-1" {
		t.Fatalf("unexpected tenant id %q", res.TenantID)
	}
	for _, key := range []string{"site_id", "department_id", "team_id"} {
		if res.Created[key] == "" {
			t.Fatalf("missing %s in created map: %v", key, res.Created)
		}
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("nothing should be skipped on first run: %v", res.Skipped)
	}
	if len(units.units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units.units))
	}

	var team, department Unit
	for _, u := range units.units {
		switch u.Kind {
		case KindTeam:
			team = u
		case KindDepartment:
			department = u
		}
	}
	if team.ParentID != department.ID {
		t.Fatalf("team parent %q does not reference department %q", team.ParentID, department.ID)
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	units := &fakeUnitStore{}
	eng, _ := NewEngine(&stubTenantStore{known: "t-1"}, units)

	if _, err := eng.Bootstrap(context.Background(), "t-1"); err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	res, err := eng.Bootstrap(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if len(res.Created) != 0 {
		t.Fatalf("second run must create nothing: %v", res.Created)
	}
	want := []string{KindLocation, KindDepartment, KindTeam}
	if len(res.Skipped) != len(want) {
		t.Fatalf("unexpected skipped list: %v", res.Skipped)
	}
	for i, kind := range want {
		if res.Skipped[i] != kind {
			t.Fatalf("skipped[%d] = %q, want %q", i, res.Skipped[i], kind)
		}
	}
	if len(units.units) != 3 {
		t.Fatalf("duplicate units created: %d", len(units.units))
	}
}

func TestBootstrapUnknownTenant(t *testing.T) {
	eng, _ := NewEngine(&stubTenantStore{known: "t-1"}, &fakeUnitStore{})
	if _, err := eng.Bootstrap(context.Background(), "t-404"); !errors.Is(err, tenant.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBootstrapResolvesInsertRace(t *testing.T) {
	// A concurrent writer sneaks a default location in between the existence
	// check and the insert; the conflict is re-read as "already exists".
	raced := false
	units := &fakeUnitStore{}
	units.createFn = func(_ context.Context, u Unit) (Unit, error) {
		if u.Kind == KindLocation && !raced {
			raced = true
			rival := Unit{ID: "rival", TenantID: u.TenantID, Kind: KindLocation, Name: "Zentrale", Default: true}
			units.units = append(units.units, rival)
			return Unit{}, ErrConflict
		}
		units.units = append(units.units, u)
		return u, nil
	}
	eng, _ := NewEngine(&stubTenantStore{known: "t-1"}, units)

	res, err := eng.Bootstrap(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != KindLocation {
		t.Fatalf("raced kind not reported as skipped: %v", res.Skipped)
	}
	if res.Created["site_id"] != "" {
		t.Fatalf("raced kind must not appear in created: %v", res.Created)
	}
	if res.Created["department_id"] == "" || res.Created["team_id"] == "" {
		t.Fatalf("remaining kinds not created: %v", res.Created)
	}
}
