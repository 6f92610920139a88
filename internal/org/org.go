package org

import (
	"context"
	"errors"
	"time"
)

// ErrConflict signals a concurrent insert of the same default unit. The
// engine treats it as "already exists" and reports the kind as skipped.
var ErrConflict = errors.New("org unit already exists")

// Unit kinds, in bootstrap order.
const (
	KindLocation   = "location"
	KindDepartment = "department"
	KindTeam       = "team"
)

// Unit is a tenant-scoped org unit (site, department or team). Teams
// reference their department through ParentID.
type Unit struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	ParentID  string    `json:"parent_id,omitempty"`
	Default   bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists org units. CreateUnit must map a duplicate default unit
// per (tenant, kind) to ErrConflict so concurrent bootstraps cannot
// duplicate.
type Store interface {
	CreateUnit(ctx context.Context, u Unit) (Unit, error)
	FirstUnitOfKind(ctx context.Context, tenantID, kind string) (Unit, bool, error)
}
