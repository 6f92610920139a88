// Package mem holds in-memory implementations of the control-plane stores
// and the identity directory. Used by tests and by DSN-less development
// runs of cmd/api.
package mem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"teamwerk.io/internal/audit"
	"teamwerk.io/internal/org"
	"teamwerk.io/internal/provision"
	"teamwerk.io/internal/tenant"
)

// Store keeps every table in process memory behind one mutex. The write
// paths enforce the same uniqueness rules the Postgres schema does, so
// handler tests exercise identical conflict behavior.
type Store struct {
	mu          sync.Mutex
	tenants     map[string]tenant.Tenant
	employees   map[string]provision.Employee
	assignments map[string]provision.RoleAssignment // keyed identity|tenant
	units       []org.Unit
	entries     []audit.Entry
	superadmins map[string]struct{}
}

var (
	_ tenant.Store            = (*Store)(nil)
	_ provision.EmployeeStore = (*Store)(nil)
	_ provision.RoleStore     = (*Store)(nil)
	_ org.Store               = (*Store)(nil)
	_ audit.Store             = (*Store)(nil)
)

// New constructs an empty Store.
func New() *Store {
	return &Store{
		tenants:     map[string]tenant.Tenant{},
		employees:   map[string]provision.Employee{},
		assignments: map[string]provision.RoleAssignment{},
		superadmins: map[string]struct{}{},
	}
}

// GrantSuperadmin marks a user id as a platform operator.
func (s *Store) GrantSuperadmin(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.superadmins[userID] = struct{}{}
}

// IsSuperadmin implements auth.PrivilegeStore.
func (s *Store) IsSuperadmin(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.superadmins[userID]
	return ok, nil
}

// --- tenant.Store ---

func (s *Store) CreateTenant(_ context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tenants {
		if existing.Name == t.Name {
			return tenant.Tenant{}, fmt.Errorf("%w: %s", tenant.ErrConflict, t.Name)
		}
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tenants[t.ID] = t
	return t, nil
}

func (s *Store) GetTenant(_ context.Context, id string) (tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	return t, nil
}

func (s *Store) TenantExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tenants {
		if t.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// --- provision.EmployeeStore / provision.RoleStore ---

func (s *Store) CreateEmployee(_ context.Context, e provision.Employee) (provision.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.employees {
		if existing.TenantID == e.TenantID && strings.EqualFold(existing.Email, e.Email) {
			return provision.Employee{}, fmt.Errorf("%w: %s", provision.ErrConflict, e.Email)
		}
	}
	e.CreatedAt = time.Now().UTC()
	s.employees[e.ID] = e
	return e, nil
}

func (s *Store) EmployeeExistsByEmail(_ context.Context, tenantID, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.employees {
		if e.TenantID == tenantID && strings.EqualFold(e.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) AssignRole(_ context.Context, a provision.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.CreatedAt = time.Now().UTC()
	s.assignments[a.IdentityID+"|"+a.TenantID] = a
	return nil
}

// EmployeeCount reports how many employee records a tenant holds. Test hook.
func (s *Store) EmployeeCount(tenantID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.employees {
		if e.TenantID == tenantID {
			n++
		}
	}
	return n
}

// AssignmentCount reports how many role assignments exist. Test hook.
func (s *Store) AssignmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assignments)
}

// --- org.Store ---

func (s *Store) CreateUnit(_ context.Context, u org.Unit) (org.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Default {
		for _, existing := range s.units {
			if existing.TenantID == u.TenantID && existing.Kind == u.Kind && existing.Default {
				return org.Unit{}, org.ErrConflict
			}
		}
	}
	u.CreatedAt = time.Now().UTC()
	s.units = append(s.units, u)
	return u, nil
}

func (s *Store) FirstUnitOfKind(_ context.Context, tenantID, kind string) (org.Unit, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.TenantID == tenantID && u.Kind == kind {
			return u, true, nil
		}
	}
	return org.Unit{}, false, nil
}

// --- audit.Store ---

func (s *Store) Append(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *Store) List(_ context.Context, f audit.Filter) ([]audit.Entry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []audit.Entry
	for _, e := range s.entries {
		if f.TenantID != "" && e.TenantID != f.TenantID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if f.Offset >= total {
		return nil, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	out := make([]audit.Entry, len(matched))
	copy(out, matched)
	return out, total, nil
}
