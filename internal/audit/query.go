package audit

import (
	"context"
	"errors"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Query provides paginated read access to the audit trail, tenant-scoped or
// global. Callers are expected to have passed the superadmin guard already.
type Query struct {
	store Store
}

// NewQuery constructs a Query service.
func NewQuery(store Store) (*Query, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	return &Query{store: store}, nil
}

// Logs returns one page of entries ordered newest first.
func (q *Query) Logs(ctx context.Context, f Filter) (Page, error) {
	f.TenantID = strings.TrimSpace(f.TenantID)
	f.Action = strings.TrimSpace(f.Action)
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	logs, total, err := q.store.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	if logs == nil {
		logs = []Entry{}
	}
	return Page{Logs: logs, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}
