package audit

import (
	"context"
	"time"
)

// Entry statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Actions recorded by the control plane.
const (
	ActionCreateTenant   = "CREATE_TENANT"
	ActionInviteUser     = "INVITE_USER"
	ActionCreateTestUser = "CREATE_TEST_USER"
	ActionBootstrapOrg   = "BOOTSTRAP_ORG"
	ActionAccessDenied   = "ACCESS_DENIED"
)

// Entry is one immutable record of a privileged action. Entries are append
// only: no code path updates or deletes them.
type Entry struct {
	ID           string         `json:"id"`
	ActorID      string         `json:"actor_id"`
	Action       string         `json:"action"`
	TenantID     string         `json:"tenant_id,omitempty"`
	TargetUserID string         `json:"target_user_id,omitempty"`
	Request      map[string]any `json:"request,omitempty"`
	Response     map[string]any `json:"response,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Filter narrows a log query. Zero values mean "no filter".
type Filter struct {
	TenantID string
	Action   string
	Limit    int
	Offset   int
}

// Page is one window of the audit trail, newest first. Total reflects the
// full filtered count regardless of the pagination window.
type Page struct {
	Logs   []Entry `json:"logs"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Store persists audit entries.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, f Filter) ([]Entry, int, error)
}
