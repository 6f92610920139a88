package audit

import (
	"context"
	"errors"
	"time"

	"teamwerk.io/internal/ids"
	"teamwerk.io/internal/obs"
)

// Recorder appends privileged-action entries. Recording is best effort: a
// failed append is reported through the shared logger and never aborts the
// primary operation, but every control-plane operation must call Record
// exactly once per invocation before responding.
type Recorder struct {
	store Store
}

// NewRecorder constructs a Recorder.
func NewRecorder(store Store) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	return &Recorder{store: store}, nil
}

// Record fills in the entry id and timestamp, redacts the named sensitive
// response fields and appends the entry. Append failures are swallowed.
func (r *Recorder) Record(ctx context.Context, e Entry, sensitive ...string) {
	e.ID = ids.New()
	e.CreatedAt = time.Now().UTC()
	if e.Status == "" {
		e.Status = StatusSuccess
	}
	if len(sensitive) > 0 {
		e.Response = Redact(e.Response, sensitive...)
	}
	obs.CountAdminAction(e.Action, e.Status)
	if err := r.store.Append(ctx, e); err != nil {
		obs.LogEvent(map[string]any{
			"level":  "error",
			"msg":    "audit append failed",
			"action": e.Action,
			"actor":  e.ActorID,
			"error":  err.Error(),
		})
	}
}
