package audit

import (
	"context"
	"errors"
	"testing"
)

type stubStore struct {
	appendFn func(context.Context, Entry) error
	listFn   func(context.Context, Filter) ([]Entry, int, error)
}

func (s *stubStore) Append(ctx context.Context, e Entry) error {
	if s.appendFn != nil {
		return s.appendFn(ctx, e)
	}
	return nil
}

func (s *stubStore) List(ctx context.Context, f Filter) ([]Entry, int, error) {
	if s.listFn != nil {
		return s.listFn(ctx, f)
	}
	return nil, 0, nil
}

func TestRecordFillsDefaults(t *testing.T) {
	var captured Entry
	store := &stubStore{
		appendFn: func(_ context.Context, e Entry) error {
			captured = e
			return nil
		},
	}
	rec, err := NewRecorder(store)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	rec.Record(context.Background(), Entry{
		ActorID: "op-1",
		Action:  ActionCreateTenant,
	})

	if captured.ID == "" {
		t.Fatal("entry id not assigned")
	}
	if captured.CreatedAt.IsZero() {
		t.Fatal("timestamp not assigned")
	}
	if captured.Status != StatusSuccess {
		t.Fatalf("status not defaulted: %q", captured.Status)
	}
}

func TestRecordRedactsSensitiveResponseFields(t *testing.T) {
	var captured Entry
	store := &stubStore{
		appendFn: func(_ context.Context, e Entry) error {
			captured = e
			return nil
		},
	}
	rec, _ := NewRecorder(store)

	rec.Record(context.Background(), Entry{
		ActorID: "op-1",
		Action:  ActionCreateTestUser,
		Response: map[string]any{
			"credentials": map[string]any{"password": "plaintext"},
		},
	}, "password")

	creds := captured.Response["credentials"].(map[string]any)
	if creds["password"] != Marker {
		t.Fatalf("stored password not redacted: %v", creds["password"])
	}
}

func TestRecordSwallowsAppendFailure(t *testing.T) {
	store := &stubStore{
		appendFn: func(_ context.Context, _ Entry) error {
			return errors.New("disk full")
		},
	}
	rec, _ := NewRecorder(store)

	// must not panic or propagate
	rec.Record(context.Background(), Entry{ActorID: "op-1", Action: ActionBootstrapOrg})
}
