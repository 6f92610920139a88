package audit

import "testing"

func TestRedactReplacesNestedKeys(t *testing.T) {
	payload := map[string]any{
		"email": "x@y.test",
		"credentials": map[string]any{
			"email":    "x@y.test",
			"password": "s3cret",
		},
		"attempts": []any{
			map[string]any{"password": "old"},
		},
	}

	out := Redact(payload, "password")

	creds := out["credentials"].(map[string]any)
	if creds["password"] != Marker {
		t.Fatalf("nested password not redacted: %v", creds["password"])
	}
	if creds["email"] != "x@y.test" {
		t.Fatalf("non-sensitive field altered: %v", creds["email"])
	}
	first := out["attempts"].([]any)[0].(map[string]any)
	if first["password"] != Marker {
		t.Fatalf("password in slice not redacted: %v", first["password"])
	}

	// original payload untouched
	if payload["credentials"].(map[string]any)["password"] != "s3cret" {
		t.Fatal("input payload was mutated")
	}
}

func TestRedactNilPayload(t *testing.T) {
	if out := Redact(nil, "password"); out != nil {
		t.Fatalf("expected nil, got %v", out)
	}
}

func TestRedactTopLevelKey(t *testing.T) {
	out := Redact(map[string]any{"password": 42, "role": "admin"}, "password")
	if out["password"] != Marker {
		t.Fatalf("top-level key not redacted: %v", out["password"])
	}
	if out["role"] != "admin" {
		t.Fatalf("unrelated key altered: %v", out["role"])
	}
}
