package audit

// Marker replaces sensitive values in stored payloads. The unredacted value
// must never reach the audit store.
const Marker = "[REDACTED]"

// Redact returns a deep copy of payload with every field named in keys
// replaced by Marker, at any nesting depth. The copy guarantees the object
// handed to the audit writer is never the one returned to the caller.
func Redact(payload map[string]any, keys ...string) map[string]any {
	if payload == nil {
		return nil
	}
	sensitive := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		sensitive[k] = struct{}{}
	}
	return redactMap(payload, sensitive)
}

func redactMap(in map[string]any, sensitive map[string]struct{}) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if _, ok := sensitive[k]; ok {
			out[k] = Marker
			continue
		}
		out[k] = redactValue(v, sensitive)
	}
	return out
}

func redactValue(v any, sensitive map[string]struct{}) any {
	switch t := v.(type) {
	case map[string]any:
		return redactMap(t, sensitive)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = redactValue(item, sensitive)
		}
		return out
	default:
		return v
	}
}
