package ids

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lexicographically sortable identifier used as the primary
// key for tenants, employees, org units and audit entries.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Short returns a compact lowercase prefix of an identifier, used where a
// human-readable handle is enough (synthetic test-user email domains).
func Short(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
