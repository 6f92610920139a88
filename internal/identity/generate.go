package identity

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"teamwerk.io/internal/ids"
)

// SyntheticEmail produces a disposable address for test identities,
// following the pattern test-<random>@tenant-<tenantPrefix>.test. The .test
// TLD is reserved and never routable.
func SyntheticEmail(tenantID string) string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("test-%s@tenant-%s.test", hex.EncodeToString(b[:]), ids.Short(tenantID))
}

// SyntheticPassword produces a throwaway credential for test identities.
// It is returned to the caller exactly once and redacted everywhere else.
func SyntheticPassword() string {
	var b [18]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
