package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// fingerprintVersion guards the key layout. Bumping it invalidates every
// existing cache entry.
const fingerprintVersion = "v1"

// MatrixPrefix creates the fingerprint prefix covering only the matrix
// composition, independent of the dependency manifest. A lookup against this
// prefix may return a restore hint when the exact fingerprint misses, but a
// hint is never equivalent to an exact hit: the dependency set still has to
// be re-installed.
func MatrixPrefix(identifiers []string) string {
	var builder strings.Builder
	for _, id := range identifiers {
		builder.WriteString(id)
		builder.WriteString(";")
	}

	hash := sha256.Sum256([]byte(builder.String()))
	return fingerprintVersion + ":" + hex.EncodeToString(hash[:]) + ":"
}

// Fingerprint creates the deterministic cache key for a provisioned
// environment set: the ordered matrix identifiers plus the checksum of the
// dependency manifest content. Declaration order matters; reordering the
// matrix produces a different key.
func Fingerprint(identifiers []string, manifestSum string) string {
	return MatrixPrefix(identifiers) + manifestSum
}
