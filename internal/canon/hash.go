package canon

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// HashBytes returns the hex-encoded BLAKE3 digest of b, the content-hash
// primitive used throughout specforge for artifact and evidence identity.
func HashBytes(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
