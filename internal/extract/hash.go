package extract

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashAlgorithm is the versioned digest identifier stored alongside every
// content hash. Changing the algorithm (or normalization in a way that shifts
// digests) requires a new identifier so old and new hashes never collide.
const HashAlgorithm = "sha256.v1"

// Hash computes the deduplication digest over normalized content.
// Identical normalized text always produces the same digest.
func Hash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
