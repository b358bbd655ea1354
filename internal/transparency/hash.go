package transparency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ComputeHash returns the hex SHA-256 of the value's canonical JSON form.
// Map keys are serialized in sorted order, so two maps with the same entries
// hash identically regardless of construction order. Values that cannot be
// marshalled fall back to their string representation.
func ComputeHash(data any) string {
	encoded, err := json.Marshal(data)
	if err != nil {
		encoded = []byte(fmt.Sprint(data))
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

// VerifyIntegrity reports whether data still hashes to expected.
func VerifyIntegrity(data any, expected string) bool {
	return ComputeHash(data) == expected
}
