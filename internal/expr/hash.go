package expr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainExpression is the hash domain for expression fingerprints.
// The version suffix allows a future change of encoding.
const DomainExpression = "taylorlab/expr/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a content-addressed identity for a tree.
// Structurally equal trees always share a fingerprint; trees that merely
// evaluate to the same function generally do not.
func Fingerprint(e Expr) (string, error) {
	canonical, err := MarshalCanonical(e)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainExpression, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the tree is known to be valid.
func MustFingerprint(e Expr) string {
	fp, err := Fingerprint(e)
	if err != nil {
		panic(err)
	}
	return fp
}
