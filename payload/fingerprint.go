package payload

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// FingerprintLen is the number of hex characters kept from the digest.
	FingerprintLen = 16

	clientSignaturePrefix = "FP-"
)

// Fingerprint returns the first FingerprintLen lowercase hex characters of
// the SHA-256 digest of the original file bytes.
func Fingerprint(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:FingerprintLen/2])
}

// ClientSignature is the signature form issued by the browser client:
// "FP-" followed by the upper-case fingerprint.
func ClientSignature(b []byte) string {
	return clientSignaturePrefix + strings.ToUpper(Fingerprint(b))
}
