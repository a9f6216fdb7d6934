package queryir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSpecification separates specification fingerprints from any other
// hash computed over the same bytes. The version suffix allows migrating the
// canonical form later.
const DomainSpecification = "sieve/specification/v1"

// Fingerprint returns a stable content hash of the specification, suitable
// as a cache key. Format: hex(SHA256(domain + 0x00 + canonical JSON)).
func Fingerprint(spec *Specification) (string, error) {
	canonical, err := MarshalCanonical(spec)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainSpecification))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
