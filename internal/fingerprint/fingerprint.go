// Package fingerprint derives content hashes from values.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Of returns the hex sha256 of the canonical (RFC 8785) JSON encoding of v.
// Map ordering and number formatting do not influence the result.
func Of(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal: %w", err)
	}
	data, err = jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize: %w", err)
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}
