package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// DefaultAlgo is used for response-body fingerprints recorded with fetch
// events.
const DefaultAlgo = HashAlgoBLAKE3

// HashBytes returns the hash of data as a hex string using the given
// algorithm. Supported algorithms: "sha256" and "blake3".
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoSHA256:
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:]), nil
	case HashAlgoBLAKE3:
		hash := blake3.Sum256(data)
		return hex.EncodeToString(hash[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// Fingerprint returns a self-describing digest of data in the form
// "<algo>:<hex>", using the default algorithm. Empty input yields an
// empty fingerprint so blank bodies stay recognizable in recorded events.
func Fingerprint(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	digest, err := HashBytes(data, DefaultAlgo)
	if err != nil {
		return ""
	}
	return string(DefaultAlgo) + ":" + digest
}
