package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// DigestAlgorithm names the content hash used for FileRecord digests.
type DigestAlgorithm string

const (
	// DigestXXH64 is the default non-cryptographic 64-bit xxHash.
	DigestXXH64 DigestAlgorithm = "xxh64"
	// DigestBLAKE3 is the cryptographic BLAKE3 hash.
	DigestBLAKE3 DigestAlgorithm = "blake3"
	// DigestSHA256 is the cryptographic SHA-256 hash.
	DigestSHA256 DigestAlgorithm = "sha256"
)

// DefaultDigest is the algorithm used when none is configured.
const DefaultDigest = DigestXXH64

// ParseDigestAlgorithm validates a configured algorithm name. An empty name selects DefaultDigest.
func ParseDigestAlgorithm(s string) (DigestAlgorithm, error) {
	switch DigestAlgorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultDigest, nil
	case DigestXXH64:
		return DigestXXH64, nil
	case DigestBLAKE3:
		return DigestBLAKE3, nil
	case DigestSHA256:
		return DigestSHA256, nil
	default:
		return "", zerr.With(ErrInvalidDigest, "digest", s)
	}
}

// FormatDigest prefixes a hex digest with its algorithm, e.g. "xxh64:0123abcd".
// Records written with another algorithm never match, so switching algorithms only causes rebuilds.
func FormatDigest(algo DigestAlgorithm, hex string) string {
	return string(algo) + ":" + hex
}
