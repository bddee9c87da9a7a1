package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Bytes returns the SHA-256 digest of data as a 64-character lowercase hex string.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Text returns the SHA-256 digest of the UTF-8 bytes of s.
func Text(s string) string {
	return Bytes([]byte(s))
}

// Reader streams r through SHA-256 and returns the digest as lowercase hex.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing stream: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsValidSHA256 reports whether s is exactly 64 hex characters (either case).
func IsValidSHA256(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
