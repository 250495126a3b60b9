package installer

import (
	"crypto/sha1" //nolint:gosec // legacy npm integrity algorithm, kept for compatibility
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// verifyIntegrity splits integrity on the first '-' into (algo,
// expectedB64), computes algo(data), and compares it constant-time
// against the expected digest, per spec.md §4.7 step 5.
func verifyIntegrity(data []byte, integrity string) (bool, error) {
	idx := strings.Index(integrity, "-")
	if idx == -1 {
		return false, errors.Errorf("malformed integrity string %q", integrity)
	}
	algo, expectedB64 := integrity[:idx], integrity[idx+1:]

	var digest []byte
	switch algo {
	case "sha512":
		sum := sha512.Sum512(data)
		digest = sum[:]
	case "sha256":
		sum := sha256.Sum256(data)
		digest = sum[:]
	case "sha1":
		sum := sha1.Sum(data)
		digest = sum[:]
	default:
		return false, errors.Errorf("unsupported integrity algorithm %q", algo)
	}

	expected, err := base64.StdEncoding.DecodeString(expectedB64)
	if err != nil {
		return false, errors.Wrapf(err, "invalid base64 digest in integrity string %q", integrity)
	}

	if len(expected) != len(digest) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(digest, expected) == 1, nil
}
