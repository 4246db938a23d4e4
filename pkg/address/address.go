// Package address normalizes Ethereum-style account addresses into their
// EIP-55 checksummed form, which is the identity key used across the ledger.
package address

import (
	"fmt"
	"strings"

	"anoa.com/proofofgrind/pkg/apperror"
	"golang.org/x/crypto/sha3"
)

const hexLen = 40

// Normalize accepts an address in any letter case and returns its checksummed
// form. Mixed-case input must already carry a valid checksum.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if len(s) != hexLen+2 || (s[:2] != "0x" && s[:2] != "0X") {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidAddress, raw)
	}

	body := s[2:]
	hasUpper, hasLower := false, false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
			hasLower = true
		case c >= 'A' && c <= 'F':
			hasUpper = true
		default:
			return "", fmt.Errorf("%w: %q", apperror.ErrInvalidAddress, raw)
		}
	}

	checksummed := checksum(strings.ToLower(body))
	if hasUpper && hasLower && checksummed[2:] != body {
		return "", fmt.Errorf("%w: bad checksum %q", apperror.ErrInvalidAddress, raw)
	}
	return checksummed, nil
}

// MustNormalize is Normalize for addresses known to be well formed.
func MustNormalize(raw string) string {
	addr, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

// IsValid reports whether raw would normalize without error.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

func checksum(lowerHex string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lowerHex))
	sum := h.Sum(nil)

	out := []byte("0x" + lowerHex)
	for i := 0; i < len(lowerHex); i++ {
		c := lowerHex[i]
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i+2] = c - ('a' - 'A')
		}
	}
	return string(out)
}
