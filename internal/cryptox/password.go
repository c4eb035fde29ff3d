// Package cryptox holds the password codec used for account credentials.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/vivamos/vivamos/internal/common"
	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters. Hash and verify must use the same values; changing
// them invalidates every stored password.
const (
	ScryptN = 16384
	ScryptR = 8
	ScryptP = 1

	// SaltSize is the number of random bytes in a fresh salt.
	SaltSize = 16
	// KeySize is the derived key length written by HashPassword.
	KeySize = 64

	// maxKeySize bounds the derivation length accepted from a stored record.
	maxKeySize = 1024

	separator = ":"
)

// HashPassword derives a storable record from plain:
//
//	<hex salt>:<hex scrypt key>
//
// The scrypt salt input is the hex text of the salt, not its decoded bytes,
// which keeps records compatible with the ones already in the accounts table.
// Empty passwords are rejected by callers, not here.
func HashPassword(plain string) (string, error) {
	salt := hex.EncodeToString(common.GenerateRandByteArray(SaltSize))

	key, err := scrypt.Key([]byte(plain), []byte(salt), ScryptN, ScryptR, ScryptP, KeySize)
	if err != nil {
		return "", err
	}

	return salt + separator + hex.EncodeToString(key), nil
}

// VerifyPassword reports whether plain matches the stored record.
//
// It never panics and never returns an error: a record that is empty,
// malformed, not hex, or from another hash family (bcrypt "$2a$", PHC "$...$")
// simply does not match. The key is re-derived with the stored key length and
// compared in constant time.
func VerifyPassword(plain, stored string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	salt, want, valid := parseRecord(stored)
	if !valid {
		return false
	}

	got, err := scrypt.Key([]byte(plain), []byte(salt), ScryptN, ScryptR, ScryptP, len(want))
	if err != nil {
		return false
	}

	if len(got) != len(want) {
		return false
	}

	return subtle.ConstantTimeCompare(got, want) == 1
}

// parseRecord splits a stored record into the salt text and the decoded key.
func parseRecord(stored string) (string, []byte, bool) {
	if stored == "" || strings.HasPrefix(stored, "$") {
		return "", nil, false
	}

	parts := strings.Split(stored, separator)
	if len(parts) != 2 {
		return "", nil, false
	}

	salt, keyHex := parts[0], parts[1]
	if salt == "" || keyHex == "" || len(keyHex)%2 != 0 {
		return "", nil, false
	}

	if _, err := hex.DecodeString(salt); err != nil {
		return "", nil, false
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) == 0 || len(key) > maxKeySize {
		return "", nil, false
	}

	return salt, key, true
}
