package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Legacy credential records store hex(sha256(password)) with no per-user
// salt. That contract is reproduced here for stored-credential compatibility
// and is a known weakness: equal passwords produce equal digests and the
// digest is cheap to brute-force offline. New credentials are always written
// with bcrypt; VerifyPassword picks the scheme from the stored value, so
// legacy records keep working until rewritten.
const bcryptPrefix = "$2"

// HashPassword hashes a new password with bcrypt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// LegacyDigest computes the unsalted digest used by legacy records. Exposed
// for migration tooling and tests only; never use it for new credentials.
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword checks a presented password against a stored digest,
// accepting either scheme. Equality of the legacy digest implies acceptance.
func VerifyPassword(stored, password string) error {
	if stored == "" {
		return errors.New("password digest is empty")
	}
	if password == "" {
		return ErrUnauthorized
	}
	if strings.HasPrefix(stored, bcryptPrefix) {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
			return ErrUnauthorized
		}
		return nil
	}
	digest := LegacyDigest(password)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(digest)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
