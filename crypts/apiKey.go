package crypts

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	apiKeySecretSize = 32
	apiKeySaltSize   = 16
	KeySize          = 32     // derived key size in bytes
	Iterations       = 100000 // PBKDF2 iteration count
)

// NewAPIKeySecret generates the random secret half of an API key,
// base64 encoded for transport.
func NewAPIKeySecret() (string, error) {
	secret := make([]byte, apiKeySecretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(secret), nil
}

// NewSalt generates a per-key PBKDF2 salt, hex encoded.
func NewSalt() (string, error) {
	salt := make([]byte, apiKeySaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return hex.EncodeToString(salt), nil
}

// HashAPIKey derives the at-rest hash of an API key secret with
// PBKDF2-SHA256.
func HashAPIKey(secret, saltHex string) string {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return ""
	}
	return hex.EncodeToString(pbkdf2.Key([]byte(secret), salt, Iterations, KeySize, sha256.New))
}

// CheckAPIKey compares a presented secret against the stored hash in
// constant time.
func CheckAPIKey(secret, saltHex, storedHashHex string) bool {
	derived := HashAPIKey(secret, saltHex)
	if derived == "" || storedHashHex == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(derived), []byte(storedHashHex)) == 1
}
