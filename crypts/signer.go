package crypts

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/addspin/zerotrace/models"
)

// Hash computes the SHA-256 verification hash of canonical bytes as a
// lowercase hex string. Stored on the certificate and used as the
// secondary lookup key: it reveals nothing about the facts themselves.
func Hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Signer produces signatures over canonical certificate bytes. The
// private key is read once at construction and is never serialized,
// logged, or handed out.
type Signer struct {
	priv *rsa.PrivateKey
}

// NewSigner loads the private key from a PEM file.
func NewSigner(privateKeyPath string) (*Signer, error) {
	key, err := LoadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, err
	}
	return &Signer{priv: key}, nil
}

// NewSignerFromKey wraps an already loaded key. Used where key
// material is provisioned out of band and in tests.
func NewSignerFromKey(key *rsa.PrivateKey) *Signer {
	return &Signer{priv: key}
}

// Sign produces an RSA PKCS#1 v1.5 signature over the SHA-256 digest
// of b, base64 encoded for storage and transport.
func (s *Signer) Sign(b []byte) (string, error) {
	if s.priv == nil {
		return "", fmt.Errorf("%w: signer has no private key", models.ErrKey)
	}
	digest := sha256.Sum256(b)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.priv, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrSigning, err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Public returns the public half of the signing key.
func (s *Signer) Public() *rsa.PublicKey {
	return &s.priv.PublicKey
}
