package crypts

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
)

// Verifier checks signatures against the service public key. A bad
// certificate is a normal false result, never a panic or error: any
// outside party can submit arbitrary bytes. Only construction fails
// hard, on missing or corrupt key material.
type Verifier struct {
	pub *rsa.PublicKey
}

// NewVerifier loads the public key from a PEM file.
func NewVerifier(publicKeyPath string) (*Verifier, error) {
	key, err := LoadPublicKey(publicKeyPath)
	if err != nil {
		return nil, err
	}
	return &Verifier{pub: key}, nil
}

// NewVerifierFromKey wraps an already loaded key.
func NewVerifierFromKey(key *rsa.PublicKey) *Verifier {
	return &Verifier{pub: key}
}

// Verify reports whether sigB64 is a valid signature over b. Malformed
// base64, wrong length, and cryptographic mismatch all return false.
func (v *Verifier) Verify(b []byte, sigB64 string) bool {
	if v.pub == nil || sigB64 == "" {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(b)
	return rsa.VerifyPKCS1v15(v.pub, crypto.SHA256, digest[:], sig) == nil
}
