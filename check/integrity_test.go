package check

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addspin/zerotrace/crypts"
	"github.com/addspin/zerotrace/models"
	"github.com/addspin/zerotrace/store"
)

func seedCert(t *testing.T, mem *store.Memory, signer *crypts.Signer, certID string, tamper bool) {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339)
	cert := &models.Certificate{
		CertId:        certID,
		UserId:        "user-1",
		DeviceId:      "dev-" + certID,
		DeviceName:    "disk",
		DeviceModel:   "model",
		DeviceSerial:  "serial",
		WipeMethod:    "NIST 800-88 Purge",
		WipeStartTime: "2026-08-01T10:00:00Z",
		WipeEndTime:   "2026-08-01T11:00:00Z",
		Status:        models.StatusVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	canonical, err := crypts.Canonical(crypts.CanonicalFacts(cert))
	require.NoError(t, err)
	cert.VerificationHash = crypts.Hash(canonical)
	cert.Signature, err = signer.Sign(canonical)
	require.NoError(t, err)
	if tamper {
		cert.DeviceSerial = "TAMPERED"
	}
	require.NoError(t, mem.InsertCertificate(context.Background(), cert))
}

func TestSweepFlagsTamperedCertificates(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer := crypts.NewSignerFromKey(key)
	verifier := crypts.NewVerifierFromKey(&key.PublicKey)
	mem := store.NewMemory()

	seedCert(t, mem, signer, "CERT-GOOD0001", false)
	seedCert(t, mem, signer, "CERT-BADD0001", true)

	failed := Sweep(context.Background(), mem, verifier)
	assert.Equal(t, 1, failed)

	logs := mem.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "CERT-BADD0001", logs[0].CertId)
	assert.Equal(t, models.ResultIntegrityFailure, logs[0].Result)

	// A clean pass writes nothing new.
	seedOnly := Sweep(context.Background(), store.NewMemory(), verifier)
	assert.Zero(t, seedOnly)
}
