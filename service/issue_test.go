package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addspin/zerotrace/artifacts"
	"github.com/addspin/zerotrace/crypts"
	"github.com/addspin/zerotrace/models"
	"github.com/addspin/zerotrace/store"
)

func testWipeFacts() models.WipeFacts {
	return models.WipeFacts{
		DeviceId:      "dev-777",
		DeviceName:    "WD Blue 1TB",
		DeviceModel:   "WD10EZEX",
		DeviceSerial:  "WCC6Y4Kk1234",
		WipeMethod:    "NIST 800-88 Purge",
		WipeStartTime: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC),
		WipeEndTime:   time.Date(2026, 8, 10, 10, 15, 0, 0, time.UTC),
	}
}

func TestIssueCreatesVerifiableCertificate(t *testing.T) {
	e := newEnv(t)
	pipeline := NewIssuance(e.mem, e.signer, nil, "")

	cert, err := pipeline.Issue(context.Background(), "user-1", testWipeFacts())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cert.CertId, "CERT-"))
	assert.Equal(t, models.StatusVerified, cert.Status)
	assert.Equal(t, "user-1", cert.UserId)
	assert.NotEmpty(t, cert.VerificationHash)
	assert.NotEmpty(t, cert.Signature)

	// The stored record round-trips through the verification service.
	res := e.verify.VerifyByID(context.Background(), cert.CertId, testClient)
	assert.Equal(t, OutcomeVerified, res.Outcome)

	// And the hash is exactly the hash of the canonical facts.
	canonical, err := crypts.Canonical(crypts.CanonicalFacts(cert))
	require.NoError(t, err)
	assert.Equal(t, crypts.Hash(canonical), cert.VerificationHash)
	assert.True(t, e.verifier.Verify(canonical, cert.Signature))
}

func TestIssueValidationFailurePersistsNothing(t *testing.T) {
	e := newEnv(t)
	pipeline := NewIssuance(e.mem, e.signer, nil, "")

	facts := testWipeFacts()
	facts.WipeMethod = ""
	_, err := pipeline.Issue(context.Background(), "user-1", facts)
	require.ErrorIs(t, err, models.ErrValidation)

	certs, err := e.mem.GetUserCertificates(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestIssueRejectsMissingUser(t *testing.T) {
	e := newEnv(t)
	pipeline := NewIssuance(e.mem, e.signer, nil, "")
	_, err := pipeline.Issue(context.Background(), "", testWipeFacts())
	require.ErrorIs(t, err, models.ErrValidation)
}

// failingStore simulates an unavailable persistence layer.
type failingStore struct {
	*store.Memory
}

func (f *failingStore) InsertCertificate(context.Context, *models.Certificate) error {
	return fmt.Errorf("%w: disk full", models.ErrStore)
}

func TestIssueStoreFailureIsAllOrNothing(t *testing.T) {
	e := newEnv(t)
	failing := &failingStore{Memory: e.mem}
	pipeline := NewIssuance(failing, e.signer, nil, "")

	_, err := pipeline.Issue(context.Background(), "user-1", testWipeFacts())
	require.ErrorIs(t, err, models.ErrStore)

	certs, err := e.mem.GetUserCertificates(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestIssueRendersArtifacts(t *testing.T) {
	e := newEnv(t)
	objects := artifacts.NewObjectStore(t.TempDir(), "test-secret")
	pipeline := NewIssuance(e.mem, e.signer, objects, "https://example.com/verify")

	cert, err := pipeline.Issue(context.Background(), "user-1", testWipeFacts())
	require.NoError(t, err)
	require.NotEmpty(t, cert.JsonUrl)
	require.NotEmpty(t, cert.PdfUrl)

	jsonBody, err := objects.Get(cert.JsonUrl)
	require.NoError(t, err)
	doc, err := artifacts.ParseDocument(jsonBody)
	require.NoError(t, err)
	assert.Equal(t, cert.CertId, doc.CertId)
	assert.Equal(t, cert.Signature, doc.Signature)

	pdfBody, err := objects.Get(cert.PdfUrl)
	require.NoError(t, err)
	embedded, err := artifacts.ExtractPDFDocument(pdfBody)
	require.NoError(t, err)
	assert.Equal(t, cert.VerificationHash, embedded.VerificationHash)

	// The artifact keys are recorded on the stored row too.
	stored, err := e.mem.GetCertificateByID(context.Background(), cert.CertId)
	require.NoError(t, err)
	assert.Equal(t, cert.PdfUrl, stored.PdfUrl)
	assert.Equal(t, cert.JsonUrl, stored.JsonUrl)
}

func TestRevokeOwnershipAndFinality(t *testing.T) {
	e := newEnv(t)
	pipeline := NewIssuance(e.mem, e.signer, nil, "")
	cert, err := pipeline.Issue(context.Background(), "user-1", testWipeFacts())
	require.NoError(t, err)

	// A different principal cannot revoke.
	err = pipeline.Revoke(context.Background(), "user-2", cert.CertId)
	require.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, pipeline.Revoke(context.Background(), "user-1", cert.CertId))
	stored, err := e.mem.GetCertificateByID(context.Background(), cert.CertId)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevoked, stored.Status)

	// Revoking an already revoked certificate is a no-op.
	require.NoError(t, pipeline.Revoke(context.Background(), "user-1", cert.CertId))

	err = pipeline.Revoke(context.Background(), "user-1", "CERT-MISSING0")
	require.ErrorIs(t, err, models.ErrNotFound)
}
