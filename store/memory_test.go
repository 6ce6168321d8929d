package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addspin/zerotrace/models"
)

func seedCert(t *testing.T, m *Memory, certID, userID, createdAt string) {
	t.Helper()
	err := m.InsertCertificate(context.Background(), &models.Certificate{
		CertId:           certID,
		UserId:           userID,
		DeviceId:         "dev-" + certID,
		DeviceName:       "disk",
		DeviceModel:      "model",
		DeviceSerial:     "serial",
		WipeMethod:       "NIST 800-88 Purge",
		WipeStartTime:    createdAt,
		WipeEndTime:      createdAt,
		VerificationHash: "hash-" + certID,
		Signature:        "sig-" + certID,
		Status:           models.StatusVerified,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	})
	require.NoError(t, err)
}

func TestMemoryLookups(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedCert(t, m, "CERT-AAAA0001", "user-1", "2026-08-01T10:00:00Z")

	byID, err := m.GetCertificateByID(ctx, "CERT-AAAA0001")
	require.NoError(t, err)
	byHash, err := m.GetCertificateByHash(ctx, "hash-CERT-AAAA0001")
	require.NoError(t, err)
	assert.Equal(t, byID.CertId, byHash.CertId)

	_, err = m.GetCertificateByID(ctx, "CERT-MISSING0")
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = m.GetCertificateByHash(ctx, "no-such-hash")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryUserCertificatesOrderingAndPaging(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedCert(t, m, fmt.Sprintf("CERT-USER000%d", i), "user-1",
			base.Add(time.Duration(i)*time.Hour).Format(time.RFC3339))
	}
	seedCert(t, m, "CERT-OTHER001", "user-2", base.Format(time.RFC3339))

	certs, err := m.GetUserCertificates(ctx, "user-1", 3, 0)
	require.NoError(t, err)
	require.Len(t, certs, 3)
	// Newest first.
	assert.Equal(t, "CERT-USER0004", certs[0].CertId)
	assert.Equal(t, "CERT-USER0003", certs[1].CertId)

	page2, err := m.GetUserCertificates(ctx, "user-1", 3, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "CERT-USER0001", page2[0].CertId)

	empty, err := m.GetUserCertificates(ctx, "user-1", 3, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStatusCompareAndSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedCert(t, m, "CERT-CAS00001", "user-1", "2026-08-01T10:00:00Z")

	require.NoError(t, m.UpdateCertificateStatus(ctx, "CERT-CAS00001", models.StatusVerified, models.StatusRevoked))

	// Second transition from the stale prior status must not land.
	err := m.UpdateCertificateStatus(ctx, "CERT-CAS00001", models.StatusVerified, models.StatusRevoked)
	require.ErrorIs(t, err, models.ErrNotFound)

	cert, err := m.GetCertificateByID(ctx, "CERT-CAS00001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevoked, cert.Status)
}

func TestMemoryListActiveExcludesRevoked(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedCert(t, m, "CERT-ACT00001", "user-1", "2026-08-01T10:00:00Z")
	seedCert(t, m, "CERT-ACT00002", "user-1", "2026-08-01T10:00:00Z")
	require.NoError(t, m.UpdateCertificateStatus(ctx, "CERT-ACT00002", models.StatusVerified, models.StatusRevoked))

	active, err := m.ListActiveCertificates(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "CERT-ACT00001", active[0].CertId)
}

func TestMemoryVerificationLogAppendOnly(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, m.InsertVerificationLog(ctx, &models.VerificationLogEntry{
			CertId: "CERT-LOG00001",
			Result: models.ResultNotFound,
		}))
	}
	logs := m.Logs()
	require.Len(t, logs, 3)
	for _, entry := range logs {
		assert.NotEmpty(t, entry.Id)
		assert.NotEmpty(t, entry.CreatedAt)
	}
}

func TestMemoryAPIKeys(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.InsertAPIKey(ctx, &models.ApiKey{
		Id: "key-1", UserId: "user-1", KeyHash: "h", Salt: "s",
	}))

	key, err := m.GetAPIKey(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", key.UserId)

	_, err = m.GetAPIKey(ctx, "nope")
	require.ErrorIs(t, err, models.ErrNotFound)
}
