package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/addspin/zerotrace/models"
)

// Memory is an in-process Store for tests and embedded single-binary
// deployments. The mutex is the arbitration point the contract expects
// of the external store; compare-and-set semantics hold under it.
type Memory struct {
	mu    sync.RWMutex
	certs map[string]models.Certificate // keyed by cert_id
	logs  []models.VerificationLogEntry
	keys  map[string]models.ApiKey
}

func NewMemory() *Memory {
	return &Memory{
		certs: make(map[string]models.Certificate),
		keys:  make(map[string]models.ApiKey),
	}
}

func (m *Memory) GetCertificateByID(_ context.Context, certID string) (*models.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cert, ok := m.certs[certID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &cert, nil
}

func (m *Memory) GetCertificateByHash(_ context.Context, hash string) (*models.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cert := range m.certs {
		if cert.VerificationHash == hash {
			c := cert
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) GetUserCertificates(_ context.Context, userID string, limit, offset int) ([]models.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owned := []models.Certificate{}
	for _, cert := range m.certs {
		if cert.UserId == userID {
			owned = append(owned, cert)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt > owned[j].CreatedAt })
	if offset >= len(owned) {
		return []models.Certificate{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (m *Memory) InsertCertificate(_ context.Context, cert *models.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cert.Id == "" {
		cert.Id = uuid.NewString()
	}
	m.certs[cert.CertId] = *cert
	return nil
}

func (m *Memory) UpdateCertificateStatus(_ context.Context, certID, fromStatus, toStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cert, ok := m.certs[certID]
	if !ok || cert.Status != fromStatus {
		return models.ErrNotFound
	}
	cert.Status = toStatus
	cert.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	m.certs[certID] = cert
	return nil
}

func (m *Memory) UpdateArtifactURLs(_ context.Context, certID, pdfURL, jsonURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cert, ok := m.certs[certID]
	if !ok {
		return models.ErrNotFound
	}
	cert.PdfUrl = pdfURL
	cert.JsonUrl = jsonURL
	cert.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	m.certs[certID] = cert
	return nil
}

func (m *Memory) ListActiveCertificates(_ context.Context) ([]models.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	active := []models.Certificate{}
	for _, cert := range m.certs {
		if cert.Status != models.StatusRevoked {
			active = append(active, cert)
		}
	}
	return active, nil
}

func (m *Memory) InsertVerificationLog(_ context.Context, entry *models.VerificationLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.Id == "" {
		entry.Id = uuid.NewString()
	}
	if entry.CreatedAt == "" {
		entry.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.logs = append(m.logs, *entry)
	return nil
}

// Logs returns a copy of the audit trail, newest last. Test helper.
func (m *Memory) Logs() []models.VerificationLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.VerificationLogEntry, len(m.logs))
	copy(out, m.logs)
	return out
}

func (m *Memory) GetAPIKey(_ context.Context, keyID string) (*models.ApiKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.keys[keyID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &key, nil
}

func (m *Memory) InsertAPIKey(_ context.Context, key *models.ApiKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key.CreatedAt == "" {
		key.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.keys[key.Id] = *key
	return nil
}

var _ Store = (*Memory)(nil)
