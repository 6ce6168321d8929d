package store

import (
	"context"

	"github.com/addspin/zerotrace/models"
)

// Store is the persistence contract consumed by the certificate core.
// Implementations return models.ErrNotFound for absent rows and wrap
// every other failure in models.ErrStore. Any storage engine that can
// satisfy these operations can sit behind the service; nothing above
// this interface knows which one is in use.
type Store interface {
	GetCertificateByID(ctx context.Context, certID string) (*models.Certificate, error)
	GetCertificateByHash(ctx context.Context, hash string) (*models.Certificate, error)
	GetUserCertificates(ctx context.Context, userID string, limit, offset int) ([]models.Certificate, error)
	InsertCertificate(ctx context.Context, cert *models.Certificate) error

	// UpdateCertificateStatus applies a status transition as a
	// compare-and-set: the update only lands if the current status
	// still equals fromStatus, so two racing transitions cannot
	// corrupt state. models.ErrNotFound when no row matched.
	UpdateCertificateStatus(ctx context.Context, certID, fromStatus, toStatus string) error

	// UpdateArtifactURLs records rendered artifact locations. Fact and
	// integrity fields are untouchable by design; this is the only
	// non-status mutation the schema allows.
	UpdateArtifactURLs(ctx context.Context, certID, pdfURL, jsonURL string) error

	// ListActiveCertificates returns every certificate that is not
	// revoked, for the background integrity sweep.
	ListActiveCertificates(ctx context.Context) ([]models.Certificate, error)

	InsertVerificationLog(ctx context.Context, entry *models.VerificationLogEntry) error

	GetAPIKey(ctx context.Context, keyID string) (*models.ApiKey, error)
	InsertAPIKey(ctx context.Context, key *models.ApiKey) error
}
