package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/addspin/zerotrace/models"
)

// Sqlite is the sqlx-backed Store implementation.
type Sqlite struct {
	db *sqlx.DB
}

// NewSqlite wraps an open database handle. InitSchema must have been
// run against it.
func NewSqlite(db *sqlx.DB) *Sqlite {
	return &Sqlite{db: db}
}

// InitSchema creates all tables used by the service.
func InitSchema(db *sqlx.DB) {
	db.MustExec(models.SchemaCertificates)
	db.MustExec(models.SchemaVerificationLogs)
	db.MustExec(models.SchemaApiKeys)
}

func (s *Sqlite) GetCertificateByID(ctx context.Context, certID string) (*models.Certificate, error) {
	cert := models.Certificate{}
	err := s.db.GetContext(ctx, &cert, `SELECT * FROM certificates WHERE cert_id = ?`, certID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get certificate by id: %v", models.ErrStore, err)
	}
	return &cert, nil
}

func (s *Sqlite) GetCertificateByHash(ctx context.Context, hash string) (*models.Certificate, error) {
	cert := models.Certificate{}
	err := s.db.GetContext(ctx, &cert, `SELECT * FROM certificates WHERE verification_hash = ?`, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get certificate by hash: %v", models.ErrStore, err)
	}
	return &cert, nil
}

func (s *Sqlite) GetUserCertificates(ctx context.Context, userID string, limit, offset int) ([]models.Certificate, error) {
	certs := []models.Certificate{}
	err := s.db.SelectContext(ctx, &certs,
		`SELECT * FROM certificates WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list user certificates: %v", models.ErrStore, err)
	}
	return certs, nil
}

func (s *Sqlite) InsertCertificate(ctx context.Context, cert *models.Certificate) error {
	if cert.Id == "" {
		cert.Id = uuid.NewString()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO certificates (
		id, cert_id, user_id, device_id, device_name, device_model, device_serial,
		wipe_method, wipe_start_time, wipe_end_time, verification_hash, signature,
		pdf_url, json_url, status, created_at, updated_at
	) VALUES (
		:id, :cert_id, :user_id, :device_id, :device_name, :device_model, :device_serial,
		:wipe_method, :wipe_start_time, :wipe_end_time, :verification_hash, :signature,
		:pdf_url, :json_url, :status, :created_at, :updated_at
	)`, cert)
	if err != nil {
		return fmt.Errorf("%w: insert certificate: %v", models.ErrStore, err)
	}
	return nil
}

func (s *Sqlite) UpdateCertificateStatus(ctx context.Context, certID, fromStatus, toStatus string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE certificates SET status = ?, updated_at = ? WHERE cert_id = ? AND status = ?`,
		toStatus, time.Now().UTC().Format(time.RFC3339), certID, fromStatus)
	if err != nil {
		return fmt.Errorf("%w: update certificate status: %v", models.ErrStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update certificate status: %v", models.ErrStore, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Sqlite) UpdateArtifactURLs(ctx context.Context, certID, pdfURL, jsonURL string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE certificates SET pdf_url = ?, json_url = ?, updated_at = ? WHERE cert_id = ?`,
		pdfURL, jsonURL, time.Now().UTC().Format(time.RFC3339), certID)
	if err != nil {
		return fmt.Errorf("%w: update artifact urls: %v", models.ErrStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update artifact urls: %v", models.ErrStore, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Sqlite) ListActiveCertificates(ctx context.Context) ([]models.Certificate, error) {
	certs := []models.Certificate{}
	err := s.db.SelectContext(ctx, &certs,
		`SELECT * FROM certificates WHERE status != ?`, models.StatusRevoked)
	if err != nil {
		return nil, fmt.Errorf("%w: list active certificates: %v", models.ErrStore, err)
	}
	return certs, nil
}

func (s *Sqlite) InsertVerificationLog(ctx context.Context, entry *models.VerificationLogEntry) error {
	if entry.Id == "" {
		entry.Id = uuid.NewString()
	}
	if entry.CreatedAt == "" {
		entry.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO verification_logs (
		id, cert_id, result, ip_address, user_agent, created_at
	) VALUES (:id, :cert_id, :result, :ip_address, :user_agent, :created_at)`, entry)
	if err != nil {
		return fmt.Errorf("%w: insert verification log: %v", models.ErrStore, err)
	}
	return nil
}

func (s *Sqlite) GetAPIKey(ctx context.Context, keyID string) (*models.ApiKey, error) {
	key := models.ApiKey{}
	err := s.db.GetContext(ctx, &key, `SELECT * FROM api_keys WHERE id = ?`, keyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get api key: %v", models.ErrStore, err)
	}
	return &key, nil
}

func (s *Sqlite) InsertAPIKey(ctx context.Context, key *models.ApiKey) error {
	if key.CreatedAt == "" {
		key.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO api_keys (
		id, user_id, key_hash, salt, created_at
	) VALUES (:id, :user_id, :key_hash, :salt, :created_at)`, key)
	if err != nil {
		return fmt.Errorf("%w: insert api key: %v", models.ErrStore, err)
	}
	return nil
}

var _ Store = (*Sqlite)(nil)
