package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Certificate statuses
const (
	StatusVerified = "verified"
	StatusPending  = "pending"
	StatusRevoked  = "revoked"
)

// Certificate is the attestation record for a completed device wipe.
// The fact fields are immutable after issuance; only Status (and
// UpdatedAt with it) may change, and only through an explicit
// conditional update. PdfUrl and JsonUrl point at rendered copies and
// are not authoritative, the signature is.
type Certificate struct {
	Id               string `db:"id" json:"-"`
	CertId           string `db:"cert_id" json:"cert_id"`
	UserId           string `db:"user_id" json:"-"`
	DeviceId         string `db:"device_id" json:"device_id"`
	DeviceName       string `db:"device_name" json:"device_name"`
	DeviceModel      string `db:"device_model" json:"device_model"`
	DeviceSerial     string `db:"device_serial" json:"device_serial"`
	WipeMethod       string `db:"wipe_method" json:"wipe_method"`
	WipeStartTime    string `db:"wipe_start_time" json:"wipe_start_time"`
	WipeEndTime      string `db:"wipe_end_time" json:"wipe_end_time"`
	VerificationHash string `db:"verification_hash" json:"verification_hash"`
	Signature        string `db:"signature" json:"signature"`
	PdfUrl           string `db:"pdf_url" json:"pdf_url,omitempty"`
	JsonUrl          string `db:"json_url" json:"json_url,omitempty"`
	Status           string `db:"status" json:"status"`
	CreatedAt        string `db:"created_at" json:"created_at"`
	UpdatedAt        string `db:"updated_at" json:"-"`
}

var SchemaCertificates = `
CREATE TABLE IF NOT EXISTS certificates (
	id TEXT PRIMARY KEY,
	cert_id TEXT UNIQUE NOT NULL,
	user_id TEXT NOT NULL,
	device_id TEXT NOT NULL,
	device_name TEXT NOT NULL,
	device_model TEXT NOT NULL,
	device_serial TEXT NOT NULL,
	wipe_method TEXT NOT NULL,
	wipe_start_time TEXT NOT NULL,
	wipe_end_time TEXT NOT NULL,
	verification_hash TEXT NOT NULL,
	signature TEXT NOT NULL,
	pdf_url TEXT DEFAULT '',
	json_url TEXT DEFAULT '',
	status TEXT NOT NULL DEFAULT 'verified',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_certificates_user ON certificates (user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_certificates_hash ON certificates (verification_hash);`

// WipeFacts is the input to issuance, supplied by the wipe engine.
// Nothing here is derived or altered by the certificate core.
type WipeFacts struct {
	DeviceId      string    `json:"device_id"`
	DeviceName    string    `json:"device_name"`
	DeviceModel   string    `json:"device_model"`
	DeviceSerial  string    `json:"device_serial"`
	WipeMethod    string    `json:"wipe_method"`
	WipeStartTime time.Time `json:"wipe_start_time"`
	WipeEndTime   time.Time `json:"wipe_end_time"`
}

// Validate checks that every required fact is present before any
// signing attempt is made.
func (f *WipeFacts) Validate() error {
	missing := []string{}
	if strings.TrimSpace(f.DeviceId) == "" {
		missing = append(missing, "device_id")
	}
	if strings.TrimSpace(f.DeviceName) == "" {
		missing = append(missing, "device_name")
	}
	if strings.TrimSpace(f.DeviceModel) == "" {
		missing = append(missing, "device_model")
	}
	if strings.TrimSpace(f.DeviceSerial) == "" {
		missing = append(missing, "device_serial")
	}
	if strings.TrimSpace(f.WipeMethod) == "" {
		missing = append(missing, "wipe_method")
	}
	if f.WipeStartTime.IsZero() {
		missing = append(missing, "wipe_start_time")
	}
	if f.WipeEndTime.IsZero() {
		missing = append(missing, "wipe_end_time")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if f.WipeEndTime.Before(f.WipeStartTime) {
		return fmt.Errorf("%w: wipe_end_time before wipe_start_time", ErrValidation)
	}
	return nil
}

// NewCertID derives the shareable certificate identifier from the
// device id and a timestamp: "CERT-" plus the first 16 hex characters
// of SHA-256(deviceID:timestamp), uppercased. Opaque and
// non-sequential so identifiers cannot be enumerated.
func NewCertID(deviceID string, ts time.Time) string {
	sum := sha256.Sum256([]byte(deviceID + ":" + ts.UTC().Format(time.RFC3339Nano)))
	return "CERT-" + strings.ToUpper(hex.EncodeToString(sum[:])[:16])
}
