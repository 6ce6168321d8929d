package models

// Verification attempt results as stored in verification_logs.
// "integrity_failure" is internal only and never crosses the public
// boundary; callers see NotFound instead.
const (
	ResultVerified         = "verified"
	ResultRevoked          = "revoked"
	ResultNotFound         = "not_found"
	ResultPending          = "pending"
	ResultIntegrityFailure = "integrity_failure"
)

// VerificationLogEntry is the append-only audit record of a single
// verification attempt. CertId may reference a certificate that does
// not exist. Entries are never updated or deleted.
type VerificationLogEntry struct {
	Id        string `db:"id" json:"id"`
	CertId    string `db:"cert_id" json:"cert_id"`
	Result    string `db:"result" json:"result"`
	IpAddress string `db:"ip_address" json:"ip_address"`
	UserAgent string `db:"user_agent" json:"user_agent"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

var SchemaVerificationLogs = `
CREATE TABLE IF NOT EXISTS verification_logs (
	id TEXT PRIMARY KEY,
	cert_id TEXT NOT NULL,
	result TEXT NOT NULL,
	ip_address TEXT,
	user_agent TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verification_logs_cert ON verification_logs (cert_id, created_at);`
