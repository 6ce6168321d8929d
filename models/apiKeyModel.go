package models

// ApiKey maps a bearer credential to its owning user. Only a PBKDF2
// hash of the secret half is stored; the plaintext key is shown once
// at creation time.
type ApiKey struct {
	Id        string `db:"id" json:"id"`
	UserId    string `db:"user_id" json:"user_id"`
	KeyHash   string `db:"key_hash" json:"-"`
	Salt      string `db:"salt" json:"-"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

var SchemaApiKeys = `
CREATE TABLE IF NOT EXISTS api_keys (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	key_hash TEXT NOT NULL,
	salt TEXT NOT NULL,
	created_at TEXT NOT NULL
);`
