package artifacts

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ObjectStore keeps rendered artifacts on the local filesystem under
// root, keyed "userID/certID.type", and hands out time-limited
// HMAC-signed download tokens instead of raw paths. It stands in for a
// remote bucket; nothing above it assumes local storage.
type ObjectStore struct {
	root   string
	secret []byte
}

func NewObjectStore(root, urlSecret string) *ObjectStore {
	return &ObjectStore{root: root, secret: []byte(urlSecret)}
}

// Put writes an artifact and returns its storage key.
func (o *ObjectStore) Put(userID, certID, fileType string, data []byte) (string, error) {
	key := userID + "/" + certID + "." + fileType
	dir := filepath.Join(o.root, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object store put: %w", err)
	}
	if err := os.WriteFile(filepath.Join(o.root, filepath.FromSlash(key)), data, 0o644); err != nil {
		return "", fmt.Errorf("object store put: %w", err)
	}
	return key, nil
}

// Get reads an artifact by key. Keys that escape the root are
// rejected.
func (o *ObjectStore) Get(key string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("object store get: invalid key")
	}
	data, err := os.ReadFile(filepath.Join(o.root, clean))
	if err != nil {
		return nil, fmt.Errorf("object store get: %w", err)
	}
	return data, nil
}

// SignedToken mints an opaque download token for key that expires
// after ttl.
func (o *ObjectStore) SignedToken(key string, ttl time.Duration) string {
	exp := time.Now().Add(ttl).Unix()
	mac := o.mac(key, exp)
	raw := key + "|" + strconv.FormatInt(exp, 10) + "|" + mac
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ResolveToken validates a download token and returns the storage key
// it grants access to.
func (o *ObjectStore) ResolveToken(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return "", fmt.Errorf("resolve token: malformed")
	}
	key := parts[0]
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("resolve token: malformed expiry")
	}
	if !hmac.Equal([]byte(o.mac(key, exp)), []byte(parts[2])) {
		return "", fmt.Errorf("resolve token: bad signature")
	}
	if time.Now().Unix() > exp {
		return "", fmt.Errorf("resolve token: expired")
	}
	return key, nil
}

func (o *ObjectStore) mac(key string, exp int64) string {
	h := hmac.New(sha256.New, o.secret)
	h.Write([]byte(key + "|" + strconv.FormatInt(exp, 10)))
	return hex.EncodeToString(h.Sum(nil))
}
