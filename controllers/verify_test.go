package controllers_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addspin/zerotrace/artifacts"
	"github.com/addspin/zerotrace/controllers"
	"github.com/addspin/zerotrace/crypts"
	"github.com/addspin/zerotrace/models"
	"github.com/addspin/zerotrace/routes"
	"github.com/addspin/zerotrace/service"
	"github.com/addspin/zerotrace/store"
)

type testApp struct {
	app    *fiber.App
	mem    *store.Memory
	signer *crypts.Signer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer := crypts.NewSignerFromKey(key)
	verifier := crypts.NewVerifierFromKey(&key.PublicKey)
	mem := store.NewMemory()
	objects := artifacts.NewObjectStore(t.TempDir(), "test-secret")

	handler := &controllers.Handler{
		Store:       mem,
		Verify:      service.NewVerification(mem, verifier),
		Issue:       service.NewIssuance(mem, signer, objects, "https://example.com/verify"),
		Objects:     objects,
		UploadDir:   t.TempDir(),
		MaxUpload:   1 << 20,
		DownloadTTL: time.Minute,
	}
	app := fiber.New()
	routes.Setup(app, handler)
	return &testApp{app: app, mem: mem, signer: signer}
}

func (ta *testApp) seedSigned(t *testing.T, certID, userID, wipeMethod, status string) *models.Certificate {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339)
	cert := &models.Certificate{
		CertId:        certID,
		UserId:        userID,
		DeviceId:      "dev-" + certID,
		DeviceName:    "Samsung SSD 870",
		DeviceModel:   "MZ-77E500",
		DeviceSerial:  "S5Y1NG0R123456",
		WipeMethod:    wipeMethod,
		WipeStartTime: "2026-08-01T10:00:00Z",
		WipeEndTime:   "2026-08-01T11:30:00Z",
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	canonical, err := crypts.Canonical(crypts.CanonicalFacts(cert))
	require.NoError(t, err)
	cert.VerificationHash = crypts.Hash(canonical)
	cert.Signature, err = ta.signer.Sign(canonical)
	require.NoError(t, err)
	require.NoError(t, ta.mem.InsertCertificate(context.Background(), cert))
	return cert
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestVerifyByIDVerifiedScenario(t *testing.T) {
	ta := newTestApp(t)
	ta.seedSigned(t, "CERT-ABCD1234", "user-1", "NIST 800-88 Purge", models.StatusVerified)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/verify/id/CERT-ABCD1234", nil)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Verified", body["status"])
	assert.Equal(t, "CERT-ABCD1234", body["cert_id"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NIST 800-88 Purge", details["wipe_method"])
	// Signature material never crosses the public boundary.
	assert.NotContains(t, body, "signature")
	assert.NotContains(t, details, "signature")
}

func TestVerifyByIDNotFoundScenario(t *testing.T) {
	ta := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/verify/id/CERT-DEAD0000", nil)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "NotFound", body["status"])

	logs := ta.mem.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.ResultNotFound, logs[0].Result)
	assert.Equal(t, "CERT-DEAD0000", logs[0].CertId)
}

func TestVerifyByIDRevokedScenario(t *testing.T) {
	ta := newTestApp(t)
	ta.seedSigned(t, "CERT-REV00001", "user-1", "NIST 800-88 Purge", models.StatusRevoked)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/verify/id/CERT-REV00001", nil)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Revoked", body["status"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Samsung SSD 870", details["device_name"])
	assert.NotEmpty(t, details["wipe_date"])
	assert.NotContains(t, details, "signature")
}

func TestVerifyByHash(t *testing.T) {
	ta := newTestApp(t)
	cert := ta.seedSigned(t, "CERT-HASH0001", "user-1", "NIST 800-88 Purge", models.StatusVerified)

	payload, _ := json.Marshal(map[string]string{"hash": cert.VerificationHash})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/hash", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Verified", decodeBody(t, resp)["status"])
}

func TestVerifyByHashRequiresHash(t *testing.T) {
	ta := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/hash", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyByFile(t *testing.T) {
	ta := newTestApp(t)
	cert := ta.seedSigned(t, "CERT-FILE0001", "user-1", "NIST 800-88 Purge", models.StatusVerified)
	doc, err := artifacts.RenderJSON(artifacts.FromCertificate(cert))
	require.NoError(t, err)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "certificate.json")
	require.NoError(t, err)
	_, err = part.Write(doc)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/file", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Verified", decodeBody(t, resp)["status"])
}

func TestVerifyByFileRejectsOtherTypes(t *testing.T) {
	ta := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "malware.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/file", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
