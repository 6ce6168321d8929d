package service

import (
	"bytes"
	"context"
	"errors"
	"os"

	"github.com/addspin/zerotrace/artifacts"
	"github.com/addspin/zerotrace/crypts"
	"github.com/addspin/zerotrace/models"
	"github.com/addspin/zerotrace/store"
	"github.com/addspin/zerotrace/utils"
)

// Outcome is the public result of a verification attempt. Only these
// values ever cross the trust boundary; internal error detail stays on
// the operator side.
type Outcome string

const (
	OutcomeVerified Outcome = "Verified"
	OutcomeRevoked  Outcome = "Revoked"
	OutcomePending  Outcome = "Pending"
	OutcomeNotFound Outcome = "NotFound"
	OutcomeError    Outcome = "Error"
)

// Client identifies the party making a verification attempt, for the
// audit log.
type Client struct {
	IP        string
	UserAgent string
}

// Details is the public-safe subset of a certificate exposed with a
// positive outcome. Never includes the signature or key material.
type Details struct {
	DeviceName  string `json:"device_name,omitempty"`
	DeviceModel string `json:"device_model,omitempty"`
	WipeMethod  string `json:"wipe_method,omitempty"`
	WipeDate    string `json:"wipe_date,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Result is what a verification entry point hands back to the
// transport layer.
type Result struct {
	Outcome Outcome  `json:"status"`
	Message string   `json:"message"`
	CertId  string   `json:"cert_id,omitempty"`
	Details *Details `json:"details,omitempty"`
}

// Verification runs the outcome state machine shared by the three
// entry protocols: by identifier, by hash, and by uploaded artifact.
// Every attempt writes exactly one audit entry, after the outcome is
// fully determined.
type Verification struct {
	store    store.Store
	verifier *crypts.Verifier
}

func NewVerification(st store.Store, verifier *crypts.Verifier) *Verification {
	return &Verification{store: st, verifier: verifier}
}

// VerifyByID looks a certificate up by its shareable identifier.
func (s *Verification) VerifyByID(ctx context.Context, certID string, client Client) Result {
	cert, err := s.store.GetCertificateByID(ctx, certID)
	return s.resolve(ctx, certID, cert, err, client)
}

// VerifyByHash looks a certificate up by its verification hash, for
// holders of an artifact who do not want to transmit the document.
func (s *Verification) VerifyByHash(ctx context.Context, hash string, client Client) Result {
	cert, err := s.store.GetCertificateByHash(ctx, hash)
	// Hash lookups never echo an identifier on a negative outcome, a
	// hash miss carries no id to echo.
	return s.resolve(ctx, "", cert, err, client)
}

// resolve applies the outcome branching common to id and hash lookups.
// certID is the identifier a negative response may echo back; positive
// outcomes always report the stored record's id.
func (s *Verification) resolve(ctx context.Context, certID string, cert *models.Certificate, err error, client Client) Result {
	if errors.Is(err, models.ErrNotFound) {
		s.logAttempt(ctx, certID, models.ResultNotFound, client)
		return Result{
			Outcome: OutcomeNotFound,
			Message: "No certificate found",
			CertId:  certID,
		}
	}
	if err != nil {
		utils.L().Errorw("certificate lookup failed", "cert_id", certID, "error", err)
		return Result{Outcome: OutcomeError, Message: "Verification failed"}
	}

	if !s.storedIntegrityOK(cert) {
		// Tampered or corrupted row. Operators get the real story,
		// the public sees NotFound so the inconsistency is not
		// advertised.
		utils.L().Errorw("stored certificate failed integrity check",
			"cert_id", cert.CertId, "error", models.ErrIntegrity)
		s.logAttempt(ctx, cert.CertId, models.ResultIntegrityFailure, client)
		return Result{
			Outcome: OutcomeNotFound,
			Message: "No certificate found",
			CertId:  certID,
		}
	}

	switch cert.Status {
	case models.StatusRevoked:
		s.logAttempt(ctx, cert.CertId, models.ResultRevoked, client)
		return Result{
			Outcome: OutcomeRevoked,
			Message: "This certificate has been revoked",
			CertId:  cert.CertId,
			Details: &Details{
				DeviceName: cert.DeviceName,
				WipeDate:   cert.WipeStartTime,
			},
		}
	case models.StatusPending:
		s.logAttempt(ctx, cert.CertId, models.ResultPending, client)
		return Result{
			Outcome: OutcomePending,
			Message: "Certificate issuance is still pending",
			CertId:  cert.CertId,
		}
	default:
		s.logAttempt(ctx, cert.CertId, models.ResultVerified, client)
		return Result{
			Outcome: OutcomeVerified,
			Message: "Certificate is valid and authentic",
			CertId:  cert.CertId,
			Details: &Details{
				DeviceName:  cert.DeviceName,
				DeviceModel: cert.DeviceModel,
				WipeMethod:  cert.WipeMethod,
				WipeDate:    cert.WipeStartTime,
				Status:      cert.Status,
			},
		}
	}
}

// VerifyUpload verifies an uploaded artifact file (JSON or PDF) at
// path. The file is removed on every exit path. Signature math alone
// is necessary but not sufficient: the embedded record must also exist
// in the store and match it, otherwise a forgery signed with a
// different key pair would pass.
func (s *Verification) VerifyUpload(ctx context.Context, path string, client Client) Result {
	defer os.Remove(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		utils.L().Errorw("read uploaded artifact failed", "error", err)
		return Result{Outcome: OutcomeError, Message: "Verification failed"}
	}

	var doc *artifacts.Document
	if bytes.HasPrefix(raw, []byte("%PDF-")) {
		doc, err = artifacts.ExtractPDFDocument(raw)
	} else {
		doc, err = artifacts.ParseDocument(raw)
	}
	if err != nil {
		s.logAttempt(ctx, "", models.ResultNotFound, client)
		return Result{
			Outcome: OutcomeNotFound,
			Message: "File is not a valid certificate",
		}
	}

	canonical, err := crypts.Canonical(crypts.CanonicalFacts(doc.Certificate()))
	if err != nil {
		utils.L().Errorw("canonical encoding failed", "cert_id", doc.CertId, "error", err)
		return Result{Outcome: OutcomeError, Message: "Verification failed"}
	}
	if crypts.Hash(canonical) != doc.VerificationHash || !s.verifier.Verify(canonical, doc.Signature) {
		s.logAttempt(ctx, doc.CertId, models.ResultNotFound, client)
		return Result{
			Outcome: OutcomeNotFound,
			Message: "Certificate could not be verified",
			CertId:  doc.CertId,
		}
	}

	cert, err := s.store.GetCertificateByID(ctx, doc.CertId)
	if errors.Is(err, models.ErrNotFound) {
		s.logAttempt(ctx, doc.CertId, models.ResultNotFound, client)
		return Result{
			Outcome: OutcomeNotFound,
			Message: "Certificate could not be verified",
			CertId:  doc.CertId,
		}
	}
	if err != nil {
		utils.L().Errorw("certificate lookup failed", "cert_id", doc.CertId, "error", err)
		return Result{Outcome: OutcomeError, Message: "Verification failed"}
	}
	if cert.VerificationHash != doc.VerificationHash || cert.Signature != doc.Signature {
		s.logAttempt(ctx, doc.CertId, models.ResultNotFound, client)
		return Result{
			Outcome: OutcomeNotFound,
			Message: "Certificate could not be verified",
			CertId:  doc.CertId,
		}
	}

	return s.resolve(ctx, cert.CertId, cert, nil, client)
}

// storedIntegrityOK recomputes the canonical bytes of a stored record
// and checks both the hash and the signature against them.
func (s *Verification) storedIntegrityOK(cert *models.Certificate) bool {
	canonical, err := crypts.Canonical(crypts.CanonicalFacts(cert))
	if err != nil {
		return false
	}
	return crypts.Hash(canonical) == cert.VerificationHash &&
		s.verifier.Verify(canonical, cert.Signature)
}

// logAttempt appends the audit entry for a determined outcome. Best
// effort: a log write failure is surfaced to operators but never
// blocks the verification response.
func (s *Verification) logAttempt(ctx context.Context, certID, result string, client Client) {
	entry := &models.VerificationLogEntry{
		CertId:    certID,
		Result:    result,
		IpAddress: client.IP,
		UserAgent: client.UserAgent,
	}
	if err := s.store.InsertVerificationLog(ctx, entry); err != nil {
		utils.L().Errorw("verification log write failed",
			"cert_id", certID, "result", result, "error", err)
	}
}
