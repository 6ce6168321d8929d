package service

import (
	"context"
	"fmt"
	"time"

	"github.com/addspin/zerotrace/artifacts"
	"github.com/addspin/zerotrace/crypts"
	"github.com/addspin/zerotrace/models"
	"github.com/addspin/zerotrace/store"
	"github.com/addspin/zerotrace/utils"
)

// Issuance assembles, signs and persists certificates from wipe engine
// facts. All-or-nothing: a validation, signing or store failure leaves
// nothing persisted. Artifact rendering happens after the record is
// durable; artifacts are convenience copies, not the certificate.
type Issuance struct {
	store         store.Store
	signer        *crypts.Signer
	objects       *artifacts.ObjectStore
	verifyBaseURL string
}

func NewIssuance(st store.Store, signer *crypts.Signer, objects *artifacts.ObjectStore, verifyBaseURL string) *Issuance {
	return &Issuance{store: st, signer: signer, objects: objects, verifyBaseURL: verifyBaseURL}
}

// Issue creates a signed certificate owned by userID from the given
// facts. The facts are snapshotted here and never mutated afterwards;
// a changed fact means a new certificate.
func (p *Issuance) Issue(ctx context.Context, userID string, facts models.WipeFacts) (*models.Certificate, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", models.ErrValidation)
	}
	if err := facts.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cert := &models.Certificate{
		CertId:        models.NewCertID(facts.DeviceId, now),
		UserId:        userID,
		DeviceId:      facts.DeviceId,
		DeviceName:    facts.DeviceName,
		DeviceModel:   facts.DeviceModel,
		DeviceSerial:  facts.DeviceSerial,
		WipeMethod:    facts.WipeMethod,
		WipeStartTime: facts.WipeStartTime.UTC().Format(time.RFC3339),
		WipeEndTime:   facts.WipeEndTime.UTC().Format(time.RFC3339),
		Status:        models.StatusVerified,
		CreatedAt:     now.Format(time.RFC3339),
		UpdatedAt:     now.Format(time.RFC3339),
	}

	canonical, err := crypts.Canonical(crypts.CanonicalFacts(cert))
	if err != nil {
		return nil, err
	}
	cert.VerificationHash = crypts.Hash(canonical)
	cert.Signature, err = p.signer.Sign(canonical)
	if err != nil {
		return nil, err
	}

	if err := p.store.InsertCertificate(ctx, cert); err != nil {
		return nil, err
	}

	p.renderArtifacts(ctx, cert)
	return cert, nil
}

// renderArtifacts writes the JSON and PDF copies to object storage and
// records their keys. Failures are operator-visible but do not undo
// issuance: the signed record already stands on its own.
func (p *Issuance) renderArtifacts(ctx context.Context, cert *models.Certificate) {
	if p.objects == nil {
		return
	}
	doc := artifacts.FromCertificate(cert)

	jsonBody, err := artifacts.RenderJSON(doc)
	if err != nil {
		utils.L().Errorw("render json artifact failed", "cert_id", cert.CertId, "error", err)
		return
	}
	jsonKey, err := p.objects.Put(cert.UserId, cert.CertId, "json", jsonBody)
	if err != nil {
		utils.L().Errorw("store json artifact failed", "cert_id", cert.CertId, "error", err)
		return
	}

	pdfBody, err := artifacts.RenderPDF(doc, p.verifyBaseURL+"/"+cert.CertId)
	if err != nil {
		utils.L().Errorw("render pdf artifact failed", "cert_id", cert.CertId, "error", err)
		return
	}
	pdfKey, err := p.objects.Put(cert.UserId, cert.CertId, "pdf", pdfBody)
	if err != nil {
		utils.L().Errorw("store pdf artifact failed", "cert_id", cert.CertId, "error", err)
		return
	}

	if err := p.store.UpdateArtifactURLs(ctx, cert.CertId, pdfKey, jsonKey); err != nil {
		utils.L().Errorw("record artifact urls failed", "cert_id", cert.CertId, "error", err)
		return
	}
	cert.PdfUrl = pdfKey
	cert.JsonUrl = jsonKey
}

// Revoke transitions a certificate to revoked on behalf of its owner.
// The transition is a compare-and-set at the store so racing attempts
// cannot corrupt state, and it is final: nothing transitions out of
// revoked.
func (p *Issuance) Revoke(ctx context.Context, userID, certID string) error {
	cert, err := p.store.GetCertificateByID(ctx, certID)
	if err != nil {
		return err
	}
	if cert.UserId != userID {
		return fmt.Errorf("%w: certificate not owned by caller", models.ErrValidation)
	}
	if cert.Status == models.StatusRevoked {
		return nil
	}
	return p.store.UpdateCertificateStatus(ctx, certID, cert.Status, models.StatusRevoked)
}
