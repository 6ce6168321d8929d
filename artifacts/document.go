package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/addspin/zerotrace/models"
)

// Document is the self-verifying certificate artifact: exactly the
// canonical fact fields plus cert_id, verification_hash and signature.
// A holder can recompute the canonical bytes from the fact fields and
// check the signature offline, without contacting the service.
type Document struct {
	CertId           string `json:"cert_id"`
	DeviceId         string `json:"device_id"`
	DeviceName       string `json:"device_name"`
	DeviceModel      string `json:"device_model"`
	DeviceSerial     string `json:"device_serial"`
	WipeMethod       string `json:"wipe_method"`
	WipeStartTime    string `json:"wipe_start_time"`
	WipeEndTime      string `json:"wipe_end_time"`
	VerificationHash string `json:"verification_hash"`
	Signature        string `json:"signature"`
}

// FromCertificate builds the artifact document for a stored record.
func FromCertificate(c *models.Certificate) Document {
	return Document{
		CertId:           c.CertId,
		DeviceId:         c.DeviceId,
		DeviceName:       c.DeviceName,
		DeviceModel:      c.DeviceModel,
		DeviceSerial:     c.DeviceSerial,
		WipeMethod:       c.WipeMethod,
		WipeStartTime:    c.WipeStartTime,
		WipeEndTime:      c.WipeEndTime,
		VerificationHash: c.VerificationHash,
		Signature:        c.Signature,
	}
}

// Certificate maps the document back onto a record shape so the fact
// fields can be re-canonicalized with the same code path used at
// issuance.
func (d *Document) Certificate() *models.Certificate {
	return &models.Certificate{
		CertId:           d.CertId,
		DeviceId:         d.DeviceId,
		DeviceName:       d.DeviceName,
		DeviceModel:      d.DeviceModel,
		DeviceSerial:     d.DeviceSerial,
		WipeMethod:       d.WipeMethod,
		WipeStartTime:    d.WipeStartTime,
		WipeEndTime:      d.WipeEndTime,
		VerificationHash: d.VerificationHash,
		Signature:        d.Signature,
	}
}

// ParseDocument decodes an uploaded JSON artifact. Unknown fields are
// rejected so arbitrary JSON cannot masquerade as a certificate.
func ParseDocument(b []byte) (*Document, error) {
	doc := Document{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse certificate document: %w", err)
	}
	if doc.CertId == "" || doc.Signature == "" || doc.VerificationHash == "" {
		return nil, fmt.Errorf("parse certificate document: missing identity or signature fields")
	}
	return &doc, nil
}
