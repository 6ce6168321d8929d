package artifacts

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// RenderJSON produces the downloadable JSON artifact, indented for
// humans. The fact fields inside are the canonical values; hashing and
// signature checks re-canonicalize them, so presentation whitespace
// does not matter.
func RenderJSON(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// keywordsPayload matches the base64 payload the renderer stores in
// the PDF Keywords entry.
var keywordsPayload = regexp.MustCompile(`/Keywords \(([A-Za-z0-9+/=]+)\)`)

// RenderPDF produces the printable certificate. The full JSON document
// is embedded base64 in the PDF metadata so an uploaded PDF can be
// verified the same way as a JSON artifact, and a QR code carries the
// public verification URL.
func RenderPDF(doc Document, verifyURL string) ([]byte, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Data Wipe Certificate "+doc.CertId, false)
	pdf.SetKeywords(base64.StdEncoding.EncodeToString(payload), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Certificate of Data Destruction", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, doc.CertId, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Device", doc.DeviceName},
		{"Model", doc.DeviceModel},
		{"Serial Number", doc.DeviceSerial},
		{"Device ID", doc.DeviceId},
		{"Wipe Method", doc.WipeMethod},
		{"Started", doc.WipeStartTime},
		{"Completed", doc.WipeEndTime},
		{"Verification Hash", doc.VerificationHash},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 8, row[0], "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, row[1], "B", 1, "L", false, 0, "")
	}

	if verifyURL != "" {
		png, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("render pdf: qr code: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("verify-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("verify-qr", 160, 240, 35, 35, false, opts, 0, "")
		pdf.SetY(278)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, "Scan to verify: "+verifyURL, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractPDFDocument pulls the embedded JSON document back out of a
// rendered PDF. Fails on any PDF that was not produced by RenderPDF or
// was altered afterwards.
func ExtractPDFDocument(pdf []byte) (*Document, error) {
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		return nil, fmt.Errorf("extract pdf document: not a PDF")
	}
	m := keywordsPayload.FindSubmatch(pdf)
	if m == nil {
		return nil, fmt.Errorf("extract pdf document: no embedded certificate payload")
	}
	payload, err := base64.StdEncoding.DecodeString(string(m[1]))
	if err != nil {
		return nil, fmt.Errorf("extract pdf document: %w", err)
	}
	return ParseDocument(payload)
}
