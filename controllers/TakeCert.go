package controllers

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/addspin/zerotrace/models"
	"github.com/addspin/zerotrace/utils"
)

// TakeCert handles GET /api/v1/certificates/:certId. Owner only.
func (h *Handler) TakeCert(c fiber.Ctx) error {
	cert, status := h.ownedCert(c)
	if cert == nil {
		return status
	}
	return c.JSON(fiber.Map{"certificate": cert})
}

// DownloadCert handles GET /api/v1/certificates/:certId/download
// ?type=pdf|json, returning a time-limited signed URL for the stored
// artifact.
func (h *Handler) DownloadCert(c fiber.Ctx) error {
	cert, status := h.ownedCert(c)
	if cert == nil {
		return status
	}

	fileType := c.Query("type", "pdf")
	var key string
	switch fileType {
	case "pdf":
		key = cert.PdfUrl
	case "json":
		key = cert.JsonUrl
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "Error",
			"message": "Invalid file type",
		})
	}
	if key == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "Error",
			"message": "File not found",
		})
	}

	token := h.Objects.SignedToken(key, h.DownloadTTL)
	return c.JSON(fiber.Map{
		"download_url": "/api/v1/artifacts/" + token,
	})
}

// Artifact handles GET /api/v1/artifacts/:token, serving an artifact
// through a valid signed token.
func (h *Handler) Artifact(c fiber.Ctx) error {
	key, err := h.Objects.ResolveToken(c.Params("token"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "Error",
			"message": "File not found",
		})
	}
	data, err := h.Objects.Get(key)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "Error",
			"message": "File not found",
		})
	}
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		c.Set(fiber.HeaderContentType, "application/pdf")
	default:
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filepath.Base(key)+`"`)
	return c.Send(data)
}

// ownedCert loads the requested certificate and enforces ownership.
// Returns (nil, alreadyWrittenResponse) when access is denied.
func (h *Handler) ownedCert(c fiber.Ctx) (*models.Certificate, error) {
	cert, err := h.Store.GetCertificateByID(c.Context(), c.Params("certId"))
	if errors.Is(err, models.ErrNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "Error",
			"message": "Certificate not found",
		})
	}
	if err != nil {
		utils.L().Errorw("fetch certificate failed", "error", err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "Error",
			"message": "Failed to fetch certificate",
		})
	}
	if cert.UserId != userID(c) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "Error",
			"message": "Unauthorized",
		})
	}
	return cert, nil
}
