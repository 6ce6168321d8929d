package controllers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/addspin/zerotrace/artifacts"
)

// VerifyByID handles GET /api/v1/verify/id/:certId.
func (h *Handler) VerifyByID(c fiber.Ctx) error {
	certID := c.Params("certId")
	if certID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "Error",
			"message": "Certificate ID is required",
		})
	}
	return respond(c, h.Verify.VerifyByID(c.Context(), certID, client(c)))
}

// VerifyByHash handles POST /api/v1/verify/hash with body {hash}.
func (h *Handler) VerifyByHash(c fiber.Ctx) error {
	body := struct {
		Hash string `json:"hash"`
	}{}
	if err := c.Bind().JSON(&body); err != nil || strings.TrimSpace(body.Hash) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "Error",
			"message": "Hash is required",
		})
	}
	return respond(c, h.Verify.VerifyByHash(c.Context(), body.Hash, client(c)))
}

// VerifyByFile handles POST /api/v1/verify/file with a multipart
// "file" part (json or pdf). The uploaded file is written to a unique
// scratch path and removed by the service on every exit path.
func (h *Handler) VerifyByFile(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "Error",
			"message": "No file provided",
		})
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".json" && ext != ".pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "Error",
			"message": "Invalid file type, only JSON and PDF are accepted",
		})
	}
	path, err := artifacts.SaveUpload(h.UploadDir, fh, h.MaxUpload)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "Error",
			"message": "Could not accept file",
		})
	}
	return respond(c, h.Verify.VerifyUpload(c.Context(), path, client(c)))
}
