package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/addspin/zerotrace/models"
	"github.com/addspin/zerotrace/utils"
)

// RevokeCert handles POST /api/v1/certificates/:certId/revoke. Only
// the owner may revoke, and revocation is final.
func (h *Handler) RevokeCert(c fiber.Ctx) error {
	certID := c.Params("certId")
	err := h.Issue.Revoke(c.Context(), userID(c), certID)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{
			"status":  "Revoked",
			"message": "Certificate has been revoked",
			"cert_id": certID,
		})
	case errors.Is(err, models.ErrValidation):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "Error",
			"message": "Unauthorized",
		})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "Error",
			"message": "Certificate not found",
		})
	default:
		utils.L().Errorw("revoke failed", "cert_id", certID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "Error",
			"message": "Revocation failed",
		})
	}
}
