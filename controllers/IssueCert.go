package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/addspin/zerotrace/models"
	"github.com/addspin/zerotrace/utils"
)

// IssueCert handles POST /api/v1/certificates: assembles and signs a
// certificate from wipe engine facts on behalf of the authenticated
// user.
func (h *Handler) IssueCert(c fiber.Ctx) error {
	facts := models.WipeFacts{}
	if err := c.Bind().JSON(&facts); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "Error",
			"message": "Cannot parse JSON body",
		})
	}

	cert, err := h.Issue.Issue(c.Context(), userID(c), facts)
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"status":      "Created",
			"certificate": cert,
		})
	case errors.Is(err, models.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "Error",
			"message": err.Error(),
		})
	case errors.Is(err, models.ErrStore):
		utils.L().Errorw("issuance store failure", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "Error",
			"message": "Certificate could not be saved, try again",
		})
	default:
		// Key and signing failures stay on the operator side.
		utils.L().Errorw("issuance failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "Error",
			"message": "Certificate issuance failed",
		})
	}
}
