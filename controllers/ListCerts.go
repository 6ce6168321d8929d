package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/addspin/zerotrace/utils"
)

// ListCerts handles GET /api/v1/certificates: the authenticated user's
// certificates, newest first, with limit/offset pagination.
func (h *Handler) ListCerts(c fiber.Ctx) error {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	certs, err := h.Store.GetUserCertificates(c.Context(), userID(c), limit, offset)
	if err != nil {
		utils.L().Errorw("list certificates failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "Error",
			"message": "Failed to fetch certificates",
		})
	}
	return c.JSON(fiber.Map{
		"certificates": certs,
		"total":        len(certs),
		"limit":        limit,
		"offset":       offset,
	})
}

func queryInt(c fiber.Ctx, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
