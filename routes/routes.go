package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/addspin/zerotrace/controllers"
	"github.com/addspin/zerotrace/middleware"
)

// Setup registers the public verification surface and the
// authenticated certificate management surface.
func Setup(app *fiber.App, h *controllers.Handler) {
	api := app.Group("/api/v1")

	// Public: anyone holding an identifier, hash or artifact may ask.
	api.Get("/verify/id/:certId", h.VerifyByID)
	api.Post("/verify/hash", h.VerifyByHash)
	api.Post("/verify/file", h.VerifyByFile)
	api.Get("/artifacts/:token", h.Artifact)

	// Authenticated: issuance and management of own certificates.
	certs := api.Group("/certificates", middleware.APIKeyAuth(h.Store))
	certs.Post("/", h.IssueCert)
	certs.Get("/", h.ListCerts)
	certs.Get("/:certId", h.TakeCert)
	certs.Get("/:certId/download", h.DownloadCert)
	certs.Post("/:certId/revoke", h.RevokeCert)
}
