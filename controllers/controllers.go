package controllers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/addspin/zerotrace/artifacts"
	"github.com/addspin/zerotrace/middleware"
	"github.com/addspin/zerotrace/service"
	"github.com/addspin/zerotrace/store"
)

// Handler carries the wired services into the fiber handlers.
type Handler struct {
	Store       store.Store
	Verify      *service.Verification
	Issue       *service.Issuance
	Objects     *artifacts.ObjectStore
	UploadDir   string
	MaxUpload   int64
	DownloadTTL time.Duration
}

// client extracts the calling party's info for audit logging.
func client(c fiber.Ctx) service.Client {
	return service.Client{
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

// userID returns the authenticated principal set by the auth
// middleware.
func userID(c fiber.Ctx) string {
	id, _ := c.Locals(middleware.UserIDKey).(string)
	return id
}

// respond maps a verification result onto an HTTP response. Negative
// outcomes are still successful responses carrying the outcome;
// internal errors collapse to a generic 500.
func respond(c fiber.Ctx, res service.Result) error {
	switch res.Outcome {
	case service.OutcomeNotFound:
		return c.Status(fiber.StatusNotFound).JSON(res)
	case service.OutcomeError:
		return c.Status(fiber.StatusInternalServerError).JSON(res)
	default:
		return c.JSON(res)
	}
}
