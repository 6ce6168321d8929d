package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/addspin/zerotrace/crypts"
	"github.com/addspin/zerotrace/store"
)

// UserIDKey is the locals key under which the authenticated principal
// is stored for downstream handlers.
const UserIDKey = "userID"

// APIKeyAuth authenticates requests carrying "Authorization: Bearer
// <keyID>.<secret>" against the api_keys table and resolves the owning
// user. Everything behind it can rely on a stable principal id.
func APIKeyAuth(st store.Store) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return unauthorized(c)
		}
		keyID, secret, ok := strings.Cut(token, ".")
		if !ok {
			return unauthorized(c)
		}
		key, err := st.GetAPIKey(c.Context(), keyID)
		if err != nil {
			return unauthorized(c)
		}
		if !crypts.CheckAPIKey(secret, key.Salt, key.KeyHash) {
			return unauthorized(c)
		}
		c.Locals(UserIDKey, key.UserId)
		return c.Next()
	}
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "Error",
		"message": "Unauthorized",
	})
}
