package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const clientCookie = "qna_client_id"

// ClientMiddleware assigns every anonymous visitor a stable client id via
// cookie. The id scopes conversations and the daily question quota.
func ClientMiddleware(ctx *fiber.Ctx) error {
	clientId := ctx.Cookies(clientCookie)
	if clientId == "" {
		clientId = uuid.NewString()
		ctx.Cookie(&fiber.Cookie{
			Name:     clientCookie,
			Value:    clientId,
			Expires:  time.Now().Add(365 * 24 * time.Hour),
			HTTPOnly: true,
			SameSite: "Lax",
		})
	}
	ctx.Locals("client_id", clientId)
	return ctx.Next()
}
