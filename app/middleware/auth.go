package middleware

import (
	"log/slog"

	"labstock-service/app/domain"
	"labstock-service/app/handler/api/response"
	"labstock-service/config"
	"labstock-service/pkg"
	"labstock-service/pkg/ctxutil"

	"github.com/gofiber/fiber/v2"
)

type AuthInternalHeader string

const AuthInternalHeaderKey AuthInternalHeader = "X-Internal-Auth"

func AuthInternal(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(string(AuthInternalHeaderKey))
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}
		if authHeader != cfg.InternalAuthHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		return c.Next()
	}
}

// UserFromHeader picks up the acting user for internal calls, where the
// upstream service is trusted to forward the user id.
func UserFromHeader() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID := c.Get("X-User-ID"); userID != "" {
			c.Locals(ctxutil.UserIDKey, userID)
		}
		return c.Next()
	}
}

func Auth(secretKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := pkg.GetTokenFromHeaders(c.Get("Authorization"))
		if err != nil {
			slog.ErrorContext(c.Context(), "[middleware] Auth", "GetTokenFromHeaders", err)
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		claims, err := pkg.ParseJwtToken(token, secretKey)
		if err != nil {
			slog.ErrorContext(c.Context(), "[middleware] Auth", "ParseJwtToken", err)
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		if claims.UserID == "" {
			slog.ErrorContext(c.Context(), "[middleware] Auth", "userID", "empty")
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		c.Locals(ctxutil.UserIDKey, claims.UserID)
		return c.Next()
	}
}
