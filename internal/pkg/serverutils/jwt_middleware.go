package serverutils

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware accepts HS256 bearer tokens signed with secret and stores the
// "sub" claim in ctx.Locals("subject"). An empty secret rejects every request.
func JwtMiddleware(secret string) fiber.Handler {
	key := []byte(secret)
	return func(ctx *fiber.Ctx) error {
		if len(key) == 0 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("UNAUTHORIZED", "Admin access disabled"))
		}

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("UNAUTHORIZED", "Missing token"))
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("UNAUTHORIZED", "Invalid token"))
		}

		subject, err := token.Claims.GetSubject()
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("UNAUTHORIZED", "Invalid claims"))
		}

		ctx.Locals("subject", subject)
		return ctx.Next()
	}
}
