package serverutils

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
)

// tokenCache keeps recently verified token -> user_id resolutions so hot
// clients don't pay signature verification on every request. An entry
// never outlives the token's own exp claim.
const tokenCacheTTL = 2 * time.Minute

var tokenCache = gocache.New(tokenCacheTTL, 5*time.Minute)

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}
	tokenStr := authHeader[7:]

	if userId, found := tokenCache.Get(tokenStr); found {
		ctx.Locals("user_id", userId)
		return ctx.Next()
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
	}

	userId, ok := claims["user_id"].(string)
	if !ok || userId == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
	}

	// Cap the cache entry at the token's remaining lifetime, so an
	// expired token is re-parsed (and rejected) instead of served.
	ttl := tokenCacheTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if until := time.Until(exp.Time); until < ttl {
			ttl = until
		}
	}
	if ttl > 0 {
		tokenCache.Set(tokenStr, userId, ttl)
	}

	ctx.Locals("user_id", userId)
	return ctx.Next()
}
