package utils

import (
	"fmt"
	"time"

	"meetup_chat/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken signs a token carrying the user id. Identity is issued
// elsewhere; this exists for local tooling and tests.
func GenerateToken(secret string, userID uint, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(message, models.ErrorDetail{
		Code:    "UNAUTHORIZED",
		Message: message,
	}))
}

// AuthMiddleware trusts any token signed with secret and stores its user_id
// claim in c.Locals("user_id") as a uint.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "No Token Provided")
		}

		var tokenString string
		fmt.Sscanf(authHeader, "Bearer %s", &tokenString)

		if tokenString == "" {
			return unauthorized(c, "Token format is invalid")
		}

		// jwt/v5 validates "exp" while parsing.
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			return unauthorized(c, "Token is invalid")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, "Invalid token claims")
		}

		// JSON numbers decode as float64
		userIDFloat, ok := claims["user_id"].(float64)
		if !ok || userIDFloat < 1 {
			return unauthorized(c, "Invalid token claims")
		}
		c.Locals("user_id", uint(userIDFloat))

		return c.Next()
	}
}

// CurrentUserID returns the caller id set by AuthMiddleware.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("user_id").(uint)
	return userID, ok && userID != 0
}
