package utils

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"rdcshop/backend/config"
)

const TokenTTL = 72 * time.Hour

// TokenClaims is what a signed session token says about its bearer.
type TokenClaims struct {
	UserID    string
	Role      string
	ID        string
	ExpiresAt time.Time
}

func GenerateJWTToken(userID, role string, cfg *config.Config) (string, *TokenClaims, error) {
	tc := &TokenClaims{
		UserID:    userID,
		Role:      role,
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().Add(TokenTTL),
	}
	claims := jwt.MapClaims{
		"user_id": tc.UserID,
		"role":    tc.Role,
		"jti":     tc.ID,
		"exp":     tc.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, tc, nil
}

func ParseJWTToken(tokenString string, cfg *config.Config) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)

	tc := &TokenClaims{UserID: userID, Role: role, ID: jti}
	if exp, ok := claims["exp"].(float64); ok {
		tc.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return tc, nil
}

// ExtractTokenClaims reads the Authorization header, with or without the
// Bearer prefix, and verifies the token.
func ExtractTokenClaims(c *fiber.Ctx, cfg *config.Config) (*TokenClaims, error) {
	tokenString := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}
	return ParseJWTToken(tokenString, cfg)
}
