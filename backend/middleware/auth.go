package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"rdcshop/backend/config"
	"rdcshop/backend/utils"
)

// Keys under which AuthMiddleware stores the caller in c.Locals.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
	LocalClaims = "claims"
)

// RevocationChecker reports whether a token ID was signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware rejects requests without a valid, unrevoked token.
func AuthMiddleware(cfg *config.Config, revoked RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authenticate(c, cfg, revoked)
	}
}

// OptionalAuth lets anonymous requests through. A request that does carry
// an Authorization header is checked the same way AuthMiddleware checks it.
func OptionalAuth(cfg *config.Config, revoked RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		return authenticate(c, cfg, revoked)
	}
}

func authenticate(c *fiber.Ctx, cfg *config.Config, revoked RevocationChecker) error {
	claims, err := utils.ExtractTokenClaims(c, cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	if revoked != nil {
		gone, err := revoked.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return utils.ServiceUnavailable(c, "Authentication service is temporarily unavailable. Please try again.")
		}
		if gone {
			return utils.Unauthorized(c, "Session has ended, please sign in again")
		}
	}

	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalRole, claims.Role)
	c.Locals(LocalClaims, claims)
	return c.Next()
}

// RequireRole lets through only callers whose token carries one of roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "You do not have access to this resource")
	}
}

// UserID returns the authenticated caller, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}

func Claims(c *fiber.Ctx) *utils.TokenClaims {
	claims, _ := c.Locals(LocalClaims).(*utils.TokenClaims)
	return claims
}
