package auth

import (
	"fmt"
	"slices"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const claimsKey = "auth_claims"

// AuthMiddleware validates bearer tokens and guards routes by permission.
type AuthMiddleware struct {
	verifier *Verifier
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier *Verifier, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// Require rejects requests whose token does not grant permission. It panics
// when permission is not one of Permissions, so a mistyped scope fails at
// route registration.
func (m *AuthMiddleware) Require(permission string) fiber.Handler {
	if !slices.Contains(Permissions(), permission) {
		panic(fmt.Sprintf("auth: unknown permission %q", permission))
	}
	return func(c *fiber.Ctx) error {
		claims, err := m.verifier.Verify(c.UserContext(), c.Get(fiber.HeaderAuthorization), permission)
		if err != nil {
			m.logger.Debug("authorization failed",
				zap.Int("kind", int(KindOf(err))),
				zap.String("permission", permission),
				zap.String("path", c.Path()),
				zap.Error(err))
			return err
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFromContext retrieves the verified claims of the caller.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
