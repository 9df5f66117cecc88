package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/pkg/errorutil"
)

// RequireCapability ensures the authenticated caller's role grants the
// capability. Capabilities come from the static role table in domain.
func RequireCapability(capability domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return errorutil.NewUnauthorized("authentication required")
		}
		if !principal.Role.Can(capability) {
			return errorutil.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
