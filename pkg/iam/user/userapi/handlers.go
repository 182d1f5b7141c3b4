// Package userapi exposes the role-gated user routes.
package userapi

import (
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Role sets, most to least restrictive
var (
	AdminOnly        = []kernel.Role{kernel.RoleAdmin}
	AdminOrManager   = []kernel.Role{kernel.RoleAdmin, kernel.RoleManager}
	AnyAuthenticated = []kernel.Role{kernel.RoleAdmin, kernel.RoleManager, kernel.RoleUser}
)

// UserHandlers serves /api/users
type UserHandlers struct {
	mw *auth.TokenMiddleware
}

func NewUserHandlers(mw *auth.TokenMiddleware) *UserHandlers {
	return &UserHandlers{mw: mw}
}

// RegisterRoutes mounts the role-gated routes on router (normally /api/users)
func (h *UserHandlers) RegisterRoutes(router fiber.Router) {
	router.Get("/admin", h.mw.Authenticate(), h.mw.Authorize(AdminOnly...), message("Admin route accessed successfully!"))
	router.Get("/manager", h.mw.Authenticate(), h.mw.Authorize(AdminOrManager...), message("Manager route accessed successfully!"))
	router.Get("/user", h.mw.Authenticate(), h.mw.Authorize(AnyAuthenticated...), message("User route accessed successfully!"))
}

func message(text string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": text})
	}
}
