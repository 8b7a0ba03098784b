package controller

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"archive_backend/internals/configs"
	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/service"
	helper "archive_backend/internals/helpers"
)

type AdminController struct {
	Admin *service.AdminService
	Cfg   configs.Config
}

func NewAdminController(admin *service.AdminService, cfg configs.Config) *AdminController {
	return &AdminController{Admin: admin, Cfg: cfg}
}

// DELETE /api/subjects/:kind/:id (mounted behind the development-only gate)
func (ctrl *AdminController) DeleteSubject(c *fiber.Ctx) error {
	spec, id, err := kindAndID(c)
	if err != nil {
		return err
	}
	if err := ctrl.Admin.DeleteSubject(c.UserContext(), spec, id); err != nil {
		return err
	}
	return helper.JsonSuccess(c, fiber.StatusOK, fiber.Map{"deleted": id})
}

// POST /api/admin/clean
func (ctrl *AdminController) Clean(c *fiber.Ctx) error {
	if ctrl.Cfg.IsProduction() {
		return helper.JsonError(c, fiber.StatusForbidden, "not available in production")
	}
	var body dto.CleanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if !secretMatches(ctrl.Cfg.AdminCleanSecret, body.Secret) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "invalid secret")
	}
	if err := ctrl.Admin.Clean(c.UserContext()); err != nil {
		return err
	}
	return helper.JsonSuccess(c, fiber.StatusOK, fiber.Map{"message": "database cleaned"})
}

// secretMatches fails closed when no secret is configured.
func secretMatches(want, got string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
