package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"archive_backend/internals/features/records/model"
)

// kindParam resolves :kind; unknown kinds are a 404 like any unknown path.
func kindParam(c *fiber.Ctx) (*model.KindSpec, error) {
	spec, ok := model.LookupKind(c.Params("kind"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "unknown subject kind")
	}
	return spec, nil
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params("id")), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func kindAndID(c *fiber.Ctx) (*model.KindSpec, uint, error) {
	spec, err := kindParam(c)
	if err != nil {
		return nil, 0, err
	}
	id, err := idParam(c)
	if err != nil {
		return nil, 0, err
	}
	return spec, id, nil
}
