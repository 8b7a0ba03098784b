package controller

import (
	"github.com/gofiber/fiber/v2"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/service"
	helper "archive_backend/internals/helpers"
)

type FieldUpdateController struct {
	Fills *service.FieldUpdateService
}

func NewFieldUpdateController(fills *service.FieldUpdateService) *FieldUpdateController {
	return &FieldUpdateController{Fills: fills}
}

// POST /api/field-updates
func (ctrl *FieldUpdateController) Fill(c *fiber.Ctx) error {
	in, err := dto.ReadInput(c)
	if err != nil {
		return err
	}
	req, err := dto.BindFieldUpdate(in)
	if err != nil {
		return err
	}
	res, err := ctrl.Fills.Fill(c.UserContext(), req, c.IP())
	if err != nil {
		return err
	}
	return helper.JsonOK(c, res)
}
