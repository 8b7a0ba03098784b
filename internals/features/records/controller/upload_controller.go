package controller

import (
	"github.com/gofiber/fiber/v2"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/service"
	helper "archive_backend/internals/helpers"
)

type UploadController struct {
	Files *service.FileService
}

func NewUploadController(files *service.FileService) *UploadController {
	return &UploadController{Files: files}
}

// POST /api/uploads/presign
func (ctrl *UploadController) Presign(c *fiber.Ctx) error {
	var req dto.PresignRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := helper.ValidateStruct(&req); err != nil {
		return err
	}
	out, err := ctrl.Files.Presign(c.UserContext(), req)
	if err != nil {
		return err
	}
	return helper.JsonSuccess(c, fiber.StatusOK, fiber.Map{
		"presigned_url": out.PresignedURL,
		"public_url":    out.PublicURL,
		"key":           out.Key,
	})
}
