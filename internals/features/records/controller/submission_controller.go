package controller

import (
	"github.com/gofiber/fiber/v2"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/service"
	helper "archive_backend/internals/helpers"
)

type SubmissionController struct {
	Submissions *service.SubmissionService
	Media       *service.MediaService
}

func NewSubmissionController(submissions *service.SubmissionService, media *service.MediaService) *SubmissionController {
	return &SubmissionController{Submissions: submissions, Media: media}
}

// POST /api/submissions/:kind
// Validation runs before any file is touched, so a 400 leaves no objects behind.
func (ctrl *SubmissionController) Submit(c *fiber.Ctx) error {
	spec, err := kindParam(c)
	if err != nil {
		return err
	}
	in, err := dto.ReadInput(c)
	if err != nil {
		return err
	}
	req, err := dto.BindCreate(spec.Kind, in)
	if err != nil {
		return err
	}
	files, err := dto.BindFiles(in)
	if err != nil {
		return err
	}

	subject, err := ctrl.Submissions.Submit(c.UserContext(), spec, req, files)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, fiber.Map{
		"id":   subject.GetID(),
		"uuid": subject.GetUUID(),
	})
}

// POST /api/subjects/:kind/:id/media
func (ctrl *SubmissionController) AddMedia(c *fiber.Ctx) error {
	spec, id, err := kindAndID(c)
	if err != nil {
		return err
	}
	in, err := dto.ReadInput(c)
	if err != nil {
		return err
	}
	files, err := dto.BindFiles(in)
	if err != nil {
		return err
	}

	n, err := ctrl.Media.AddMedia(c.UserContext(), spec, id, files)
	if err != nil {
		return err
	}
	return helper.JsonSuccess(c, fiber.StatusOK, fiber.Map{"files_uploaded": n})
}
