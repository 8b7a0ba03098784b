package controller

import (
	"github.com/gofiber/fiber/v2"

	prefillService "archive_backend/internals/features/prefill/service"
	helper "archive_backend/internals/helpers"
)

type PrefillController struct {
	Twitter *prefillService.TwitterService
}

func NewPrefillController(tw *prefillService.TwitterService) *PrefillController {
	return &PrefillController{Twitter: tw}
}

// GET /api/prefill/tweet?url=
func (ctrl *PrefillController) Tweet(c *fiber.Ctx) error {
	raw := c.Query("url")
	if raw == "" {
		return helper.JsonValidationError(c, "missing required fields: url", map[string]string{"url": "required"})
	}
	p, err := ctrl.Twitter.Tweet(c.UserContext(), raw)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, p)
}

// GET /api/prefill/profile?handle=
func (ctrl *PrefillController) Profile(c *fiber.Ctx) error {
	raw := c.Query("handle")
	if raw == "" {
		return helper.JsonValidationError(c, "missing required fields: handle", map[string]string{"handle": "required"})
	}
	p, err := ctrl.Twitter.Profile(c.UserContext(), raw)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, p)
}
