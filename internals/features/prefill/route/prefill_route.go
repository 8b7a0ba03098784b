package routes

import (
	"github.com/gofiber/fiber/v2"

	prefillController "archive_backend/internals/features/prefill/controller"
	prefillService "archive_backend/internals/features/prefill/service"
)

func PrefillRoutes(api fiber.Router, tw *prefillService.TwitterService) {
	ctrl := prefillController.NewPrefillController(tw)

	g := api.Group("/prefill")
	g.Get("/tweet", ctrl.Tweet)
	g.Get("/profile", ctrl.Profile)
}
