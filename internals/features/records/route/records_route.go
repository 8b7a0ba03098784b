package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"archive_backend/internals/configs"
	recordController "archive_backend/internals/features/records/controller"
	recordService "archive_backend/internals/features/records/service"
	helperOSS "archive_backend/internals/helpers/oss"
	"archive_backend/internals/metrics"
	"archive_backend/internals/middlewares"
)

type Deps struct {
	DB      *gorm.DB
	Store   helperOSS.BlobStore
	Cfg     configs.Config
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// RecordRoutes mounts submissions, reads, search, field fills, uploads and the dev endpoints under api.
func RecordRoutes(api fiber.Router, d Deps) {
	log := d.Log.Named("records")

	files := recordService.NewFileService(d.Store, d.Cfg.WebPEnabled, log)
	submissions := recordService.NewSubmissionService(d.DB, files, d.Metrics, log)
	media := recordService.NewMediaService(d.DB, files, d.Metrics, log)
	query := recordService.NewQueryService(d.DB)
	fills := recordService.NewFieldUpdateService(d.DB, d.Metrics, log)
	admin := recordService.NewAdminService(d.DB, files, log)

	submitCtrl := recordController.NewSubmissionController(submissions, media)
	subjectCtrl := recordController.NewSubjectController(query)
	fillCtrl := recordController.NewFieldUpdateController(fills)
	adminCtrl := recordController.NewAdminController(admin, d.Cfg)
	uploadCtrl := recordController.NewUploadController(files)

	writes := middlewares.WriteRateLimiter()

	api.Post("/submissions/:kind", writes, submitCtrl.Submit)
	api.Post("/uploads/presign", writes, uploadCtrl.Presign)

	subjects := api.Group("/subjects")
	subjects.Get("/:kind", subjectCtrl.List)
	subjects.Get("/:kind/:id", subjectCtrl.Get)
	subjects.Post("/:kind/:id/media", writes, submitCtrl.AddMedia)
	subjects.Delete("/:kind/:id", middlewares.DevOnly(d.Cfg.IsDevelopment()), adminCtrl.DeleteSubject)

	api.Get("/search", subjectCtrl.Search)
	api.Get("/search/advanced", subjectCtrl.AdvancedSearch)

	api.Post("/field-updates", fillCtrl.Fill)

	api.Post("/admin/clean", adminCtrl.Clean)
}
