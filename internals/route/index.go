// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"archive_backend/internals/configs"
	prefillRoutes "archive_backend/internals/features/prefill/route"
	prefillService "archive_backend/internals/features/prefill/service"
	recordRoutes "archive_backend/internals/features/records/route"
	helper "archive_backend/internals/helpers"
	helperOSS "archive_backend/internals/helpers/oss"
	"archive_backend/internals/metrics"
	"archive_backend/internals/middlewares"
	"archive_backend/internals/middlewares/logger"
)

// RequestTimeout matches the postgres statement_timeout.
const RequestTimeout = 5 * time.Second

// BodyLimit covers a submission with several raw photos.
const BodyLimit = 64 << 20

type Deps struct {
	Cfg     configs.Config
	DB      *gorm.DB
	Store   helperOSS.BlobStore
	Metrics *metrics.Metrics
	Log     *zap.Logger
	Prefill *prefillService.TwitterService
}

// NewApp builds the fiber app with every middleware and route mounted.
func NewApp(d Deps) *fiber.App {
	started := time.Now()
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Prefill == nil {
		d.Prefill = prefillService.NewTwitterService(prefillService.Options{
			SyndicationBaseURL: d.Cfg.SyndicationBaseURL,
			ProfileBaseURL:     d.Cfg.ProfileBaseURL,
		}, d.Metrics, d.Log)
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		BodyLimit:               BodyLimit,
		ErrorHandler:            helper.ErrorHandler(d.Log),
		// X-Forwarded-For is honoured only from listed proxies; c.IP() keys the fill limit.
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          d.Cfg.TrustedProxies,
		EnableIPValidation:      true,
		ReadTimeout:             15 * time.Second,
		WriteTimeout:            30 * time.Second,
		IdleTimeout:             90 * time.Second,
	})

	app.Use(d.Metrics.Middleware())
	app.Use(logger.LoggerMiddleware(d.Log.Named("http")))
	app.Use(middlewares.RecoveryMiddleware(d.Log))
	app.Use(middlewares.CorsMiddleware(d.Cfg.CorsOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(middlewares.GlobalRateLimiter())
	app.Use(middlewares.RequestTimeout(RequestTimeout, middlewares.IsMultipart))

	BaseRoutes(app, d.DB, d.Metrics, d.Cfg, started)

	api := app.Group("/api")
	recordRoutes.RecordRoutes(api, recordRoutes.Deps{
		DB:      d.DB,
		Store:   d.Store,
		Cfg:     d.Cfg,
		Metrics: d.Metrics,
		Log:     d.Log,
	})
	prefillRoutes.PrefillRoutes(api, d.Prefill)

	app.Use(func(c *fiber.Ctx) error {
		return helper.JsonError(c, fiber.StatusNotFound, "route not found")
	})
	return app
}
