// Package server assembles the Fiber application.
package server

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/redis/go-redis/v9"

	"img2pdf/internal/config"
	"img2pdf/internal/http/handlers"
	"img2pdf/internal/http/middleware"
	"img2pdf/internal/infra/cache"
	"img2pdf/internal/infra/logging"
	"img2pdf/internal/infra/ratelimit"
	"img2pdf/web"
)

// Deps are the runtime dependencies of the server.
type Deps struct {
	Config config.Config
	// Redis backs the PDF cache. Nil disables caching.
	Redis *redis.Client
	// LimiterStore overrides the limiter storage. When nil and the limiter
	// is enabled, one is built from the cache section of Config.
	LimiterStore fiber.Storage
}

// New creates and configures the Fiber app.
func New(d Deps) *fiber.App {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimitBytes(),
		ErrorHandler:          errorHandler,
	})

	store := d.LimiterStore
	if store == nil && cfg.RateLimiter.EnableUserLimiter && cfg.RateLimiter.UserLimit > 0 {
		store = ratelimit.NewStore(ratelimit.RedisConfig{
			Addr: cfg.Cache.RedisHost,
			DB:   cfg.Cache.RateLimitDB,
		})
	}
	middleware.Register(app, cfg, store)

	var pdfCache *cache.PDFCache
	if cfg.Cache.PDFCacheEnabled {
		pdfCache = cache.New(d.Redis, cfg.Cache.PDFCacheTTL)
	}
	registerRoutes(app, handlers.NewConversionService(cfg, pdfCache))

	// Everything unmatched gets a JSON 404.
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

func registerRoutes(app *fiber.App, svc *handlers.ConversionService) {
	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.Send(web.Index())
	})
	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(web.Static()),
	}))

	app.Post("/upload", svc.HandleUpload)
	app.Post("/estimate-size", svc.HandleEstimate)

	app.Get("/monitor", monitor.New())
}

// errorHandler renders every failure as {"error": "<message>"}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		logging.Error("Unhandled request error", "path", c.Path(), "error", err)
	}

	logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

	return c.Status(code).JSON(fiber.Map{"error": msg})
}
