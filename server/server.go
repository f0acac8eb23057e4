package server

import (
	"strings"
	"time"

	"campusvoice/auth"
	"campusvoice/config"
	"campusvoice/feeds"
	"campusvoice/store"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// The concrete store must satisfy the engine's collaborator contracts.
var (
	_ feeds.IssueStore   = (*store.Store)(nil)
	_ feeds.ProfileStore = (*store.Store)(nil)
	_ feeds.VoteStore    = (*store.Store)(nil)
	_ auth.SessionStore  = (*store.Store)(nil)
	_ auth.ProfileStore  = (*store.Store)(nil)
)

type ServerConfig struct {
	// Engine builds the issue feed
	Engine *feeds.Engine

	// Store backs the non-feed routes (issue detail, comments, reports)
	Store *store.Store

	// Auth resolves bearer tokens to identities
	Auth *auth.Provider

	// Cfg carries the school and category enumerations
	Cfg *config.TomlConfig

	// AllowOrigins configures CORS for the web frontend
	AllowOrigins string
}

// Server returns a fiber.App instance serving the CampusVoice HTTP API.
func Server(cfg *ServerConfig) *fiber.App {
	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		requestDuration.WithLabelValues(c.Method(), c.Route().Path).Observe(elapsed.Seconds())
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": elapsed,
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	allowOrigins := cfg.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3001"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowHeaders:     "Authorization, Content-Type, Cache-Control",
		AllowCredentials: true,
	}))

	// Cache anonymous feed reads only; anything carrying a token or
	// mutating state goes through uncached
	app.Use(cache.New(cache.Config{
		Expiration: 10 * time.Second,
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != fiber.MethodGet {
				return true
			}
			if c.Get(fiber.HeaderAuthorization) != "" {
				return true
			}
			return !strings.HasPrefix(c.Path(), "/api/feed")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Request().URI().String()
		},
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	registerRoutes(app, cfg)

	return app
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	return ""
}
