package handlers

import (
	"strings"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/middleware"
	"github.com/gbonee/hustle-vibes-africa-sub000/services"
	"github.com/gbonee/hustle-vibes-africa-sub000/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Deps struct {
	Log            *logger.Logger
	GatewayToken   string
	AllowedOrigins []string
	// nil leaves /leaderboard/stream unmounted
	TokenValidator middleware.TokenValidator

	Catalog     *services.CatalogService
	Progress    *services.ProgressService
	Leaderboard *services.LeaderboardService
	Badges      *services.BadgeService
	Challenges  *services.ChallengeService
	Videos      *services.VideoService
	Chat        *services.ChatService
}

// NewApp builds the fiber app with every route. All requests must come
// through the gateway; /s/ routes also need the forwarded user context.
func NewApp(d Deps) *fiber.App {
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		// credentials cannot be combined with a wildcard origin
		origins = []string{"http://localhost:3000"}
	}

	app := fiber.New(fiber.Config{
		BodyLimit: int(utils.MaxVideoSize) + 10*1024*1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, Cache-Control, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(middleware.RequestLogger(d.Log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// the stream is opened by browsers directly, so it authenticates by query token
	sseAuth := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "streaming disabled"})
	}
	if d.TokenValidator != nil {
		sseAuth = middleware.SSEAuthMiddleware(d.TokenValidator, d.Log)
	}
	app.Get("/leaderboard/stream", sseAuth, func(c *fiber.Ctx) error {
		return d.Leaderboard.StreamLeaderboardSSE(c, currentUser(c))
	})

	app.Use(middleware.GatewayAuthMiddleware(d.GatewayToken, d.Log))

	secured := app.Group("/s", middleware.UserContextMiddleware(d.Log))
	admin := secured.Group("/admin", middleware.RequireRole("admin", d.Log))

	SetupCourseRoutes(app, admin, d.Catalog, d.Videos)
	SetupLeaderboardRoutes(app, secured, admin, d.Leaderboard)
	SetupProgressRoutes(secured, d.Progress, d.Badges)
	SetupChallengeRoutes(secured, admin, d.Challenges)
	SetupChatRoutes(secured, d.Chat)

	return app
}
