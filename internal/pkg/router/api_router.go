package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/MiguelBorja/TechTix/app/controllers"
	"github.com/MiguelBorja/TechTix/internal/pkg/cache"
	"github.com/MiguelBorja/TechTix/internal/pkg/env"
	"github.com/MiguelBorja/TechTix/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    newLimiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "TechTix API",
		})
	})

	v1 := api.Group("/v1", middleware.JWTAuthMiddleware())

	auth := v1.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Get("/me", middleware.RequireAuth, controllers.HandleGetMe)

	events := v1.Group("/events")
	events.Get("/", controllers.HandleListEvents)
	events.Get("/:uuid", controllers.HandleGetEvent)

	organizer := v1.Group("/organizer", middleware.RequireOrganizer)
	organizer.Get("/events", controllers.HandleListMyEvents)
	organizer.Post("/events", controllers.HandleCreateEvent)
	organizer.Put("/events/:uuid", controllers.HandleUpdateEvent)
	organizer.Get("/promo-codes", controllers.HandleListMyPromoCodes)
	organizer.Post("/promo-codes", controllers.HandleCreatePromoCode)
	organizer.Delete("/promo-codes/:code", controllers.HandleDeactivatePromoCode)
	organizer.Get("/balance", controllers.HandleGetBalance)
	organizer.Get("/payouts", controllers.HandleListMyPayouts)
	organizer.Post("/payouts", controllers.HandleRequestPayout)

	bookings := v1.Group("/bookings", middleware.RequireAuth)
	bookings.Get("/", controllers.HandleListMyBookings)
	bookings.Post("/", controllers.HandleCreateBooking)
	bookings.Get("/:code", controllers.HandleGetBooking)
	bookings.Delete("/:code", controllers.HandleCancelBooking)

	billing := v1.Group("/billing")
	billing.Get("/plans", controllers.HandleListPlans)
	billing.Post("/checkout", middleware.RequireOrganizer, controllers.HandleStartCheckout)
	billing.Get("/subscription", middleware.RequireAuth, controllers.HandleGetSubscription)
	billing.Delete("/subscription", middleware.RequireAuth, controllers.HandleCancelSubscription)

	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.Get("/events/pending", controllers.HandleAdminListPendingEvents)
	admin.Post("/events/:uuid/approve", controllers.HandleAdminApproveEvent)
	admin.Post("/events/:uuid/reject", controllers.HandleAdminRejectEvent)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Post("/users/:id/ban", controllers.HandleAdminBanUser)
	admin.Post("/users/:id/unban", controllers.HandleAdminUnbanUser)
	admin.Get("/payouts", controllers.HandleAdminListPayouts)
	admin.Put("/payouts/:id", controllers.HandleAdminUpdatePayout)
	admin.Get("/plans", controllers.HandleAdminListPlans)
	admin.Post("/plans", controllers.HandleAdminCreatePlan)
	admin.Put("/plans/:id", controllers.HandleAdminUpdatePlan)
	admin.Delete("/plans/:id", controllers.HandleAdminDeletePlan)
	admin.Get("/reports/financial", controllers.HandleAdminFinancialReport)
}

// newLimiterStorage backs the rate limiter with Redis so limits hold across
// instances. Database 1 keeps limiter keys away from the cache (DB 0).
func newLimiterStorage() *redisstorage.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient := cache.GetClient(); cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
