package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"grivyzom/internal/config"
	"grivyzom/internal/http/handlers"
	"grivyzom/internal/jobs"
	applog "grivyzom/internal/log"
	"grivyzom/internal/repos"
	"grivyzom/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth publishes login/logout snapshots on the bus; the grovs service
	// listens. Traffic flows one way only.
	bus := EventBus.New()
	userRepo := repos.NewUserRepo(db)
	authSvc := services.NewAuthService(userRepo, bus, cfg.TokenSecret)

	deps := handlers.NewDeps(db, cfg, authSvc)
	if err := deps.Grovs.SubscribeAuth(bus); err != nil {
		log.Fatal(err)
	}

	// Background sweeps: event statuses and offer expiry.
	sched := jobs.New(repos.NewEventRepo(db), repos.NewOfferRepo(db))
	if err := sched.Start(); err != nil {
		log.Fatal(err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "error": "something went wrong"})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/v1/status")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			// Safe methods carry no state change.
			return c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "security check failed"})
		},
	}))

	// ---------- Routes ----------
	api := app.Group("/api/v1")

	// Auth
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "error": "too many attempts, try again later"})
		},
	})
	api.Post("/auth/login", loginLimiter, deps.AuthHandler.Login)
	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/logout", deps.AuthHandler.Logout)
	api.Get("/auth/me", handlers.RequireUser(authSvc), deps.AuthHandler.Me)
	api.Post("/auth/reset/request", loginLimiter, deps.AuthHandler.RequestReset)
	api.Post("/auth/reset", deps.AuthHandler.ResetPassword)

	// Store
	api.Get("/store/products", deps.StoreHandler.Products)
	api.Get("/store/products/:id", deps.StoreHandler.Product)
	api.Get("/store/categories", deps.StoreHandler.Categories)
	api.Get("/store/offers", deps.StoreHandler.Offers)
	api.Get("/status", deps.StoreHandler.ServerStatus)

	// Cart
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart/items", deps.CartHandler.Add)
	api.Put("/cart/items/:productId", deps.CartHandler.UpdateQuantity)
	api.Delete("/cart/items/:productId", deps.CartHandler.Remove)
	api.Delete("/cart", deps.CartHandler.Clear)
	api.Post("/cart/checkout", deps.CartHandler.Checkout)
	api.Post("/cart/checkout/confirm", deps.CartHandler.Confirm)
	api.Post("/cart/checkout/grovs", handlers.RequireUser(authSvc), deps.CartHandler.CheckoutWithGrovs)

	// Grovs
	grovs := api.Group("/grovs", handlers.RequireUser(authSvc))
	grovs.Get("/balance", deps.GrovsHandler.Balance)
	grovs.Post("/daily", limiter.New(limiter.Config{Max: 10, Expiration: time.Minute}), deps.GrovsHandler.ClaimDaily)
	grovs.Post("/events/:id/complete", deps.GrovsHandler.CompleteEvent)
	grovs.Get("/transactions", deps.GrovsHandler.Transactions)
	grovs.Get("/afford", deps.GrovsHandler.CanAfford)

	// Calendar
	api.Get("/events/calendar", deps.EventHandler.Month)
	api.Get("/events/upcoming", deps.EventHandler.Upcoming)
	api.Get("/events/categories", deps.EventHandler.Categories)
	api.Get("/events/date/:date", deps.EventHandler.ForDate)
	api.Get("/events/:id", deps.EventHandler.Detail)

	// Forum
	api.Get("/gallery/categories", deps.GalleryHandler.Categories)
	api.Get("/gallery/images", deps.GalleryHandler.Images)
	api.Get("/gallery/images/:id", deps.GalleryHandler.Image)

	api.Get("/forum/posts", deps.ForumHandler.List)
	api.Get("/forum/categories", deps.ForumHandler.Categories)
	api.Get("/forum/posts/:slug", deps.ForumHandler.Detail)
	api.Get("/forum/top", deps.ForumHandler.TopContributors)
	forum := api.Group("/forum", handlers.RequireUser(authSvc))
	forum.Post("/posts", deps.ForumHandler.Create)
	forum.Post("/posts/:id/like", deps.ForumHandler.Like)
	forum.Post("/posts/:id/comments", deps.ForumHandler.Comment)

	// Admin
	admin := api.Group("/admin", handlers.RequireStaff(authSvc))
	admin.Post("/products", deps.AdminHandler.CreateProduct)
	admin.Get("/products/draft", deps.AdminHandler.LoadDraft)
	admin.Put("/products/draft", deps.AdminHandler.SaveDraft)
	admin.Delete("/products/draft", deps.AdminHandler.DiscardDraft)
	admin.Put("/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Delete("/products/:id", deps.AdminHandler.DeleteProduct)
	admin.Get("/offers", deps.AdminHandler.ListOffers)
	admin.Post("/offers", deps.AdminHandler.CreateOffer)
	admin.Put("/offers/:id", deps.AdminHandler.UpdateOffer)
	admin.Delete("/offers/:id", deps.AdminHandler.DeleteOffer)
	admin.Post("/events", deps.AdminHandler.CreateEvent)
	admin.Put("/events/:id", deps.AdminHandler.UpdateEvent)
	admin.Delete("/events/:id", deps.AdminHandler.DeleteEvent)
	admin.Get("/orders", deps.AdminHandler.ListOrders)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/grovs/stats", deps.AdminHandler.GrovsStats)
	admin.Get("/grovs/users/:id", deps.AdminHandler.UserGrovs)
	admin.Post("/grovs/adjust", deps.AdminHandler.AdjustGrovs)
	admin.Get("/users", deps.AdminHandler.ListUsers)
	admin.Post("/users/:id/role", deps.AdminHandler.UpdateUserRole)
	admin.Post("/users/:id/delete", deps.AdminHandler.DeleteUser)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
