package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"bloxmarket/internal/config"
	"bloxmarket/internal/http/handlers"
	applog "bloxmarket/internal/log"
	"bloxmarket/internal/repos"
	"bloxmarket/internal/services"
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

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and answer generically; never leak internals
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal_error",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 4 << 20 // 4 MiB, room for image uploads

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach actor to context if logged in
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
				c.Locals("actor_id", u.ID)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(string(c.Request().URI().Path()), "/media/")
		},
	}))

	// ---------- Media ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /media -> %s", mediaDir)

	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		full := filepath.Join(mediaDir, clean)
		return c.SendFile(full, true)
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc)

	// Auth (login throttled)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, retry later"})
		},
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)

	api := app.Group("/api/v1")

	// Storefront
	api.Get("/search", limiter.New(limiter.Config{Max: 30, Expiration: time.Minute}), deps.SearchHandler.Search)
	api.Get("/categories", deps.ListingHandler.Categories)
	api.Get("/availability", limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), deps.ListingHandler.Availability)
	api.Get("/listings/:id", deps.ListingHandler.Get)

	// Selling
	requireUser := handlers.RequireUser(authSvc)
	api.Post("/listings", requireUser, deps.ListingHandler.Create)
	api.Post("/listings/:id/submit", requireUser, deps.ListingHandler.Submit)
	api.Post("/listings/:id/price", requireUser, deps.ListingHandler.UpdatePrice)
	api.Get("/my/listings", requireUser, deps.ListingHandler.Mine)
	api.Post("/media", requireUser, deps.MediaHandler.Upload)

	// Cart
	api.Post("/cart/price", deps.CartHandler.Price)

	// Watchlist
	api.Get("/watchlist", deps.WatchlistHandler.List)
	api.Post("/watchlist", deps.WatchlistHandler.Save)
	api.Post("/watchlist/delete", deps.WatchlistHandler.Unsave)

	// Transactions
	api.Post("/transactions", requireUser, deps.TransactionHandler.Initiate)
	api.Get("/transactions", requireUser, deps.TransactionHandler.History)
	api.Get("/transactions/:id", requireUser, deps.TransactionHandler.Get)
	api.Get("/transactions/:id/audit", requireUser, deps.TransactionHandler.Audit)
	api.Post("/transactions/:id/capture", requireUser, deps.TransactionHandler.Capture)
	api.Post("/transactions/:id/deliver", requireUser, deps.TransactionHandler.Deliver)
	api.Post("/transactions/:id/confirm", requireUser, deps.TransactionHandler.Confirm)
	api.Post("/transactions/:id/dispute", requireUser, deps.TransactionHandler.Dispute)
	api.Post("/transactions/:id/cancel", requireUser, deps.TransactionHandler.Cancel)

	// Admin
	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/listings/pending", deps.AdminHandler.PendingListings)
	admin.Post("/listings/:id/review", deps.AdminHandler.Review)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
