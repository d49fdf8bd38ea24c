package main

import (
	"context"
	"log"
	"time"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/clock"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/config"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/payments"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/routes"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Build stores
	clk := clock.System()
	stores := store.NewStores()
	if cfg.SeedDemoData {
		if err := stores.Seed(context.Background(), clk.Now()); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// 3. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	svcs := routes.RegisterRoutes(app, cfg, stores, &payments.StubGateway{}, clk)

	go runNoShowSweep(svcs, cfg.NoShowSweepEvery)

	// 4. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// runNoShowSweep periodically marks bookings that were never checked in as
// no-shows once their class has ended.
func runNoShowSweep(svcs *routes.Services, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		marked, err := svcs.Booking.MarkNoShows(context.Background())
		if err != nil {
			log.Printf("No-show sweep failed: %v", err)
			continue
		}
		if marked > 0 {
			log.Printf("No-show sweep marked %d bookings", marked)
		}
	}
}
