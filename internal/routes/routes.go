package routes

import (
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/clock"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/config"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/handlers"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/middleware"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/payments"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/services"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/store"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/token"
	"github.com/gofiber/fiber/v2"
)

// Services groups the constructed core services so cmd/server can run
// background work (the no-show sweep) against the same instances the
// handlers use.
type Services struct {
	Booking     *services.BookingService
	Marketplace *services.MarketplaceService
	Access      *services.AccessService
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, stores *store.Stores, gateway payments.Gateway, clk clock.Clock) *Services {
	issuer := token.NewIssuer(cfg.CheckInTokenSecret)

	bookingService := services.NewBookingService(stores.Classes, issuer, clk)
	marketplaceService := services.NewMarketplaceService(stores.Products, gateway, clk, cfg.PaymentTimeout)
	accessService := services.NewAccessService(stores.Subscriptions, clk)

	authHandler := handlers.NewAuthHandler(stores.Users, clk, cfg.JWTSecret)
	bookingHandler := handlers.NewBookingHandler(bookingService, accessService)
	marketplaceHandler := handlers.NewMarketplaceHandler(marketplaceService)
	subscriptionHandler := handlers.NewSubscriptionHandler(accessService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	classes := authProtected.Group("/classes")
	classes.Get("", bookingHandler.ListClasses)
	classes.Post("", bookingHandler.CreateClass)
	classes.Get("/:id", bookingHandler.GetClass)

	bookings := authProtected.Group("/bookings")
	bookings.Post("", bookingHandler.BookClass)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Post("/:id/cancel", bookingHandler.CancelBooking)

	authProtected.Post("/checkin", bookingHandler.CheckIn)

	authProtected.Get("/products", marketplaceHandler.ListProducts)

	cart := authProtected.Group("/cart")
	cart.Get("", marketplaceHandler.GetCart)
	cart.Post("/items", marketplaceHandler.AddToCart)
	cart.Put("/items/:productId", marketplaceHandler.UpdateQuantity)
	cart.Delete("/items/:productId", marketplaceHandler.RemoveFromCart)

	authProtected.Post("/checkout", marketplaceHandler.Checkout)

	orders := authProtected.Group("/orders")
	orders.Get("", marketplaceHandler.ListOrders)
	orders.Get("/:id", marketplaceHandler.GetOrder)
	orders.Post("/:id/advance", marketplaceHandler.AdvanceOrder)

	sub := authProtected.Group("/subscription")
	sub.Get("", subscriptionHandler.GetSubscription)
	sub.Post("/upgrade", subscriptionHandler.Upgrade)

	authProtected.Get("/access/:action", subscriptionHandler.CheckAccess)

	return &Services{
		Booking:     bookingService,
		Marketplace: marketplaceService,
		Access:      accessService,
	}
}
