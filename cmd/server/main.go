package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sharemarket-backend/internal/config"
	"sharemarket-backend/internal/database"
	"sharemarket-backend/internal/handler"
	"sharemarket-backend/internal/middleware"
	"sharemarket-backend/internal/repository"
	"sharemarket-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	listingRepo := repository.NewListingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	historyRepo := repository.NewUsernameHistoryRepository(db)
	feeRepo := repository.NewFeeRepository(db)

	// Services
	wsHub := service.NewWSHub()
	dispatcher := service.NewDispatcher(notifRepo, wsHub)
	identitySvc := service.NewIdentityService(userRepo, historyRepo)
	authSvc := service.NewAuthService(userRepo, sessionRepo, identitySvc, dispatcher, cfg.JWTSecret)
	listingSvc := service.NewListingService(listingRepo, companyRepo, feeRepo, dispatcher)
	negotiationSvc := service.NewNegotiationService(listingRepo, dispatcher)
	notifSvc := service.NewNotificationService(notifRepo)

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// Health
	healthH := handler.NewHealthHandler(db)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Auth (public)
	authH := handler.NewAuthHandler(authSvc)
	auth := v1.Group("/auth")
	auth.Post("/register", middleware.RateLimit(5, time.Minute), authH.Register)
	auth.Post("/login", middleware.RateLimit(10, time.Minute), authH.Login)
	auth.Post("/refresh", middleware.RateLimit(20, time.Minute), authH.Refresh)
	auth.Post("/logout", authH.Logout)

	// Admin — registered BEFORE the protected catch-all group
	companyH := handler.NewCompanyHandler(companyRepo)
	adminH := handler.NewAdminHandler(userRepo, feeRepo, wsHub)
	admin := v1.Group("/admin", middleware.AdminKey(cfg.AdminKey))
	admin.Get("/stats", adminH.Stats)
	admin.Post("/companies", companyH.Create)

	// JWT-protected routes (catch-all — must be LAST)
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret))

	// Users
	userH := handler.NewUserHandler(identitySvc, userRepo, historyRepo)
	protected.Get("/me", userH.Me)
	protected.Put("/me/username", userH.ChangeUsername)
	protected.Get("/me/username-history", userH.UsernameHistory)
	protected.Get("/users/username-availability", userH.UsernameAvailability)
	protected.Get("/users/:id/profile", userH.GetProfile)

	// Companies
	protected.Get("/companies", companyH.List)
	protected.Get("/companies/:id", companyH.GetByID)

	// Listings + negotiation
	listingH := handler.NewListingHandler(listingSvc, negotiationSvc)
	listings := protected.Group("/listings")
	listings.Get("/", listingH.Search)
	listings.Post("/", listingH.Create)
	listings.Get("/:id", listingH.GetByID)
	listings.Patch("/:id", listingH.Update)
	listings.Delete("/:id", listingH.Delete)
	listings.Post("/:id/boost", listingH.Boost)
	listings.Post("/:id/bids", listingH.PlaceBid)
	listings.Post("/:id/bids/:bidId/accept", listingH.AcceptBid)
	listings.Post("/:id/bids/:bidId/reject", listingH.RejectBid)
	listings.Post("/:id/bids/:bidId/counter", listingH.CounterBid)
	protected.Get("/my-listings", listingH.MyListings)

	// Notifications
	notifH := handler.NewNotificationHandler(notifSvc)
	protected.Get("/notifications", notifH.List)
	protected.Put("/notifications/read-all", notifH.MarkAllRead)
	protected.Put("/notifications/:id/read", notifH.MarkRead)

	// WebSocket
	wsH := handler.NewWSHandler(wsHub, authSvc)
	app.Get("/ws", wsH.Upgrade)

	// Background workers
	go wsHub.Run()
	go dispatcher.Run()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("Share marketplace backend running on :%s (%s)", cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	_ = app.ShutdownWithTimeout(5 * time.Second)
	dispatcher.Shutdown()
	wsHub.Shutdown()
	log.Println("Server stopped")
}
