package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hotel-admin-backend/config"
	"hotel-admin-backend/controllers"
	"hotel-admin-backend/routes"
	"hotel-admin-backend/services"
	"hotel-admin-backend/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	// Connect database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	// Process timezone for all auto-checkout time math
	tzName := utils.EnvOrDefault("TIME_ZONE", "Asia/Bangkok")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatalf("❌ Invalid TIME_ZONE %q: %v", tzName, err)
	}

	// Initialize services
	settingsService := services.NewSettingsService(db)
	bookingService := services.NewBookingService(db)
	roomService := services.NewRoomService(db)
	checkoutService := services.NewAutoCheckoutService(db, settingsService, loc)

	// Initialize controllers
	bookingController := controllers.NewBookingController(bookingService, checkoutService)
	roomController := controllers.NewRoomController(roomService)
	settingsController := controllers.NewSettingsController(settingsService)
	autoCheckoutController := controllers.NewAutoCheckoutController(checkoutService)

	// Build router
	router := routes.SetupRouter(bookingController, roomController, settingsController, autoCheckoutController)

	// Scheduler: poll the job every few minutes; it self-gates on the
	// configured time-of-day and grace window.
	pollMinutes, err := strconv.Atoi(utils.EnvOrDefault("AUTO_CHECKOUT_POLL_MINUTES", "5"))
	if err != nil || pollMinutes <= 0 {
		pollMinutes = 5
	}
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	scheduler := services.NewScheduler(checkoutService, time.Duration(pollMinutes)*time.Minute)
	go scheduler.Start(schedCtx)
	log.Printf("✅ Auto-checkout scheduler started (every %d min, tz %s)", pollMinutes, tzName)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
		// useful timeouts
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
