package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"tiketnow/config"
	"tiketnow/handlers"
	"tiketnow/security"
	"tiketnow/services"
	"tiketnow/utils"
)

func Start() error {
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Redis is optional: without it the cache and rate limit counters live
	// in process memory.
	var (
		redisClient *redis.Client
		cache       utils.Store
	)
	if cfg.RedisURL != "" {
		redisClient, err = utils.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		cache = utils.NewRedisStore(redisClient)
	} else {
		cache = utils.NewMemoryStore()
	}

	// Services
	sheets := services.NewSheetsClient(cfg)
	eventService := services.NewEventService(cfg, sheets, cache)
	purchaseService := services.NewPurchaseService(cfg, sheets, cache)
	statsService := services.NewStatsService()
	authService := services.NewAuthService(cfg)
	qrService := services.NewQRService(cfg)
	whatsappService := services.NewWhatsAppService(cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService, statsService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService, eventService, statsService, qrService, whatsappService)
	dashboardHandler := handlers.NewDashboardHandler(purchaseService, eventService, statsService)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.PurchaseRateLimit)

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		if redisClient != nil {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public endpoints
	e.POST("/api/v1/auth/login", authHandler.Login)
	e.POST("/api/v1/auth/logout", authHandler.Logout)
	e.GET("/api/v1/auth/me", authHandler.Me)
	e.GET("/api/v1/events", eventHandler.List)
	e.POST("/api/v1/purchases", purchaseHandler.Submit, rateLimiter.Middleware())

	// Admin endpoints
	admin := e.Group("/api/v1/admin", authHandler.RequireAuth)
	admin.GET("/events", eventHandler.AdminList)
	admin.POST("/events", eventHandler.Create)
	admin.PUT("/events/:id", eventHandler.Update)
	admin.DELETE("/events/:id", eventHandler.Delete)
	admin.GET("/purchases", purchaseHandler.AdminList)
	admin.POST("/purchases/confirm", purchaseHandler.Confirm)
	admin.GET("/dashboard", dashboardHandler.Get)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigCh:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
