package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/payments"
	"storefront/internal/store"
)

func main() {
	config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		logger.Fatal("mongodb connection failed", zap.Error(err))
	}

	db := client.Database(config.AppEnv.DBName)
	logger.Info("mongodb connected", zap.String("database", db.Name()))

	if err := database.EnsureOrderIndexes(db); err != nil {
		logger.Fatal("order index bootstrap failed", zap.Error(err))
	}

	orders := store.NewMongoStore(db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	publicLimiter := middleware.NewRateLimiter(rate.Limit(10), 20)
	r.Use(publicLimiter.Middleware())

	r.POST("/orders", handlers.CreateOrder(orders, config.AppEnv.JWTSecret, logger))
	r.GET("/orders/tracking/:trackingNumber", handlers.TrackOrder(orders, logger))

	r.POST("/admin/login", handlers.AdminLogin(
		orders,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		logger,
	))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/orders", handlers.ListOrders(orders, logger))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(orders, logger))
	}

	if config.AppEnv.StripeSecretKey != "" {
		provider, err := payments.NewStripeProvider(config.AppEnv.StripeSecretKey, logger)
		if err != nil {
			logger.Fatal("stripe provider init failed", zap.Error(err))
		}
		r.POST("/payment/checkout-session", handlers.CreateCheckoutSession(
			provider,
			config.AppEnv.CheckoutCurrency,
			logger,
		))
		r.POST("/payment/webhook", handlers.StripeWebhook(
			orders,
			config.AppEnv.StripeWebhookSecret,
			logger,
		))
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, payment routes disabled")
	}

	srv := &http.Server{
		Addr:    config.AppEnv.ListenAddr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", zap.String("addr", config.AppEnv.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := database.Disconnect(client); err != nil {
		logger.Error("mongodb disconnect failed", zap.Error(err))
	}
	logger.Info("stopped")
}
