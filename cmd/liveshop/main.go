package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"liveshop/internal/api/handlers"
	"liveshop/internal/config"
	"liveshop/internal/hub"
	"liveshop/internal/infrastructure/mail"
	"liveshop/internal/infrastructure/mysql"
	"liveshop/internal/infrastructure/payment"
	redisstore "liveshop/internal/infrastructure/redis"
	"liveshop/internal/services"
	"liveshop/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().Fatal("Failed to load config", "error", err)
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	log.Info("Starting liveshop server")

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Fatal("Failed to open MySQL", "error", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping MySQL", "error", err)
	}
	log.Info("Connected to MySQL")

	// Initialize repositories and collaborators
	productRepo := mysql.NewMySQLProductRepository(db)
	chatRepo := mysql.NewMySQLChatRepository(db)
	checkoutStore := redisstore.NewRedisCheckoutStore(rdb)
	checkout := payment.NewStripeCheckout(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	mailer := mail.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.AdminAddr)

	// Initialize core components
	catalog := services.NewCatalog(productRepo, log)
	if err := catalog.LoadInitial(ctx); err != nil {
		log.Fatal("Failed to load product catalog", "error", err)
	}

	chatLog := services.NewChatLog(chatRepo, cfg.Chat.HistorySize, log)
	if err := chatLog.LoadInitial(ctx); err != nil {
		log.Fatal("Failed to load chat history", "error", err)
	}

	engine := services.NewAuctionEngine(catalog, log)
	coordinator := hub.New(hub.NewRegistry(), chatLog, catalog, engine, log)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go coordinator.Run(hubCtx)

	sweeper, err := services.NewSweeper(coordinator.Sweep, log)
	if err != nil {
		log.Fatal("Failed to create sweeper", "error", err)
	}
	sweeper.Start()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
	}))

	httpHandlers := handlers.NewHTTPHandlers(coordinator, checkout, checkoutStore,
		mailer, cfg.Upload.Dir, cfg.Stripe.SessionTTL, log)
	wsHandler := handlers.NewWSHandler(coordinator, log)

	e.GET("/ws", wsHandler.HandleConnection)
	e.POST("/create-checkout-session", httpHandlers.CreateCheckoutSession)
	e.POST("/payment-complete", httpHandlers.CompletePayment)
	e.POST("/shipping-info", httpHandlers.ShippingInfo)
	e.POST("/upload-image", httpHandlers.UploadImage)
	e.GET("/health", httpHandlers.Health)
	e.Static("/uploads", cfg.Upload.Dir)

	go func() {
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", "error", err)
		}
	}()
	log.Info("Server started", "address", cfg.Addr())

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	sweeper.Stop()
	stopHub()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server stopped")
}
