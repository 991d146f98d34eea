package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middlewares
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/shoe-workshop/internal/config"     // Internal config loader
	"github.com/iliyamo/shoe-workshop/internal/database"   // MySQL connection and schema
	"github.com/iliyamo/shoe-workshop/internal/handler"    // HTTP handlers
	"github.com/iliyamo/shoe-workshop/internal/middleware" // rate limiting
	"github.com/iliyamo/shoe-workshop/internal/queue"      // order activity events
	"github.com/iliyamo/shoe-workshop/internal/repository" // data access
	"github.com/iliyamo/shoe-workshop/internal/router"     // Internal router setup
	"github.com/iliyamo/shoe-workshop/internal/service"    // business logic
)

var logLevels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

func main() {
	cfg := config.Load() // Load environment config

	lvl, ok := logLevels[cfg.LogLevel]
	if !ok {
		lvl = log.INFO
	}
	log.SetLevel(lvl) // package logger used by the background workers

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	// ---- Events ----
	var events service.EventPublisher = service.NopPublisher{}
	if cfg.Events.Enabled {
		pub := queue.NewPublisher(cfg.Events.URL, cfg.Events.Queue, 0)
		go pub.Run(ctx)
		consumer := &queue.Consumer{URL: cfg.Events.URL, Queue: cfg.Events.Queue, LogPath: cfg.Events.LogPath}
		go consumer.Run(ctx)
		events = pub
	}

	// ---- Repositories and services ----
	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	batches := repository.NewBatchRepo(db)
	items := repository.NewInventoryRepo(db)
	orders := repository.NewOrderRepo(db)
	payments := repository.NewPaymentRepo(db)
	logs := repository.NewWorkerLogRepo(db)

	authz, err := service.NewAuthorizer()
	if err != nil {
		log.Fatalf("authz: %v", err)
	}
	qr, err := service.NewQRGenerator(cfg.QR)
	if err != nil {
		log.Fatalf("qr: %v", err)
	}
	orderSvc := service.NewOrderService(db, orders, items, payments, logs, events)

	// ---- HTTP ----
	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Logger.SetLevel(lvl)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	} else {
		e.Use(echomw.CORS())
	}

	// the limiter is mounted per route after JWTAuth so user keyed
	// strategies see the caller
	guard := router.Guard{
		JWTSecret: cfg.JWTSecret,
		Perms:     authz,
		Limit:     middleware.RateLimit(cfg.RateLimit, rateLimitClient(cfg.RateLimit)),
	}
	router.RegisterRoutes(e, handler.Health(db), handler.NewQRHandler(qr), guard)
	router.RegisterAuth(e,
		handler.NewAuthHandler(users, authz, service.NewDashboard(users, orders, items, payments), cfg.JWTSecret, cfg.AccessTTL),
		handler.NewProtectedHandler(users, items, orderSvc),
		guard)
	router.RegisterInventory(e, handler.NewInventoryHandler(service.NewInventoryService(items)), guard)
	router.RegisterSales(e, handler.NewSalesHandler(orderSvc), guard)
	router.RegisterWorkerLogs(e, handler.NewWorkerLogHandler(logs), guard)
	router.RegisterManagement(e,
		handler.NewRoleHandler(roles),
		handler.NewBatchHandler(batches),
		handler.NewWorkerHandler(users, cfg.BcryptCost),
		guard)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		e.Logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("shutdown: %v", err)
	}
}

// rateLimitClient connects to Redis only when the limiter is enabled.  A
// nil client turns the middleware into a pass-through.
func rateLimitClient(cfg config.RateLimitConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("rate limit: redis unreachable, limiter disabled")
	}
	return rdb
}
