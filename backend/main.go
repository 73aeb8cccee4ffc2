package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"rdcshop/backend/auth"
	"rdcshop/backend/config"
	"rdcshop/backend/controllers"
	"rdcshop/backend/database"
	"rdcshop/backend/jobs"
	"rdcshop/backend/kv"
	"rdcshop/backend/middleware"
	"rdcshop/backend/routes"
	"rdcshop/backend/services"
	"rdcshop/backend/store"
	"rdcshop/backend/store/demostore"
	"rdcshop/backend/store/gormstore"
	"rdcshop/backend/utils"
)

// backend is the storage side the handlers run against.
type backend struct {
	store    store.Store
	kv       kv.Store
	provider auth.Provider
	google   *auth.GoogleProvider
	status   controllers.StatusFunc
	close    func() error
}

func openHosted(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend, error) {
	connector := database.NewConnector(cfg, logger)
	handles, err := connector.Get(ctx)
	if err != nil {
		return nil, err
	}

	st := gormstore.New(handles.DB)
	if err := st.Migrate(); err != nil {
		handles.Close()
		return nil, err
	}

	var sessions kv.Store = kv.NewMemory()
	if handles.Redis != nil {
		sessions = kv.NewRedis(handles.Redis)
	}

	b := &backend{
		store:    st,
		kv:       sessions,
		provider: auth.NewPasswordProvider(st),
		status:   connector.Status,
		close:    connector.Reset,
	}
	if cfg.GoogleEnabled() {
		b.google = auth.NewGoogleProvider(cfg, sessions, st, logger)
	}
	return b, nil
}

func openDemo(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend, error) {
	b := &backend{close: func() error { return nil }}
	if cfg.RedisURL != "" {
		client, err := kv.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		b.kv = kv.NewRedis(client)
		b.close = client.Close
		logger.Println("demo mode: data kept in redis")
	} else {
		b.kv = kv.NewMemory()
		logger.Println("demo mode: data kept in memory and lost on restart")
	}

	st := demostore.New(b.kv)
	b.store = st
	b.provider = auth.NewDemoProvider(b.kv, st)
	return b, nil
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{EnableColors: !cfg.IsProduction()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize backend
	open := openHosted
	if cfg.IsDemo() {
		open = openDemo
	}
	b, err := open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Error initializing %s backend: %v", cfg.BackendMode, err)
	}

	svc := services.New(b.store, services.Options{
		TaxRate:       cfg.TaxRate,
		AdminPassword: cfg.AdminPassword,
		Demo:          cfg.IsDemo(),
		Logger:        logger,
	})

	// Hosted sign-in is password based, so the admin needs an account before
	// anyone can reach the admin routes.
	if !cfg.IsDemo() && cfg.AdminPassword != "" {
		if _, err := svc.Seeder.EnsureAdmin(ctx); err != nil {
			logger.Fatalf("Error creating admin account: %v", err)
		}
	}

	cron := jobs.NewManager(svc.Orders, logger)
	if err := cron.Start(); err != nil {
		logger.Fatalf("Error starting cron jobs: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "EduLMS API",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.LoggingMiddleware(logger, !cfg.IsProduction()))

	// Setup routes
	routes.SetupRoutes(app, &routes.Deps{
		Cfg:         cfg,
		Logger:      logger,
		Services:    svc,
		Provider:    b.provider,
		Google:      b.google,
		Revocations: auth.NewRevocations(b.kv),
		Users:       b.store,
		Status:      b.status,
	})

	go func() {
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Println("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	cron.Stop()
	if err := b.close(); err != nil {
		logger.Printf("closing backend: %v", err)
	}
}
