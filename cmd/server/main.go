package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/gameshop/backend/internal/application/catalog"
	tradeapp "github.com/gameshop/backend/internal/application/trade"
	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/shop"
	"github.com/gameshop/backend/internal/infrastructure/cache"
	"github.com/gameshop/backend/internal/infrastructure/config"
	"github.com/gameshop/backend/internal/infrastructure/content"
	"github.com/gameshop/backend/internal/infrastructure/event"
	"github.com/gameshop/backend/internal/infrastructure/host"
	"github.com/gameshop/backend/internal/infrastructure/logger"
	"github.com/gameshop/backend/internal/infrastructure/persistence"
	"github.com/gameshop/backend/internal/infrastructure/scheduler"
	"github.com/gameshop/backend/internal/infrastructure/strategy"
	"github.com/gameshop/backend/internal/infrastructure/telemetry"
	"github.com/gameshop/backend/internal/interfaces/http/handler"
	"github.com/gameshop/backend/internal/interfaces/http/middleware"
	"github.com/gameshop/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.FromConfig(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting shop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("virtual_shop", cfg.Modules.VirtualShop),
		zap.Bool("chest_shop", cfg.Modules.ChestShop),
	)
	if cfg.Modules.Auction {
		log.Warn("Auction module is enabled in configuration but not provided by this server")
	}

	ctx := context.Background()

	// Telemetry, a no-op unless enabled
	tel, err := telemetry.New(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		log = tel.Tee(log, level)
	}

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if tel.Enabled() && cfg.Telemetry.DBTrace {
		if err := db.EnableTracing(tel.TracerProvider(), cfg.Telemetry.DBFullSQL); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	catalogRepo := persistence.NewGormCatalogRepository(db.DB)

	// Trade limit counters survive restarts through the stock store
	stockStore, err := cache.NewStockStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create stock store", zap.Error(err))
	}
	defer func() {
		if err := stockStore.Close(); err != nil {
			log.Error("Error closing stock store", zap.Error(err))
		}
	}()

	// Event bus
	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Host game adapters
	items := make([]game.ItemStack, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		items = append(items, game.ItemStack{ItemID: item.ID, DisplayName: item.Name, MaxStack: item.MaxStack})
	}
	itemRegistry := content.NewMemoryItemRegistry(items...)
	commands := host.NewCommandLog()
	ledger := host.NewLedger()
	players := host.NewDirectory()
	containers := host.NewContainers(0)

	contents := content.NewFactory(itemRegistry, commands, host.Permissions{}, log)

	pricers, err := strategy.NewRegistryWithDefaults()
	if err != nil {
		log.Fatal("Failed to register pricers", zap.Error(err))
	}

	currencies, err := catalogapp.CurrenciesFromConfig(cfg.Currencies)
	if err != nil {
		log.Fatal("Failed to build currencies", zap.Error(err))
	}

	// Application services
	catalogService := catalogapp.NewService(
		catalogRepo,
		contents,
		pricers,
		currencies,
		nil,
		bus,
		catalogapp.Options{
			VirtualShops:   cfg.Modules.VirtualShop,
			ChestShops:     cfg.Modules.ChestShop,
			Multipliers:    shop.NewRankMultipliers(cfg.Virtual.MultiplierPrefix, cfg.Virtual.SellMultipliers),
			ChestInventory: containers.For,
		},
		log,
	)
	tracker := catalogService.Tracker()
	if err := tracker.LoadFrom(ctx, stockStore); err != nil {
		log.Warn("Failed to restore trade limit counters", zap.Error(err))
	}
	if err := catalogService.Load(ctx); err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}

	tradeService := tradeapp.NewService(catalogService, ledger, tracker, bus, log)
	bus.Subscribe(tradeapp.NewTradeRecorder(tracker, catalogService, log))
	tradeMetrics, err := telemetry.NewTradeMetrics(tel.Meter("gameshop/trade"))
	if err != nil {
		log.Fatal("Failed to create trade metrics", zap.Error(err))
	}
	bus.Subscribe(tradeMetrics)

	// Maintenance jobs
	sched := scheduler.New(log)
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	jobs := []struct {
		name     string
		interval time.Duration
		fn       scheduler.JobFunc
	}{
		{"float-roll", cfg.Pricing.FloatRollInterval, func(context.Context) error {
			log.Debug("Float prices rolled", zap.Int("products", catalogService.RollFloatPrices(rng)))
			return nil
		}},
		{"price-save", cfg.Pricing.SaveInterval, catalogService.SavePrices},
		{"stock-flush", cfg.Stock.FlushInterval, func(ctx context.Context) error {
			return tracker.SaveTo(ctx, stockStore)
		}},
	}
	for _, j := range jobs {
		if err := sched.Every(j.name, j.interval, j.fn); err != nil {
			log.Fatal("Failed to register job", zap.String("job", j.name), zap.Error(err))
		}
	}
	if err := sched.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// HTTP
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
		defer limiter.Close()
	}
	var engineOpts []router.EngineOption
	if tel.Enabled() {
		engineOpts = append(engineOpts, router.WithTracing(cfg.Telemetry.ServiceName, tel.TracerProvider()))
	}
	engine := router.NewEngine(cfg.HTTP, log, limiter, engineOpts...)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewShopHandler(catalogService)).
		Register(handler.NewPriceImportHandler(catalogService)).
		Register(handler.NewTradeHandler(tradeService, players)).
		Register(handler.NewPlayerHandler(players, ledger)).
		Register(handler.NewSystemHandler(cfg.App.Name, version, handler.SystemDeps{
			Catalog: catalogService,
			Pricers: pricers,
			DB:      db,
			Events:  bus,
		}))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler did not stop in time", zap.Error(err))
	}
	if err := catalogService.SavePrices(shutdownCtx); err != nil {
		log.Error("Failed to persist prices", zap.Error(err))
	}
	if err := tracker.SaveTo(shutdownCtx, stockStore); err != nil {
		log.Error("Failed to persist trade limit counters", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		log.Error("Failed to flush telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
