package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	catalogapp "github.com/gameshop/backend/internal/application/catalog"
	"github.com/gameshop/backend/internal/infrastructure/config"
	"github.com/gameshop/backend/internal/infrastructure/logger"
	"github.com/gameshop/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	// Parse flags
	var (
		configPath string
		logLevel   string
	)

	flag.StringVar(&configPath, "config", "", "Path to config.toml (default: search ., ./config, /app)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Get command and arguments
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// Initialize logger
	log, err := logger.FromConfig(config.LogConfig{
		Level:  logLevel,
		Format: "console",
		Output: "stderr",
	}, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// Load configuration
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	log.Info("Catalog tool started",
		zap.String("command", command),
		zap.String("driver", cfg.Database.Driver),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(logLevel))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	repo := persistence.NewGormCatalogRepository(db.DB)

	// Execute command
	switch command {
	case "up":
		log.Info("Schema is up to date")

	case "seed":
		if len(args) < 2 {
			log.Fatal("Catalog file required. Usage: migrate seed <file.json>")
		}
		f, err := os.Open(args[1])
		if err != nil {
			log.Fatal("Failed to open catalog file", zap.Error(err))
		}
		defer f.Close()

		defs, err := catalogapp.ReadSeed(f)
		if err != nil {
			log.Fatal("Invalid catalog file", zap.Error(err))
		}
		if err := catalogapp.Seed(ctx, repo, defs); err != nil {
			log.Fatal("Seeding failed", zap.Error(err))
		}
		log.Info("Catalog seeded", zap.Int("shops", len(defs)))

	case "export":
		var out io.Writer = os.Stdout
		if len(args) > 1 {
			f, err := os.Create(args[1])
			if err != nil {
				log.Fatal("Failed to create output file", zap.Error(err))
			}
			defer f.Close()
			out = f
		}
		if err := catalogapp.Export(ctx, repo, out); err != nil {
			log.Fatal("Export failed", zap.Error(err))
		}

	case "drop-shop":
		if len(args) < 2 {
			log.Fatal("Shop id required. Usage: migrate drop-shop <id>")
		}
		if err := repo.DeleteShop(ctx, args[1]); err != nil {
			log.Fatal("Failed to delete shop", zap.Error(err))
		}
		log.Info("Shop deleted", zap.String("shop_id", args[1]))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Shop catalog database tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Create or update the schema
  seed <file.json>      Store the shops of a catalog file, replacing shops with the same id
  export [file.json]    Write every stored shop as a catalog file (default: stdout)
  drop-shop <id>        Delete a shop and its products

Every command brings the schema up to date first.

Flags:
  -config string        Path to config.toml
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  SHOP_DATABASE_DRIVER, SHOP_DATABASE_PATH, SHOP_DATABASE_HOST, SHOP_DATABASE_PASSWORD, ...

Examples:
  # Load the example catalog into a sqlite database
  SHOP_DATABASE_DRIVER=sqlite migrate seed configs/catalog.example.json

  # Back up the catalog
  migrate export catalog.json`)
}
