package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"homestash/internal/auth"
	"homestash/internal/catalog"
	"homestash/internal/config"
	"homestash/internal/inventory"
	"homestash/internal/media"
	"homestash/internal/search"
	"homestash/pkg/database"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("redis unavailable, rate limiting disabled: %v", err)
			redisClient = nil
		}
	}

	var mediaHandler *media.Handler
	if cfg.S3Bucket != "" {
		storageClient, err := media.NewStorageClient(context.Background(), cfg)
		if err != nil {
			log.Fatalf("failed to init photo storage: %v", err)
		}
		mediaHandler = media.NewHandler(media.NewService(db, storageClient, cfg))
	} else {
		log.Printf("S3_BUCKET not set, item photos disabled")
	}

	authService := auth.NewService(cfg)
	catalogService := catalog.NewService(db, cfg)

	router := buildRouter(routerDeps{
		cfg:          cfg,
		redisClient:  redisClient,
		authService:  authService,
		authHandler:  auth.NewHandler(authService),
		catalog:      catalog.NewHandler(catalogService),
		search:       search.NewHandler(search.NewEngine(db, cfg)),
		inventory:    inventory.NewHandler(inventory.NewService(db, catalogService)),
		mediaHandler: mediaHandler,
	})

	log.Printf("inventory catalog listening on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
