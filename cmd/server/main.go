package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/Twahaaa/JOURNY/internal/config"
	"github.com/Twahaaa/JOURNY/internal/database"
	"github.com/Twahaaa/JOURNY/internal/handlers"
	"github.com/Twahaaa/JOURNY/internal/middleware"
	"github.com/Twahaaa/JOURNY/internal/routes"
	"github.com/Twahaaa/JOURNY/internal/services"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	if cfg.OpenAIEndpoint == "" || cfg.OpenAIAPIKey == "" {
		log.Println("⚠️  WARNING: OPEN_AI_ENDPOINT / OPEN_AI_API_KEY not set. Entry analysis will fail.")
	}

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI, cfg.RedisPoolSize, cfg.RedisMinIdleConns); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (warm the shared handle; requests reuse it)
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Ensure MongoDB indexes for journal entries
	if err := services.EnsureEntryIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB entry indexes: %v", err)
	} else {
		log.Println("✅ MongoDB entry indexes ensured")
	}

	// Wire the entry service: Mongo store + completion client + Redis cache
	entryStore := services.NewMongoEntryStore()
	analyzer := services.NewCompletionClient(cfg)
	entryCache := services.NewEntryListCache()
	handlers.InitEntryHandlers(services.NewEntryService(entryStore, analyzer, entryCache))

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit → AnalyzeRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login + analyze rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r)

	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/auth/signup")
	log.Println("  POST /api/auth/signin")
	log.Println("  POST /api/auth/signout")
	log.Println("  GET  /api/auth/me")
	log.Println("  POST /api/entries")
	log.Println("  GET  /api/entries")
	log.Println("  DELETE /api/entries")

	log.Printf("🚀 JOURNY backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
