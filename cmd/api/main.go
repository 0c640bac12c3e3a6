package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/config"
	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/db/memstore"
	"github.com/ASHISH26940/asmr-studio-api/pkg/db/queries"
	"github.com/ASHISH26940/asmr-studio-api/pkg/db/supabase"
	"github.com/ASHISH26940/asmr-studio-api/pkg/handlers"
	"github.com/ASHISH26940/asmr-studio-api/pkg/llm"
	"github.com/ASHISH26940/asmr-studio-api/pkg/lock"
	"github.com/ASHISH26940/asmr-studio-api/pkg/middleware"
	"github.com/ASHISH26940/asmr-studio-api/pkg/payments"
	"github.com/ASHISH26940/asmr-studio-api/pkg/replicate"
	"github.com/ASHISH26940/asmr-studio-api/pkg/services"
	"github.com/ASHISH26940/asmr-studio-api/pkg/storage"
	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus" // Structured logger
)

const tokenTTL = 24 * time.Hour

func main() {
	log.SetOutput(gin.DefaultWriter)
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("Starting ASMR Studio API...")

	cfg := config.LoadConfig()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		log.SetLevel(log.InfoLevel)
	}

	store := openStore(cfg)
	defer db.CloseDB()

	completer, closeLLM := openCompleter(cfg)
	defer closeLLM()

	replicateClient := replicate.NewClient(cfg.ReplicateAPIToken, cfg.ReplicateBaseURL, 30*time.Second)

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		rdb, err := lock.Connect(ctx, lock.RedisOptions{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			UseTLS:   cfg.RedisUseTLS,
		})
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "asmr:lock:")
	} else {
		log.Warn("REDIS_ADDR not set; wallet locks are local to this process.")
	}

	var mirror services.Mirror
	if cfg.S3Enabled() {
		uploader, err := storage.NewUploader(storage.Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
			Prefix:        cfg.S3Prefix,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
		mirror = uploader
	}

	wallet := services.NewWalletService(store, locker, cfg.VideoPriceCents)
	apiHandlers := handlers.NewHandlers(cfg, store, handlers.Services{
		JWT:     services.NewJWTService(cfg.JwtSecret, tokenTTL),
		Prompts: services.NewPromptService(completer, store),
		Wallet:  wallet,
		Videos: services.NewVideoService(wallet, store, replicateClient, services.VideoSettings{
			Model:       cfg.VideoModel,
			Duration:    cfg.VideoDuration,
			AspectRatio: cfg.AspectRatio,
		}),
		Payments: services.NewPaymentService(payments.NewStripeProvider(cfg.StripeSecretKey, nil), store, cfg.PublicBaseURL, cfg.VideoPriceCents),
		Projects: services.NewProjectService(store),
		Images:   services.NewImageService(replicateClient, mirror, cfg.ImageModel),
	})

	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	stopCleanup := make(chan struct{})
	go limiter.Cleanup(5*time.Minute, stopCleanup)
	defer close(stopCleanup)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		// Browsers skip the preflight for this long.
		MaxAge: 12 * time.Hour,
	}))
	apiHandlers.RegisterRoutes(router, limiter)

	srv := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: router,
	}

	go func() {
		log.Infof("Server listening on %s", cfg.ListenAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited gracefully.")
}

func openStore(cfg *config.Config) db.Store {
	switch cfg.StoreDriver {
	case config.StoreDriverSupabase:
		store, err := supabase.NewStore(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			log.Fatalf("Failed to initialize Supabase store: %v", err)
		}
		log.Info("Using Supabase store.")
		return store
	case config.StoreDriverMemory:
		log.Warn("Using in-memory store; data is lost on restart.")
		return memstore.New()
	default:
		if err := db.InitDB(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.Migrate(ctx, db.DB); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		return queries.New(db.DB)
	}
}

func openCompleter(cfg *config.Config) (llm.Completer, func()) {
	if cfg.LLMProvider == config.LLMProviderGemini {
		gemini, err := llm.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to initialize LLM client: %v", err)
		}
		return gemini, func() {
			if err := gemini.Close(); err != nil {
				log.Errorf("Error closing Gemini client: %v", err)
			}
		}
	}
	return llm.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), func() {}
}
