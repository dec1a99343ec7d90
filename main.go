package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lpernett/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BinSight-Labs/binsight-go-sdk/handlers"
	"github.com/BinSight-Labs/binsight-go-sdk/utils"
)

// Load environment variables from .env file. A missing file is fine in
// deployed environments, where config comes from real env vars.
func init() {
	_ = godotenv.Load()
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Set up logging
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	logger.Info("Starting waste classification server",
		zap.String("vision_provider", cfg.VisionProvider),
		zap.String("default_jurisdiction", cfg.DefaultJurisdiction))

	// Set up Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisHost,
		Password:    cfg.RedisPassword,
		DB:          0,
		DialTimeout: 20 * time.Second, // initial connection timeout
	})

	redisCtx, cancelRedis := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelRedis()

	if _, err := redisClient.Ping(redisCtx).Result(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	logger.Info("Successfully connected to Redis")

	classifier := &handlers.Classifier{
		Provider:            newVisionProvider(cfg),
		Store:               &handlers.RedisClarificationStore{Client: redisClient, TTL: cfg.ClarificationTTL},
		Guidance:            utils.NewGuidanceClientFromEnv(),
		DefaultJurisdiction: cfg.DefaultJurisdiction,
		MaxUploadBytes:      cfg.MaxUploadBytes,
	}

	classifyHandler := &handlers.ClassifyHandler{Classifier: classifier}
	clarifyHandler := &handlers.ClarifyHandler{
		Classifier:  classifier,
		Transcriber: utils.NewTranscriberFromEnv(),
	}
	sessionHandler := &handlers.SessionHandler{Classifier: classifier}

	// Define HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handlers.HealthCheckHandler)
	mux.Handle("/v1/classify", classifyHandler)
	mux.Handle("/v1/clarify", clarifyHandler)
	mux.HandleFunc("/v1/clarify/voice", clarifyHandler.ServeVoice)
	mux.Handle("/v1/session", sessionHandler)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	// Set up signal handling
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverExit := make(chan struct{})

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server exited with error", zap.Error(err))
		}
		close(serverExit)
	}()

	// On termination, drain in-flight requests and shut down
	select {
	case <-stop:
		logger.Info("Shutting down server...")
	case <-serverExit:
		logger.Info("Server exited unexpectedly...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down cleanly", zap.Error(err))
	}

	logger.Info("Server shut down gracefully")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newVisionProvider(cfg Config) utils.VisionProvider {
	switch cfg.VisionProvider {
	case "openai":
		return utils.NewOpenAIClient(cfg.OpenAIModel)
	default:
		return utils.NewStubProvider()
	}
}
