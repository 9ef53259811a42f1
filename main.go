package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"homepath/api/internal/api"
	"homepath/api/internal/cache"
	"homepath/api/internal/chatbot"
	"homepath/api/internal/config"
	"homepath/api/internal/db"
	"homepath/api/internal/email"
	"homepath/api/internal/listings"
	"homepath/api/internal/logging"
	"homepath/api/internal/sms"
	"homepath/api/internal/storage"
	"homepath/api/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient, logger); err != nil {
			logger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	if err := db.EnsureIndexes(ctx, mongoDb); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient, logger); err != nil {
			logger.Error("Error disconnecting from Redis", zap.Error(err))
		}
	}()

	// AWS: attachments, email and SMS
	awsCfg, err := storage.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}
	attachmentStore := storage.NewS3Storage(cfg, awsCfg, logger)

	var primaryEmailSender email.Sender
	var smsSender sms.Sender
	if cfg.MockServices {
		logger.Info("MOCK_SERVICES enabled: emails go to Redis, SMS to the log")
		primaryEmailSender = email.NewRedisSender(redisClient, cfg.SesFromAddress, logger)
		smsSender = sms.NewLoggingSender(logger)
	} else {
		primaryEmailSender = email.NewSESSender(ses.NewFromConfig(awsCfg), cfg.SesFromAddress, logger)
		smsSender = sms.NewSNSSender(sns.NewFromConfig(awsCfg), cfg.SnsSenderID, logger)
	}
	// The composite sender always includes the primary sender.
	emailSender := email.NewCompositeEmailSender(primaryEmailSender)
	if cfg.LogLevel == "debug" {
		emailSender.AddSender(email.NewLoggingSender(logger))
	}

	// Chat assistant
	var completer chatbot.ICompleter = chatbot.FallbackCompleter{}
	if cfg.GeminiAPIKey != "" {
		genaiCompleter, err := chatbot.NewGenAICompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Warn("GenAI unavailable, using canned replies", zap.Error(err))
		} else {
			completer = genaiCompleter
		}
	}

	// Property listings
	var search listings.ISearchClient = listings.MockSearchClient{}
	if cfg.ListingsAPIURL != "" && !cfg.MockServices {
		search = listings.NewHTTPSearchClient(cfg.ListingsAPIURL, cfg.ListingsAPIKey, cfg.RequestTimeout,
			redisClient, cfg.ListingsCacheTTL, logger)
	}

	// Initialize Task Client
	taskClient := tasks.NewClient(redisClient)
	defer func() { _ = taskClient.Close() }()
	notifier := tasks.NewEnqueuer(taskClient, logger)

	svc := api.NewServices(cfg, mongoDb, redisClient, notifier, attachmentStore, completer, search, logger)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := svc.Admin.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
			logger.Fatal("Failed to bootstrap admin account", zap.Error(err))
		}
	}

	// Initialize Task Processor
	taskProcessor := tasks.NewTaskProcessor(cfg, emailSender, smsSender, logger)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(redisClient, shutdownChan, logger),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Service API listening", zap.String("port", cfg.ServiceApiPort))
		if err := serviceSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Service API ListenAndServe error", zap.Error(err))
		}
		logger.Info("Service API server stopped")
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server

	logger.Info("Starting application", zap.String("mode", cfg.RunMode))

	apiMode := func() {
		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           api.SetupRouter(ctx, cfg, svc, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("Main API listening", zap.String("port", cfg.ApiPort))
			if err := mainApiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("Main API ListenAndServe error", zap.Error(err))
			}
			logger.Info("Main API server stopped")
		}()
	}

	bgMode := func() {
		backgroundTaskSrv = tasks.SetupServer(redisClient, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("Background task server starting")
			if err := backgroundTaskSrv.Run(tasks.NewServeMux(taskProcessor)); err != nil {
				logger.Fatal("Background task server error", zap.Error(err))
			}
			logger.Info("Background task server stopped")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		logger.Fatal("Invalid run mode", zap.String("mode", cfg.RunMode))
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case <-shutdownChan:
		logger.Info("Shutdown requested via Service API")
	}
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		logger.Error("Service API server shutdown error", zap.Error(err))
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			logger.Error("Main API server shutdown error", zap.Error(err))
		}
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}

	// Wait for all server goroutines to finish
	wg.Wait()
	logger.Info("Server gracefully stopped")
}
