package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitmeal/platform/internal/api"
	"fitmeal/platform/internal/config"
	"fitmeal/platform/internal/logger"
	"fitmeal/platform/internal/repository/mongo"
	"fitmeal/platform/internal/service"
	"fitmeal/platform/internal/session"
	"fitmeal/platform/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Meal Planning Platform API
// @version 1.0
// @description API for trainers, customers and admins: meal plans, recipes, health protocols and progress tracking.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// No logger yet.
		_, _ = os.Stderr.WriteString("FATAL: could not load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		_, _ = os.Stderr.WriteString("FATAL: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting server", zap.String("address", cfg.Server.Address), zap.String("mode", cfg.Server.Mode))

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established", zap.String("database", cfg.Database.Name))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			log.Error("index creation failed", zap.Error(err))
			return
		}
		log.Info("index creation completed")
	}()

	// --- Sessions ---
	var sessions session.Store
	if cfg.Redis.URL == "" {
		log.Warn("redis.url is empty, refresh sessions are kept in memory")
		sessions = session.NewMemoryStore()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisStore, err := session.NewRedisStore(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			log.Fatal("could not connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisStore.Close() }()
		sessions = redisStore
	}

	// --- Storage ---
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 10*time.Second)
	fileStorage, err := storage.NewS3Storage(storageCtx, cfg.S3, log)
	storageCancel()
	if err != nil {
		log.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	measurementRepo := mongo.NewMongoMeasurementRepository(appDB)
	goalRepo := mongo.NewMongoGoalRepository(appDB)
	mealPlanRepo := mongo.NewMongoCustomerMealPlanRepository(appDB)
	templateRepo := mongo.NewMongoProtocolTemplateRepository(appDB)
	protocolRepo := mongo.NewMongoProtocolRepository(appDB)
	protocolAssignmentRepo := mongo.NewMongoProtocolAssignmentRepository(appDB)
	recipeRepo := mongo.NewMongoRecipeRepository(appDB)
	recipeLinkRepo := mongo.NewMongoRecipeAssignmentRepository(appDB)

	// --- Services ---
	authService := service.NewAuthService(userRepo, sessions, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshExpiration)
	mealPlanService := service.NewMealPlanService(userRepo, mealPlanRepo)
	recipeService := service.NewRecipeService(userRepo, recipeRepo, recipeLinkRepo)
	services := api.Services{
		Auth:      authService,
		Users:     service.NewUserService(userRepo, fileStorage, log),
		Trainer:   service.NewTrainerService(userRepo),
		Overview:  service.NewOverviewService(userRepo, mealPlanRepo, protocolAssignmentRepo, recipeLinkRepo, goalRepo, measurementRepo),
		MealPlans: mealPlanService,
		Progress:  service.NewProgressService(userRepo, measurementRepo, goalRepo),
		Protocols: service.NewProtocolService(userRepo, templateRepo, protocolRepo, protocolAssignmentRepo),
		Recipes:   recipeService,
		Export:    service.NewExportService(mealPlanService, recipeService),
	}

	if cfg.Admin.Email != "" {
		created, err := authService.EnsureAdmin(context.Background(), cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal("failed to seed admin account", zap.Error(err))
		}
		if created {
			log.Info("admin account created", zap.String("email", cfg.Admin.Email))
		}
	}

	// --- Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(logger.GinMiddleware(log), gin.Recovery())
	api.SetupRoutes(router, services, log, api.Options{
		RefreshTTL:    cfg.JWT.RefreshExpiration,
		SecureCookies: cfg.Server.Mode == gin.ReleaseMode,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
