package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/davidkwan/orggraph/docs" // swagger docs

	"github.com/davidkwan/orggraph/internal/config"
	"github.com/davidkwan/orggraph/internal/platform/auth"
	httpPlatform "github.com/davidkwan/orggraph/internal/platform/http"
	"github.com/davidkwan/orggraph/internal/platform/logger"
	"github.com/davidkwan/orggraph/internal/platform/postgres"
	"github.com/davidkwan/orggraph/internal/platform/redis"

	disambiguationservice "github.com/davidkwan/orggraph/modules/disambiguation/service"
	employmentrepo "github.com/davidkwan/orggraph/modules/employment/repository"
	facadehandler "github.com/davidkwan/orggraph/modules/facade/handler"
	facadeservice "github.com/davidkwan/orggraph/modules/facade/service"
	graphservice "github.com/davidkwan/orggraph/modules/graph/service"
	ingestservice "github.com/davidkwan/orggraph/modules/ingest/service"
	nameresolverservice "github.com/davidkwan/orggraph/modules/nameresolver/service"
	orgrepo "github.com/davidkwan/orggraph/modules/organizations/repository"
	orgservice "github.com/davidkwan/orggraph/modules/organizations/service"
	peoplerepo "github.com/davidkwan/orggraph/modules/people/repository"
	queryrepo "github.com/davidkwan/orggraph/modules/query/repository"
	queryservice "github.com/davidkwan/orggraph/modules/query/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Temporal Organization Graph API
// @version 1.0
// @description Identity-disambiguated, temporally-aware query API over a government directory's people, organizations, and employment history.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@orggraph.example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a write-access JWT token.

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting orggraph API server",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()
	appLogger.Info("Connected to PostgreSQL")

	migrationsPath := "./migrations"
	if err := postgres.RunMigrations(ctx, cfg.Database, appLogger, migrationsPath); err != nil {
		appLogger.Fatal("Failed to run database migrations",
			zap.Error(err),
			zap.String("migrations_path", migrationsPath),
		)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpPlatform.RequestIDMiddleware())
	router.Use(httpPlatform.LoggerMiddleware(appLogger))
	router.Use(httpPlatform.CORSMiddleware())

	if cfg.Server.Env != "production" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		appLogger.Info("Swagger UI available at /swagger/index.html")
	}

	router.GET("/health", healthCheckHandler(ctx, pgClient, redisClient))
	router.GET("/ping", pingHandler)

	tokens := auth.NewTokenManager(cfg.Auth.AccessSecret, cfg.Auth.AccessExpiry)
	writeAccess := auth.WriteAccessMiddleware(tokens)

	// Repositories
	peopleRepository := peoplerepo.NewPeopleRepository(pgClient.Pool)
	orgRepository := orgrepo.NewOrganizationRepository(pgClient.Pool)
	employmentRepository := employmentrepo.NewEmploymentRepository(pgClient.Pool)
	queryRepository := queryrepo.NewQueryRepository(pgClient.Pool)

	// Stage services
	resolver := nameresolverservice.NewResolver(peopleRepository, appLogger)
	disambiguator := disambiguationservice.NewDisambiguator(orgRepository)
	querySvc := queryservice.NewQueryService(queryRepository, employmentRepository, orgRepository, resolver, appLogger)
	graphSvc := graphservice.NewGraphService(employmentRepository, orgRepository, appLogger, redisClient, cfg.Cache.InvalidationChannel)
	orgSvc := orgservice.NewOrganizationService(orgRepository, pgClient.Pool, graphSvc, appLogger)
	ingestSvc := ingestservice.NewIngestService(pgClient.Pool, disambiguator, employmentRepository, graphSvc, appLogger)

	if cfg.Cache.BroadcastEnabled {
		go graphSvc.WatchInvalidations(ctx, redisClient, cfg.Cache.InvalidationChannel)
	}

	fac := facadeservice.New(querySvc, graphSvc, orgSvc, ingestSvc, peopleRepository, resolver, appLogger)
	facadeHdl := facadehandler.NewFacadeHandler(fac)

	v1 := router.Group("/api/v1")
	{
		facadeHdl.RegisterRoutes(v1, writeAccess)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}

// healthCheckHandler godoc
// @Summary Health Check
// @Description Check the health status of the application and its dependencies
// @Tags system
// @Produce json
// @Success 200 {object} http.HealthResponse
// @Router /health [get]
func healthCheckHandler(ctx context.Context, pgClient *postgres.Client, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := make(map[string]string)

		if err := pgClient.Health(ctx); err != nil {
			services["postgres"] = "down"
		} else {
			services["postgres"] = "up"
		}

		if err := redisClient.Health(ctx); err != nil {
			services["redis"] = "down"
		} else {
			services["redis"] = "up"
		}

		httpPlatform.RespondWithHealth(c, services)
	}
}

// pingHandler godoc
// @Summary Ping
// @Description Simple ping endpoint to check if the API is responding
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
