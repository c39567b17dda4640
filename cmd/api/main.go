package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/courshub/courshub-api/api/swagger"
	"github.com/courshub/courshub-api/internal/handler"
	"github.com/courshub/courshub-api/internal/middleware"
	"github.com/courshub/courshub-api/internal/repository"
	"github.com/courshub/courshub-api/internal/service"
	"github.com/courshub/courshub-api/pkg/cache"
	"github.com/courshub/courshub-api/pkg/config"
	"github.com/courshub/courshub-api/pkg/database"
	"github.com/courshub/courshub-api/pkg/logger"
	corsmiddleware "github.com/courshub/courshub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/courshub/courshub-api/pkg/middleware/requestid"
	"github.com/courshub/courshub-api/pkg/storage"
)

// @title CoursHub API
// @version 1.0.0
// @description Role-based course distribution platform
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init storage", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	programRepo := repository.NewProgramRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	distributionRepo := repository.NewDistributionRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr, metricsSvc)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, groupRepo, validate, logr)
	programSvc := service.NewProgramService(programRepo, cacheRepo, validate, logr, cfg.Cache.StructureTTL)
	groupSvc := service.NewGroupService(groupRepo, programRepo, cacheRepo, validate, logr, cfg.Cache.StructureTTL)
	moduleSvc := service.NewModuleService(moduleRepo, cacheRepo, validate, logr, cfg.Cache.StructureTTL)
	curriculumSvc := service.NewCurriculumService(curriculumRepo, programRepo, moduleRepo, userRepo, cacheRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, distributionRepo, groupRepo, moduleRepo, store, service.UploadPolicy{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
	}, validate, logr)
	moderationSvc := service.NewModerationService(courseRepo, store, logr)
	accessSvc := service.NewAccessService(courseRepo, distributionRepo, userRepo, store, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheRepo, logr, cfg.Cache.DashboardTTL)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Users:      handler.NewUserHandler(userSvc),
		Programs:   handler.NewProgramHandler(programSvc, curriculumSvc),
		Groups:     handler.NewGroupHandler(groupSvc),
		Modules:    handler.NewModuleHandler(moduleSvc, curriculumSvc),
		Courses:    handler.NewCourseHandler(courseSvc),
		Moderation: handler.NewModerationHandler(moderationSvc),
		Students:   handler.NewStudentHandler(accessSvc, metricsSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Metrics:    metricsHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
