package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/OsasDev/qirllo-api/api/swagger"
	"github.com/OsasDev/qirllo-api/internal/handler"
	"github.com/OsasDev/qirllo-api/internal/middleware"
	"github.com/OsasDev/qirllo-api/internal/repository"
	"github.com/OsasDev/qirllo-api/internal/service"
	"github.com/OsasDev/qirllo-api/pkg/cache"
	"github.com/OsasDev/qirllo-api/pkg/config"
	"github.com/OsasDev/qirllo-api/pkg/database"
	"github.com/OsasDev/qirllo-api/pkg/export"
	"github.com/OsasDev/qirllo-api/pkg/logger"
	"github.com/OsasDev/qirllo-api/pkg/mailer"
	corsmiddleware "github.com/OsasDev/qirllo-api/pkg/middleware/cors"
	reqidmiddleware "github.com/OsasDev/qirllo-api/pkg/middleware/requestid"
)

// @title Qirllo API
// @version 1.0.0
// @description Multi-tenant school management backend
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	}

	mail := mailer.New(cfg.Mail, logr)
	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, schoolRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, schoolRepo, mail, metricsSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, classRepo, export.NewCSVExporter(), validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, classRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, subjectRepo, studentRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, classRepo, studentRepo, validate, logr)
	feeSvc := service.NewFeeService(feeRepo, studentRepo, classRepo, schoolRepo, export.NewPDFExporter(), validate, logr, cfg.Fees)
	messageSvc := service.NewMessageService(messageRepo, userRepo, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, validate, logr)
	importSvc := service.NewImportService(studentRepo, classRepo, metricsSvc, logr)

	counters := &service.RepoCounters{
		Students:      studentRepo,
		Users:         userRepo,
		Classes:       classRepo,
		Subjects:      subjectRepo,
		Grades:        gradeRepo,
		Announcements: announcementRepo,
		Messages:      messageRepo,
	}
	dashboardSvc := service.NewDashboardService(counters, nil, logr, cfg.Dashboard)
	if cacheRepo != nil {
		dashboardSvc = service.NewDashboardService(counters, cacheRepo, logr, cfg.Dashboard)
	}

	handlers := handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Users:         handler.NewUserHandler(userSvc),
		Students:      handler.NewStudentHandler(studentSvc, importSvc),
		Classes:       handler.NewClassHandler(classSvc),
		Subjects:      handler.NewSubjectHandler(subjectSvc),
		Grades:        handler.NewGradeHandler(gradeSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Fees:          handler.NewFeeHandler(feeSvc),
		Messages:      handler.NewMessageHandler(messageSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
	}
	if cfg.Seed.Enabled {
		seedSvc := service.NewSeedService(userRepo, schoolRepo, classRepo, subjectRepo, studentRepo, logr)
		handlers.Seed = handler.NewSeedHandler(seedSvc)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
