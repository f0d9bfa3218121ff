package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/classfolio/record-api/api/swagger"
	"github.com/classfolio/record-api/internal/handler"
	"github.com/classfolio/record-api/internal/middleware"
	"github.com/classfolio/record-api/internal/repository"
	"github.com/classfolio/record-api/internal/service"
	"github.com/classfolio/record-api/pkg/cache"
	"github.com/classfolio/record-api/pkg/config"
	"github.com/classfolio/record-api/pkg/database"
	"github.com/classfolio/record-api/pkg/logger"
	corsmiddleware "github.com/classfolio/record-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classfolio/record-api/pkg/middleware/requestid"
)

// @title Classfolio Record API
// @version 0.1.0
// @description Academic record engine: rosters, attendance, assessments and averages
// @BasePath /api/v1
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, average caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Averages.CacheTTL, logr, cfg.Averages.CacheEnabled && redisClient != nil)

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	markRepo := repository.NewMarkRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	grantRepo := repository.NewGrantRepository(db)

	accessSvc := service.NewAccessService(grantRepo, nil, logr)
	rosterSvc := service.NewRosterService(enrollmentRepo, accessSvc, cfg.Roster.Locale, nil, logr)
	gradeSvc := service.NewGradeService(assessmentRepo, markRepo, rosterSvc, accessSvc, cacheSvc, nil, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, rosterSvc, accessSvc, nil, logr)

	rosterHandler := handler.NewRosterHandler(rosterSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	homeroomHandler := handler.NewHomeroomHandler(accessSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.GET("/courses/:courseId/roster", rosterHandler.Roster)
		api.POST("/courses/:courseId/roster/auto-number", rosterHandler.AutoNumber)
		api.PUT("/courses/:courseId/roster/list-numbers", rosterHandler.SetListNumbers)

		api.POST("/assessments", gradeHandler.CreateAssessment)
		api.PUT("/assessments/:id", gradeHandler.UpdateAssessment)
		api.DELETE("/assessments/:id", gradeHandler.DeleteAssessment)
		api.GET("/courses/:courseId/subjects/:subjectId/assessments", gradeHandler.ListAssessments)
		api.POST("/marks", gradeHandler.RecordMark)
		api.GET("/courses/:courseId/subjects/:subjectId/sheet", gradeHandler.SubjectSheet)
		api.GET("/courses/:courseId/subjects/:subjectId/students/:studentId/averages", gradeHandler.StudentAverages)
		api.GET("/courses/:courseId/averages", gradeHandler.CourseAverages)

		api.POST("/attendance/sessions", attendanceHandler.GetOrCreateSession)
		api.GET("/attendance/sessions/:id", attendanceHandler.GetSession)
		api.PUT("/attendance/sessions/:id/marks", attendanceHandler.RecordMarks)
		api.GET("/courses/:courseId/subjects/:subjectId/students/:studentId/attendance", attendanceHandler.StudentSummary)

		api.GET("/courses/:courseId/homeroom", homeroomHandler.Get)
		api.PUT("/courses/:courseId/homeroom", homeroomHandler.Assign)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
