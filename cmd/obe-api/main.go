package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/notsogambhir/obe-portal-api/api/swagger"
	"github.com/notsogambhir/obe-portal-api/internal/handler"
	internalmiddleware "github.com/notsogambhir/obe-portal-api/internal/middleware"
	"github.com/notsogambhir/obe-portal-api/internal/models"
	"github.com/notsogambhir/obe-portal-api/internal/repository"
	"github.com/notsogambhir/obe-portal-api/internal/service"
	"github.com/notsogambhir/obe-portal-api/pkg/cache"
	"github.com/notsogambhir/obe-portal-api/pkg/config"
	"github.com/notsogambhir/obe-portal-api/pkg/database"
	"github.com/notsogambhir/obe-portal-api/pkg/export"
	"github.com/notsogambhir/obe-portal-api/pkg/logger"
	corsmiddleware "github.com/notsogambhir/obe-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/notsogambhir/obe-portal-api/pkg/middleware/requestid"
)

// @title OBE Portal API
// @version 1.0.0
// @description Outcome-based education administration and attainment analytics
// @BasePath /api/v1
// @schemes http
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

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// The cache layer is optional; attainment is always recomputed from raw
	// marks when it is off.
	var cacheRepo *repository.CacheRepository
	if cfg.Attainment.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Attainment.CacheTTL, logr, cfg.Attainment.CacheEnabled)

	collegeRepo := repository.NewCollegeRepository(db)
	programRepo := repository.NewProgramRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	outcomeRepo := repository.NewOutcomeRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	markRepo := repository.NewMarkRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "obe-portal-api",
	})
	academicSvc := service.NewAcademicService(collegeRepo, programRepo, batchRepo, sectionRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, outcomeRepo, mappingRepo, settingsRepo, cacheSvc, validate, logr)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, markRepo, cacheSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, enrollmentRepo, cacheSvc, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, validate, logr)
	attainmentSvc := service.NewAttainmentService(
		programRepo, courseRepo, outcomeRepo, mappingRepo,
		assessmentRepo, markRepo, studentRepo, enrollmentRepo,
		cacheSvc, metricsSvc, logr,
	)
	appDataSvc := service.NewAppDataService(academicSvc, courseSvc, studentSvc, settingsSvc, userSvc, logr)
	reportSvc := service.NewReportService(attainmentSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	authHandler := handler.NewAuthHandler(authSvc)
	academicHandler := handler.NewAcademicHandler(academicSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	assessmentHandler := handler.NewAssessmentHandler(assessmentSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	userHandler := handler.NewUserHandler(userSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	attainmentHandler := handler.NewAttainmentHandler(attainmentSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	appDataHandler := handler.NewAppDataHandler(appDataSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
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

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(internalmiddleware.JWT(authSvc))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/user", authHandler.Me)
	authed.POST("/auth/change-password", authHandler.ChangePassword)

	manage := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator)
	adminOnly := internalmiddleware.RequireRoles(models.RoleAdmin)

	authed.GET("/colleges", academicHandler.ListColleges)
	authed.GET("/colleges/:id", academicHandler.GetCollege)
	authed.POST("/colleges", adminOnly, academicHandler.CreateCollege)
	authed.PUT("/colleges/:id", adminOnly, academicHandler.UpdateCollege)
	authed.DELETE("/colleges/:id", adminOnly, academicHandler.DeleteCollege)

	authed.GET("/programs", academicHandler.ListPrograms)
	authed.GET("/programs/:id", academicHandler.GetProgram)
	authed.POST("/programs", adminOnly, academicHandler.CreateProgram)
	authed.PUT("/programs/:id", adminOnly, academicHandler.UpdateProgram)
	authed.DELETE("/programs/:id", adminOnly, academicHandler.DeleteProgram)

	authed.GET("/batches", academicHandler.ListBatches)
	authed.GET("/batches/:id", academicHandler.GetBatch)
	authed.POST("/batches", manage, academicHandler.CreateBatch)
	authed.PUT("/batches/:id", manage, academicHandler.UpdateBatch)
	authed.DELETE("/batches/:id", manage, academicHandler.DeleteBatch)

	authed.GET("/sections", academicHandler.ListSections)
	authed.GET("/sections/:id", academicHandler.GetSection)
	authed.POST("/sections", manage, academicHandler.CreateSection)
	authed.PUT("/sections/:id", manage, academicHandler.UpdateSection)
	authed.DELETE("/sections/:id", manage, academicHandler.DeleteSection)

	authed.GET("/courses", courseHandler.ListCourses)
	authed.GET("/courses/:id", courseHandler.GetCourse)
	authed.POST("/courses", manage, courseHandler.CreateCourse)
	authed.PUT("/courses/:id", manage, courseHandler.UpdateCourse)
	authed.DELETE("/courses/:id", manage, courseHandler.DeleteCourse)

	authed.GET("/course-outcomes", courseHandler.ListCourseOutcomes)
	authed.POST("/course-outcomes", manage, courseHandler.CreateCourseOutcome)
	authed.PUT("/course-outcomes/:id", manage, courseHandler.UpdateCourseOutcome)
	authed.DELETE("/course-outcomes/:id", manage, courseHandler.DeleteCourseOutcome)

	authed.GET("/program-outcomes", courseHandler.ListProgramOutcomes)
	authed.POST("/program-outcomes", manage, courseHandler.CreateProgramOutcome)
	authed.PUT("/program-outcomes/:id", manage, courseHandler.UpdateProgramOutcome)
	authed.DELETE("/program-outcomes/:id", manage, courseHandler.DeleteProgramOutcome)

	authed.GET("/co-po-mappings", courseHandler.ListMappings)
	authed.POST("/co-po-mappings", manage, courseHandler.CreateMapping)
	authed.PUT("/co-po-mappings/:id", manage, courseHandler.UpdateMapping)
	authed.DELETE("/co-po-mappings/:id", manage, courseHandler.DeleteMapping)

	// Teachers record assessments and marks for their own courses.
	record := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator, models.RoleTeacher)

	authed.GET("/assessments", assessmentHandler.ListAssessments)
	authed.GET("/assessments/:id", assessmentHandler.GetAssessment)
	authed.POST("/assessments", record, assessmentHandler.CreateAssessment)
	authed.PUT("/assessments/:id", record, assessmentHandler.UpdateAssessment)
	authed.DELETE("/assessments/:id", record, assessmentHandler.DeleteAssessment)

	authed.GET("/marks", assessmentHandler.ListMarks)
	authed.POST("/marks", record, assessmentHandler.SaveMark)
	authed.DELETE("/marks/:id", record, assessmentHandler.DeleteMark)

	authed.GET("/students", studentHandler.ListStudents)
	authed.GET("/students/:id", studentHandler.GetStudent)
	authed.POST("/students", manage, studentHandler.CreateStudent)
	authed.PUT("/students/:id", manage, studentHandler.UpdateStudent)
	authed.DELETE("/students/:id", manage, studentHandler.DeleteStudent)

	authed.GET("/enrollments", studentHandler.ListEnrollments)
	authed.POST("/enrollments", manage, studentHandler.CreateEnrollment)
	authed.PUT("/enrollments/:id", manage, studentHandler.UpdateEnrollment)
	authed.DELETE("/enrollments/:id", manage, studentHandler.DeleteEnrollment)

	authed.GET("/users", adminOnly, userHandler.List)
	authed.GET("/users/:id", internalmiddleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
	authed.POST("/users", adminOnly, userHandler.Create)
	authed.PUT("/users/:id", adminOnly, userHandler.Update)
	authed.DELETE("/users/:id", adminOnly, userHandler.Delete)

	authed.GET("/settings", manage, settingsHandler.Get)
	authed.PUT("/settings", adminOnly, settingsHandler.Update)

	authed.GET("/attainment/programs/:id", attainmentHandler.Program)
	authed.GET("/attainment/courses/:id", attainmentHandler.Course)
	authed.GET("/attainment/students/:id", attainmentHandler.Student)

	if cfg.Reports.Enabled {
		authed.GET("/reports/programs/:id", reportHandler.Program)
		authed.GET("/reports/courses/:id", reportHandler.Course)
	}

	authed.GET("/app-data", appDataHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
