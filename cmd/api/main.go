package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/alphago/canvas-api/internal/config"
	"github.com/alphago/canvas-api/internal/database"
	"github.com/alphago/canvas-api/internal/handler"
	"github.com/alphago/canvas-api/internal/middleware"
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/repository"
	"github.com/alphago/canvas-api/internal/router"
	"github.com/alphago/canvas-api/internal/service"
	cloud "github.com/alphago/canvas-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionGradeHistory{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizQuestionOption{},
		&models.QuizAttempt{},
		&models.QuizAnswer{},
		&models.Announcement{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, validate, activityService, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploader, logger)
	gradingService := service.NewGradingService(submissionRepo, validate, activityService, logger)
	gradebookService := service.NewGradebookService(courseRepo, enrollmentRepo, assignmentRepo, submissionRepo, logger)
	quizService := service.NewQuizService(quizRepo, courseRepo, validate, logger)
	quizAttemptService := service.NewQuizAttemptService(attemptRepo, quizRepo, validate, activityService, logger)
	quizGradingService := service.NewQuizGradingService(attemptRepo, validate, activityService, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, courseRepo, redisClient, cfg.EventChannelBase, natsConn, validate, logger)

	fanoutCtx, stopFanout := context.WithCancel(context.Background())
	defer stopFanout()
	announcementService.Start(fanoutCtx)

	courseHandler := handler.NewCourseHandler(courseService, logger)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, gradingService, logger)
	gradebookHandler := handler.NewGradebookHandler(gradebookService, logger)
	quizHandler := handler.NewQuizHandler(quizService, logger)
	quizAttemptHandler := handler.NewQuizAttemptHandler(quizAttemptService, quizGradingService, logger)
	announcementHandler := handler.NewAnnouncementHandler(announcementService, logger, 30*time.Second)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:       courseHandler,
		EnrollmentHandler:   enrollmentHandler,
		AssignmentHandler:   assignmentHandler,
		SubmissionHandler:   submissionHandler,
		GradebookHandler:    gradebookHandler,
		QuizHandler:         quizHandler,
		QuizAttemptHandler:  quizAttemptHandler,
		AnnouncementHandler: announcementHandler,
		ActivityHandler:     activityHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
