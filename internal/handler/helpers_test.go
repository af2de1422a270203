package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/config"
	"github.com/alphago/canvas-api/internal/handler"
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/repository"
	"github.com/alphago/canvas-api/internal/router"
	"github.com/alphago/canvas-api/internal/service"
)

type testUploader struct{}

func (t *testUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://example.com/" + name, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
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
	))
	return db
}

// newApp wires the full route table over the given database, with the JWT
// layer replaced by a stub that authenticates every request as the supplied
// user.
func newApp(t *testing.T, db *gorm.DB, userID uint, role string) *fiber.App {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

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
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, &testUploader{}, logger)
	gradingService := service.NewGradingService(submissionRepo, validate, activityService, logger)
	gradebookService := service.NewGradebookService(courseRepo, enrollmentRepo, assignmentRepo, submissionRepo, logger)
	quizService := service.NewQuizService(quizRepo, courseRepo, validate, logger)
	quizAttemptService := service.NewQuizAttemptService(attemptRepo, quizRepo, validate, activityService, logger)
	quizGradingService := service.NewQuizGradingService(attemptRepo, validate, activityService, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, courseRepo, nil, "", nil, validate, logger)

	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret", RateLimitPerMinute: 1000, RateLimitWindow: time.Minute}, router.Dependencies{
		CourseHandler:       handler.NewCourseHandler(courseService, logger),
		EnrollmentHandler:   handler.NewEnrollmentHandler(enrollmentService, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, gradingService, logger),
		GradebookHandler:    handler.NewGradebookHandler(gradebookService, logger),
		QuizHandler:         handler.NewQuizHandler(quizService, logger),
		QuizAttemptHandler:  handler.NewQuizAttemptHandler(quizAttemptService, quizGradingService, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(announcementService, logger, time.Second),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", userID)
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func seedCourse(t *testing.T, db *gorm.DB) models.Course {
	t.Helper()
	course := models.Course{Name: "Distributed Systems", Semester: "2026S", FacultyID: 9}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func seedStudent(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	student := models.User{FirstName: "Dina", LastName: "Putri", Email: email, Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	return student
}
