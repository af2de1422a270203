package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alphago/canvas-api/internal/config"
	"github.com/alphago/canvas-api/internal/handler"
	"github.com/alphago/canvas-api/internal/middleware"
	"github.com/alphago/canvas-api/internal/observability"
)

// Dependencies groups router dependencies for registration. Nil handlers are
// skipped so partial wiring stays possible in tests.
type Dependencies struct {
	CourseHandler       *handler.CourseHandler
	EnrollmentHandler   *handler.EnrollmentHandler
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	GradebookHandler    *handler.GradebookHandler
	QuizHandler         *handler.QuizHandler
	QuizAttemptHandler  *handler.QuizAttemptHandler
	AnnouncementHandler *handler.AnnouncementHandler
	ActivityHandler     *handler.ActivityHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	facultyOnly := middleware.RequireRole("faculty", "admin")
	adminOnly := middleware.RequireRole("admin")
	rateLimited := middleware.RateLimit("api", cfg.RateLimitPerMinute, cfg.RateLimitWindow)

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/courses", rateLimited, jwtMiddleware), facultyOnly)
	}
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.Register(api.Group("/enrollments", rateLimited, jwtMiddleware), facultyOnly)
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", rateLimited, jwtMiddleware), facultyOnly)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions", rateLimited, jwtMiddleware), facultyOnly)
	}
	if deps.GradebookHandler != nil {
		deps.GradebookHandler.Register(api.Group("/gradebook", rateLimited, jwtMiddleware, facultyOnly))
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.Register(api.Group("/quizzes", rateLimited, jwtMiddleware), facultyOnly)
	}
	if deps.QuizAttemptHandler != nil {
		deps.QuizAttemptHandler.Register(api.Group("/quiz-attempts", rateLimited, jwtMiddleware), facultyOnly)
	}
	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.Register(api.Group("/announcements", rateLimited, jwtMiddleware), facultyOnly)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", rateLimited, jwtMiddleware, adminOnly))
	}
}
