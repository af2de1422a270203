package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/service"
	"github.com/alphago/canvas-api/internal/utils"
)

// QuizAttemptHandler manages attempt submission, retrieval, and manual
// finalization.
type QuizAttemptHandler struct {
	attempts service.QuizAttemptService
	grading  service.QuizGradingService
	logger   zerolog.Logger
}

// NewQuizAttemptHandler builds a quiz attempt handler instance.
func NewQuizAttemptHandler(attempts service.QuizAttemptService, grading service.QuizGradingService, logger zerolog.Logger) *QuizAttemptHandler {
	return &QuizAttemptHandler{
		attempts: attempts,
		grading:  grading,
		logger:   logger.With().Str("component", "quiz_attempt_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *QuizAttemptHandler) Register(router fiber.Router, facultyOnly fiber.Handler) {
	router.Post("", h.submit)
	router.Get("/:id", h.get)
	router.Get("/quiz/:quizId", facultyOnly, h.listByQuiz)
	router.Get("/quiz/:quizId/student/:studentId", h.listByQuizStudent)
	router.Post("/:id/grade", facultyOnly, h.finalize)
}

func (h *QuizAttemptHandler) submit(c *fiber.Ctx) error {
	var payload dto.QuizAttemptSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	attempt, err := h.attempts.Submit(c.UserContext(), userIDFromContext(c), payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt submitted", attempt)
}

func (h *QuizAttemptHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempt, err := h.attempts.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempt retrieved", attempt)
}

func (h *QuizAttemptHandler) listByQuiz(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempts, err := h.attempts.ListByQuiz(c.UserContext(), quizID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempts retrieved", attempts)
}

func (h *QuizAttemptHandler) listByQuizStudent(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempts, err := h.attempts.ListByQuizStudent(c.UserContext(), quizID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempts retrieved", attempts)
}

func (h *QuizAttemptHandler) finalize(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeAttemptRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	attempt, err := h.grading.FinalizeAttempt(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempt graded", attempt)
}

func (h *QuizAttemptHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
	case errors.Is(err, service.ErrAttemptNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "attempt not found")
	case errors.Is(err, service.ErrQuizNotOpen):
		return utils.SendError(c, fiber.StatusConflict, "quiz has not opened yet")
	case errors.Is(err, service.ErrQuizClosed):
		return utils.SendError(c, fiber.StatusConflict, "quiz is closed")
	case errors.Is(err, service.ErrAttemptLimitReached):
		return utils.SendError(c, fiber.StatusConflict, "attempt limit reached")
	case errors.Is(err, service.ErrUnknownAnswerOverride):
		return utils.SendError(c, fiber.StatusBadRequest, "override references an answer outside the attempt")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
