package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/service"
	"github.com/alphago/canvas-api/internal/utils"
)

// GradebookHandler serves the per-course gradebook matrix.
type GradebookHandler struct {
	service service.GradebookService
	logger  zerolog.Logger
}

// NewGradebookHandler builds a gradebook handler instance.
func NewGradebookHandler(service service.GradebookService, logger zerolog.Logger) *GradebookHandler {
	return &GradebookHandler{
		service: service,
		logger:  logger.With().Str("component", "gradebook_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradebookHandler) Register(router fiber.Router) {
	router.Get("/course/:courseId", h.get)
}

func (h *GradebookHandler) get(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	applyLatePolicy, err := parseQueryBool(c, "apply_late_policy")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	curveTo, err := parseQueryFloat(c, "curve_to")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if curveTo != nil && *curveTo <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "curve_to must be positive")
	}

	req := dto.GradebookRequest{
		Semester:     c.Query("semester"),
		CurveToScore: curveTo,
	}
	if applyLatePolicy != nil {
		req.ApplyLatePolicy = *applyLatePolicy
	}

	gradebook, err := h.service.Get(c.UserContext(), courseID, req)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "gradebook assembled", gradebook)
}
