package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/middleware"
	"github.com/alphago/canvas-api/internal/service"
	"github.com/alphago/canvas-api/internal/utils"
)

// AnnouncementHandler manages course announcements and their SSE stream.
type AnnouncementHandler struct {
	service service.AnnouncementService
	logger  zerolog.Logger
	timeout time.Duration
}

// NewAnnouncementHandler constructs a handler instance. timeout controls the
// SSE keepalive cadence.
func NewAnnouncementHandler(service service.AnnouncementService, logger zerolog.Logger, timeout time.Duration) *AnnouncementHandler {
	return &AnnouncementHandler{
		service: service,
		logger:  logger.With().Str("component", "announcement_handler").Logger(),
		timeout: timeout,
	}
}

// Register binds the announcement routes.
func (h *AnnouncementHandler) Register(router fiber.Router, facultyOnly fiber.Handler) {
	router.Get("/course/:courseId", h.listByCourse)
	router.Get("/course/:courseId/stream", h.stream)
	router.Post("", facultyOnly, h.publish)
	router.Delete("/:id", facultyOnly, h.delete)
}

func (h *AnnouncementHandler) publish(c *fiber.Ctx) error {
	var payload dto.AnnouncementCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	announcement, err := h.service.Publish(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "announcement published", announcement)
}

func (h *AnnouncementHandler) listByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	announcements, err := h.service.ListByCourse(c.UserContext(), courseID, limit, offset)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "announcements retrieved", announcements)
}

func (h *AnnouncementHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "announcement deleted", nil)
}

func (h *AnnouncementHandler) stream(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
	ctx, cancel := context.WithCancel(ctx)

	stream, cleanup := h.service.Subscribe(courseID)

	keepAliveInterval := h.timeout
	if keepAliveInterval <= 0 {
		keepAliveInterval = 30 * time.Second
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		ticker := time.NewTicker(keepAliveInterval / 2)
		defer ticker.Stop()

		for {
			select {
			case announcement, ok := <-stream:
				if !ok {
					return
				}
				if err := writeAnnouncementEvent(w, announcement); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write announcement event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write announcement keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func (h *AnnouncementHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrAnnouncementNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "announcement not found")
	case errors.Is(err, service.ErrAnnouncementEmpty):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "announcement body is empty after sanitization")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func writeAnnouncementEvent(w *bufio.Writer, announcement dto.AnnouncementResponse) error {
	payload, err := json.Marshal(announcement)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: announcement\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
