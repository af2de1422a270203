package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/grading"
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/observability"
	"github.com/alphago/canvas-api/internal/repository"
)

// ErrScoreExceedsCeiling indicates a numeric grade surpasses the assignment's
// point ceiling. Letter grades are exempt.
var ErrScoreExceedsCeiling = errors.New("score exceeds assignment point ceiling")

// GradingService encapsulates submission grading for faculty.
type GradingService interface {
	Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error)
}

type gradingService struct {
	repo      repository.SubmissionRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGradingService constructs the submission grading service.
func NewGradingService(repo repository.SubmissionRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) GradingService {
	return &gradingService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "grading_service").Logger(),
		now:       time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/alphago/canvas-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.submission")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	scoreValue := strings.TrimSpace(payload.Score)
	parsed := grading.ParseScore(&scoreValue)
	if numeric, ok := parsed.Numeric(); ok && numeric > submission.Assignment.PointCeiling()+1e-9 {
		span.SetStatus(codes.Error, "score_exceeds_ceiling")
		return dto.SubmissionResponse{}, ErrScoreExceedsCeiling
	}

	submission.Score = &scoreValue
	submission.Graded = true
	submission.Feedback = strings.TrimSpace(payload.Feedback)
	gradedAt := s.now()
	submission.GradedAt = &gradedAt
	gradedBy := actor.ID
	submission.GradedBy = &gradedBy

	if err := s.repo.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	history := models.SubmissionGradeHistory{
		SubmissionID: submission.ID,
		Score:        scoreValue,
		Feedback:     submission.Feedback,
		GradedBy:     actor.ID,
		GradedAt:     gradedAt,
	}
	if err := s.repo.CreateHistory(ctx, &history); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to persist grading history")
		span.RecordError(err)
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "submission.graded",
			EntityType: "submission",
			EntityID:   &submission.ID,
			Metadata: map[string]interface{}{
				"submission_id": submission.ID,
				"student_id":    submission.StudentID,
				"assignment_id": submission.AssignmentID,
				"score":         scoreValue,
			},
		})
	}

	observability.SubmissionsGraded().Inc()
	span.SetAttributes(attribute.String("grading.score", scoreValue))

	return dto.NewSubmissionResponse(submission), nil
}
