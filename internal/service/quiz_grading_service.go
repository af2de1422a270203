package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/repository"
)

// ErrUnknownAnswerOverride indicates a finalize payload references an answer
// that is not part of the attempt.
var ErrUnknownAnswerOverride = errors.New("override references answer outside attempt")

// QuizGradingService finalizes attempts that have pending manual answers.
type QuizGradingService interface {
	// FinalizeAttempt applies faculty per-answer overrides, recomputes the
	// attempt total from every answer, and marks the attempt graded.
	FinalizeAttempt(ctx context.Context, attemptID uint, payload dto.GradeAttemptRequest, actor ActivityActor) (dto.QuizAttemptResponse, error)
}

type quizGradingService struct {
	attempts  repository.AttemptRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewQuizGradingService builds the attempt finalizer.
func NewQuizGradingService(attempts repository.AttemptRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) QuizGradingService {
	return &quizGradingService{
		attempts:  attempts,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "quiz_grading_service").Logger(),
	}
}

func (s *quizGradingService) FinalizeAttempt(ctx context.Context, attemptID uint, payload dto.GradeAttemptRequest, actor ActivityActor) (dto.QuizAttemptResponse, error) {
	tracer := otel.Tracer("github.com/alphago/canvas-api/internal/service/quiz_grading")
	ctx, span := tracer.Start(ctx, "quiz.attempt.finalize")
	span.SetAttributes(
		attribute.Int64("quiz.attempt_id", int64(attemptID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.QuizAttemptResponse{}, err
	}

	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "attempt_not_found")
			return dto.QuizAttemptResponse{}, ErrAttemptNotFound
		}
		span.RecordError(err)
		return dto.QuizAttemptResponse{}, err
	}

	overridesByAnswer := make(map[uint]dto.AnswerGradeOverride, len(payload.Answers))
	for _, override := range payload.Answers {
		overridesByAnswer[override.AnswerID] = override
	}

	answerIDs := make(map[uint]bool, len(attempt.Answers))
	for _, answer := range attempt.Answers {
		answerIDs[answer.ID] = true
	}
	for answerID := range overridesByAnswer {
		if !answerIDs[answerID] {
			span.SetStatus(codes.Error, "unknown_answer_override")
			return dto.QuizAttemptResponse{}, ErrUnknownAnswerOverride
		}
	}

	for idx := range attempt.Answers {
		answer := &attempt.Answers[idx]
		override, ok := overridesByAnswer[answer.ID]
		if !ok {
			continue
		}

		points := override.PointsEarned
		answer.PointsEarned = &points
		if feedback := strings.TrimSpace(override.Feedback); feedback != "" {
			answer.Feedback = feedback
		}

		if err := s.attempts.UpdateAnswer(ctx, answer); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "answer_update_failed")
			return dto.QuizAttemptResponse{}, err
		}
	}

	// The total comes from every answer's current points, overridden or not,
	// so auto-graded answers keep counting.
	total := 0.0
	for _, answer := range attempt.Answers {
		if answer.PointsEarned != nil {
			total += *answer.PointsEarned
		}
	}

	attempt.Score = total
	attempt.Graded = true
	if feedback := strings.TrimSpace(payload.Feedback); feedback != "" {
		attempt.Feedback = feedback
	}

	if err := s.attempts.Update(ctx, &attempt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "attempt_update_failed")
		return dto.QuizAttemptResponse{}, err
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "quiz.attempt.finalized",
			EntityType: "quiz_attempt",
			EntityID:   &attempt.ID,
			Metadata: map[string]interface{}{
				"quiz_id":    attempt.QuizID,
				"student_id": attempt.StudentID,
				"score":      attempt.Score,
				"overrides":  len(payload.Answers),
			},
		})
	}

	span.SetAttributes(attribute.Float64("quiz.attempt.score", attempt.Score))
	s.logger.Info().
		Uint("attempt_id", attempt.ID).
		Float64("score", attempt.Score).
		Int("overrides", len(payload.Answers)).
		Msg("quiz attempt finalized")

	return dto.NewQuizAttemptResponse(attempt), nil
}
