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
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/observability"
	"github.com/alphago/canvas-api/internal/repository"
)

// ErrQuizNotOpen indicates the quiz window has not opened yet.
var ErrQuizNotOpen = errors.New("quiz is not open yet")

// ErrQuizClosed indicates the quiz window has already closed.
var ErrQuizClosed = errors.New("quiz is closed")

// ErrAttemptLimitReached indicates the student used all allowed attempts.
var ErrAttemptLimitReached = errors.New("attempt limit reached")

// ErrAttemptNotFound indicates the requested attempt does not exist.
var ErrAttemptNotFound = errors.New("quiz attempt not found")

// QuizAttemptService owns the attempt lifecycle: window and attempt-limit
// guards, answer auto-grading, and attempt retrieval.
type QuizAttemptService interface {
	Submit(ctx context.Context, studentID uint, payload dto.QuizAttemptSubmitRequest, actor ActivityActor) (dto.QuizAttemptResponse, error)
	Get(ctx context.Context, id uint) (dto.QuizAttemptResponse, error)
	ListByQuizStudent(ctx context.Context, quizID, studentID uint) ([]dto.QuizAttemptResponse, error)
	ListByQuiz(ctx context.Context, quizID uint) ([]dto.QuizAttemptResponse, error)
}

type quizAttemptService struct {
	attempts  repository.AttemptRepository
	quizzes   repository.QuizRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewQuizAttemptService builds the attempt service.
func NewQuizAttemptService(attempts repository.AttemptRepository, quizzes repository.QuizRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) QuizAttemptService {
	return &quizAttemptService{
		attempts:  attempts,
		quizzes:   quizzes,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "quiz_attempt_service").Logger(),
		now:       time.Now,
	}
}

func (s *quizAttemptService) Submit(ctx context.Context, studentID uint, payload dto.QuizAttemptSubmitRequest, actor ActivityActor) (dto.QuizAttemptResponse, error) {
	tracer := otel.Tracer("github.com/alphago/canvas-api/internal/service/quiz_attempt")
	ctx, span := tracer.Start(ctx, "quiz.attempt.submit")
	span.SetAttributes(
		attribute.Int64("quiz.id", int64(payload.QuizID)),
		attribute.Int64("quiz.student_id", int64(studentID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.QuizAttemptResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, payload.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "quiz_not_found")
			return dto.QuizAttemptResponse{}, ErrQuizNotFound
		}
		span.RecordError(err)
		return dto.QuizAttemptResponse{}, err
	}

	now := s.now()
	if quiz.OpensAt != nil && now.Before(*quiz.OpensAt) {
		span.SetStatus(codes.Error, "quiz_not_open")
		return dto.QuizAttemptResponse{}, ErrQuizNotOpen
	}
	if quiz.ClosesAt != nil && now.After(*quiz.ClosesAt) {
		span.SetStatus(codes.Error, "quiz_closed")
		return dto.QuizAttemptResponse{}, ErrQuizClosed
	}

	if quiz.AllowedAttempts != nil {
		count, err := s.attempts.CountByQuizStudent(ctx, quiz.ID, studentID)
		if err != nil {
			span.RecordError(err)
			return dto.QuizAttemptResponse{}, err
		}
		if count >= int64(*quiz.AllowedAttempts) {
			span.SetStatus(codes.Error, "attempt_limit_reached")
			return dto.QuizAttemptResponse{}, ErrAttemptLimitReached
		}
	}

	questionsByID := make(map[uint]models.QuizQuestion, len(quiz.Questions))
	for _, question := range quiz.Questions {
		questionsByID[question.ID] = question
	}

	attempt := models.QuizAttempt{
		QuizID:      quiz.ID,
		StudentID:   studentID,
		Graded:      true,
		StartedAt:   now,
		SubmittedAt: now,
	}

	// The attempt is scored against the submitted answers only; questions
	// the student never answered do not count toward the max.
	for _, submitted := range payload.Answers {
		question, known := questionsByID[submitted.QuestionID]
		if !known {
			// Answers to questions outside the quiz are dropped, not scored.
			continue
		}

		answer := models.QuizAnswer{
			QuestionID:       question.ID,
			SelectedOptionID: submitted.SelectedOptionID,
			AnswerText:       submitted.AnswerText,
		}

		attempt.MaxScore += question.Points

		if question.IsAutoGradable() {
			s.gradeAnswer(question, &answer)
			if answer.PointsEarned != nil {
				attempt.Score += *answer.PointsEarned
			}
		} else {
			attempt.Graded = false
		}

		attempt.Answers = append(attempt.Answers, answer)
	}

	if err := s.attempts.Create(ctx, &attempt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "attempt_create_failed")
		return dto.QuizAttemptResponse{}, err
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "quiz.attempt.submitted",
			EntityType: "quiz_attempt",
			EntityID:   &attempt.ID,
			Metadata: map[string]interface{}{
				"quiz_id":    attempt.QuizID,
				"student_id": attempt.StudentID,
				"score":      attempt.Score,
				"max_score":  attempt.MaxScore,
				"graded":     attempt.Graded,
			},
		})
	}

	observability.QuizAttemptsSubmitted().Inc()
	span.SetAttributes(
		attribute.Float64("quiz.attempt.score", attempt.Score),
		attribute.Bool("quiz.attempt.graded", attempt.Graded),
	)
	s.logger.Info().
		Uint("attempt_id", attempt.ID).
		Uint("quiz_id", attempt.QuizID).
		Uint("student_id", attempt.StudentID).
		Float64("score", attempt.Score).
		Bool("graded", attempt.Graded).
		Msg("quiz attempt submitted")

	return dto.NewQuizAttemptResponse(attempt), nil
}

// gradeAnswer scores one auto-gradable answer in place. Objective questions
// compare the selected option's correctness flag; free-text questions compare
// the trimmed, case-folded text against the answer key.
func (s *quizAttemptService) gradeAnswer(question models.QuizQuestion, answer *models.QuizAnswer) {
	correct := false

	if question.IsObjective() {
		if answer.SelectedOptionID != nil {
			for _, option := range question.Options {
				if option.ID == *answer.SelectedOptionID {
					correct = option.IsCorrect
					break
				}
			}
		}
	} else {
		given := strings.ToLower(strings.TrimSpace(answer.AnswerText))
		expected := strings.ToLower(strings.TrimSpace(question.CorrectAnswer))
		correct = given != "" && given == expected
	}

	points := 0.0
	if correct {
		points = question.Points
	}

	answer.IsCorrect = &correct
	answer.PointsEarned = &points
}

func (s *quizAttemptService) Get(ctx context.Context, id uint) (dto.QuizAttemptResponse, error) {
	attempt, err := s.attempts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizAttemptResponse{}, ErrAttemptNotFound
		}

		return dto.QuizAttemptResponse{}, err
	}

	return dto.NewQuizAttemptResponse(attempt), nil
}

func (s *quizAttemptService) ListByQuizStudent(ctx context.Context, quizID, studentID uint) ([]dto.QuizAttemptResponse, error) {
	attempts, err := s.attempts.ListByQuizStudent(ctx, quizID, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizAttemptResponseSlice(attempts), nil
}

func (s *quizAttemptService) ListByQuiz(ctx context.Context, quizID uint) ([]dto.QuizAttemptResponse, error) {
	attempts, err := s.attempts.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizAttemptResponseSlice(attempts), nil
}
