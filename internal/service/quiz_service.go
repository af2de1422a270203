package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/repository"
)

// ErrQuizNotFound indicates the requested quiz does not exist.
var ErrQuizNotFound = errors.New("quiz not found")

// ErrQuizWindowInverted indicates closes_at is not after opens_at.
var ErrQuizWindowInverted = errors.New("quiz close time must be after open time")

// QuizService exposes quiz authoring and retrieval use cases.
type QuizService interface {
	ListByCourse(ctx context.Context, courseID uint) ([]dto.QuizResponse, error)
	// Get loads the quiz with ordered questions and options. Answer keys and
	// option correctness are stripped unless includeAnswers is set.
	Get(ctx context.Context, id uint, includeAnswers bool) (dto.QuizResponse, error)
	Create(ctx context.Context, payload dto.QuizCreateRequest) (dto.QuizResponse, error)
	Delete(ctx context.Context, id uint) error
}

type quizService struct {
	quizzes   repository.QuizRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewQuizService builds a new quiz service.
func NewQuizService(quizzes repository.QuizRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		quizzes:   quizzes,
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
	}
}

func (s *quizService) ListByCourse(ctx context.Context, courseID uint) ([]dto.QuizResponse, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	quizzes, err := s.quizzes.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizResponseSlice(quizzes), nil
}

func (s *quizService) Get(ctx context.Context, id uint, includeAnswers bool) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}

		return dto.QuizResponse{}, err
	}

	return dto.NewQuizResponse(quiz, includeAnswers), nil
}

func (s *quizService) Create(ctx context.Context, payload dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrCourseNotFound
		}
		return dto.QuizResponse{}, err
	}

	quiz := models.Quiz{
		CourseID:         payload.CourseID,
		Name:             payload.Name,
		Description:      payload.Description,
		TimeLimitMinutes: payload.TimeLimitMinutes,
		AllowedAttempts:  payload.AllowedAttempts,
	}

	if payload.OpensAt != nil {
		opensAt, err := time.Parse(time.RFC3339, *payload.OpensAt)
		if err != nil {
			return dto.QuizResponse{}, fmt.Errorf("invalid opens_at: %w", err)
		}
		quiz.OpensAt = &opensAt
	}
	if payload.ClosesAt != nil {
		closesAt, err := time.Parse(time.RFC3339, *payload.ClosesAt)
		if err != nil {
			return dto.QuizResponse{}, fmt.Errorf("invalid closes_at: %w", err)
		}
		quiz.ClosesAt = &closesAt
	}
	if quiz.OpensAt != nil && quiz.ClosesAt != nil && !quiz.ClosesAt.After(*quiz.OpensAt) {
		return dto.QuizResponse{}, ErrQuizWindowInverted
	}

	for questionIdx, question := range payload.Questions {
		order := question.Order
		if order == 0 {
			order = questionIdx + 1
		}

		model := models.QuizQuestion{
			Text:          question.Text,
			Type:          question.Type,
			Points:        question.Points,
			Order:         order,
			CorrectAnswer: question.CorrectAnswer,
		}

		for optionIdx, option := range question.Options {
			optionOrder := option.Order
			if optionOrder == 0 {
				optionOrder = optionIdx + 1
			}
			model.Options = append(model.Options, models.QuizQuestionOption{
				Text:      option.Text,
				IsCorrect: option.IsCorrect,
				Order:     optionOrder,
			})
		}

		quiz.Questions = append(quiz.Questions, model)
	}

	if err := s.quizzes.CreateWithQuestions(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().
		Uint("quiz_id", quiz.ID).
		Uint("course_id", quiz.CourseID).
		Int("questions", len(quiz.Questions)).
		Msg("quiz created")

	return dto.NewQuizResponse(quiz, true), nil
}

func (s *quizService) Delete(ctx context.Context, id uint) error {
	if err := s.quizzes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}

	s.logger.Info().Uint("quiz_id", id).Msg("quiz deleted")
	return nil
}
