package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/models"
)

// AttemptRepository defines persistence operations for quiz attempts and
// their answers.
type AttemptRepository interface {
	// CountByQuizStudent returns how many attempts the student has already
	// submitted for the quiz, for attempt-limit enforcement.
	CountByQuizStudent(ctx context.Context, quizID, studentID uint) (int64, error)
	// Create persists the attempt together with its answers in one
	// transaction; no attempt row exists if any answer insert fails.
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (models.QuizAttempt, error)
	ListByQuizStudent(ctx context.Context, quizID, studentID uint) ([]models.QuizAttempt, error)
	ListByQuiz(ctx context.Context, quizID uint) ([]models.QuizAttempt, error)
	Update(ctx context.Context, attempt *models.QuizAttempt) error
	UpdateAnswer(ctx context.Context, answer *models.QuizAnswer) error
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates a GORM-backed attempt repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) CountByQuizStudent(ctx context.Context, quizID, studentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(attempt).Error
	})
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&attempt, id).Error
	if err != nil {
		return models.QuizAttempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) ListByQuizStudent(ctx context.Context, quizID, studentID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("submitted_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *attemptRepository) ListByQuiz(ctx context.Context, quizID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("submitted_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *attemptRepository) Update(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Omit("Answers").Save(attempt).Error
}

func (r *attemptRepository) UpdateAnswer(ctx context.Context, answer *models.QuizAnswer) error {
	return r.db.WithContext(ctx).Save(answer).Error
}
