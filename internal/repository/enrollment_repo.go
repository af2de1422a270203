package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/models"
)

// EnrollmentRepository defines persistence operations for enrollments.
type EnrollmentRepository interface {
	ListByCourse(ctx context.Context, courseID uint, semester string) ([]models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID uint) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateCourseGrade(ctx context.Context, studentID, courseID uint, grade string) error
	Delete(ctx context.Context, studentID, courseID uint) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) ListByCourse(ctx context.Context, courseID uint, semester string) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).Preload("Student").Where("course_id = ?", courseID)
	if semester != "" {
		query = query.Where("semester = ?", semester)
	}

	var enrollments []models.Enrollment
	if err := query.Order("student_id ASC").Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).Preload("Course").
		Where("student_id = ?", studentID).
		Order("course_id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) Exists(ctx context.Context, studentID, courseID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) UpdateCourseGrade(ctx context.Context, studentID, courseID uint, grade string) error {
	result := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Update("course_grade", grade)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *enrollmentRepository) Delete(ctx context.Context, studentID, courseID uint) error {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
