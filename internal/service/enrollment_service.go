package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/repository"
)

// ErrAlreadyEnrolled indicates the student already has an enrollment row for
// the course.
var ErrAlreadyEnrolled = errors.New("student already enrolled in course")

// ErrEnrollmentNotFound indicates no enrollment exists for the pair.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// EnrollmentService exposes enrollment use cases.
type EnrollmentService interface {
	Enroll(ctx context.Context, payload dto.EnrollmentCreateRequest, actor ActivityActor) (dto.EnrollmentResponse, error)
	ListByCourse(ctx context.Context, courseID uint, semester string) ([]dto.EnrollmentResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error)
	SetCourseGrade(ctx context.Context, studentID, courseID uint, grade string) error
	Drop(ctx context.Context, studentID, courseID uint) error
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
}

// NewEnrollmentService builds a new enrollment service.
func NewEnrollmentService(enrollments repository.EnrollmentRepository, courses repository.CourseRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		courses:     courses,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, payload dto.EnrollmentCreateRequest, actor ActivityActor) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrCourseNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	exists, err := s.enrollments.Exists(ctx, payload.StudentID, payload.CourseID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if exists {
		return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
	}

	enrollment := models.Enrollment{
		StudentID: payload.StudentID,
		CourseID:  payload.CourseID,
		Semester:  payload.Semester,
	}

	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		// Two concurrent enrolls race past the Exists check; the unique
		// index decides the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
		}
		return dto.EnrollmentResponse{}, err
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "enrollment.created",
			EntityType: "enrollment",
			EntityID:   &enrollment.ID,
			Metadata: map[string]interface{}{
				"student_id": enrollment.StudentID,
				"course_id":  enrollment.CourseID,
				"semester":   enrollment.Semester,
			},
		})
	}

	s.logger.Info().
		Uint("student_id", enrollment.StudentID).
		Uint("course_id", enrollment.CourseID).
		Msg("student enrolled")

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) ListByCourse(ctx context.Context, courseID uint, semester string) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID, semester)
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) SetCourseGrade(ctx context.Context, studentID, courseID uint, grade string) error {
	if err := s.enrollments.UpdateCourseGrade(ctx, studentID, courseID, grade); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	return nil
}

func (s *enrollmentService) Drop(ctx context.Context, studentID, courseID uint) error {
	if err := s.enrollments.Delete(ctx, studentID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("student_id", studentID).Uint("course_id", courseID).Msg("enrollment dropped")
	return nil
}
