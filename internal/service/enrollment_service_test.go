package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/models"
)

func newEnrollmentFixture() (*fakeEnrollmentRepo, *fakeActivityRecorder, EnrollmentService) {
	courses := newFakeCourseRepo(models.Course{ID: 1, Name: "Algorithms"})
	enrollments := &fakeEnrollmentRepo{}
	activity := &fakeActivityRecorder{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewEnrollmentService(enrollments, courses, validate, activity, testLogger())
	return enrollments, activity, svc
}

func TestEnrollCreatesRowAndRecordsActivity(t *testing.T) {
	enrollments, activity, svc := newEnrollmentFixture()

	result, err := svc.Enroll(context.Background(), dto.EnrollmentCreateRequest{
		StudentID: 10,
		CourseID:  1,
		Semester:  "2026S",
	}, ActivityActor{ID: 10, Role: "student"})
	require.NoError(t, err)

	require.Equal(t, uint(10), result.StudentID)
	require.Equal(t, uint(1), result.CourseID)
	require.Len(t, enrollments.enrollments, 1)

	require.Len(t, activity.entries, 1)
	require.Equal(t, "enrollment.created", activity.entries[0].Action)
}

func TestEnrollDuplicateRejected(t *testing.T) {
	enrollments, _, svc := newEnrollmentFixture()
	enrollments.enrollments = []models.Enrollment{{ID: 1, StudentID: 10, CourseID: 1}}

	_, err := svc.Enroll(context.Background(), dto.EnrollmentCreateRequest{
		StudentID: 10,
		CourseID:  1,
		Semester:  "2026S",
	}, ActivityActor{ID: 10, Role: "student"})
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.Len(t, enrollments.enrollments, 1)
}

func TestEnrollDuplicateRace(t *testing.T) {
	enrollments, _, svc := newEnrollmentFixture()
	enrollments.createErr = gorm.ErrDuplicatedKey

	_, err := svc.Enroll(context.Background(), dto.EnrollmentCreateRequest{
		StudentID: 10,
		CourseID:  1,
		Semester:  "2026S",
	}, ActivityActor{ID: 10, Role: "student"})
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestEnrollUnknownCourse(t *testing.T) {
	_, _, svc := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), dto.EnrollmentCreateRequest{
		StudentID: 10,
		CourseID:  999,
		Semester:  "2026S",
	}, ActivityActor{ID: 10, Role: "student"})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestSetCourseGradeMissingEnrollment(t *testing.T) {
	_, _, svc := newEnrollmentFixture()

	err := svc.SetCourseGrade(context.Background(), 10, 1, "A")
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestDropRemovesEnrollment(t *testing.T) {
	enrollments, _, svc := newEnrollmentFixture()
	enrollments.enrollments = []models.Enrollment{{ID: 1, StudentID: 10, CourseID: 1}}

	require.NoError(t, svc.Drop(context.Background(), 10, 1))
	require.Empty(t, enrollments.enrollments)

	err := svc.Drop(context.Background(), 10, 1)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
