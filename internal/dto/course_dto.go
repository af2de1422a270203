package dto

import (
	"time"

	"github.com/alphago/canvas-api/internal/models"
)

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description"`
	Semester    string `json:"semester" validate:"required"`
}

// CourseUpdateRequest describes the payload for updating a course.
type CourseUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3"`
	Description *string `json:"description"`
	Semester    *string `json:"semester"`
}

// CourseResponse is the serialized representation returned to API clients.
type CourseResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Semester    string    `json:"semester"`
	FacultyID   uint      `json:"faculty_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Semester:    model.Semester,
		FacultyID:   model.FacultyID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}

// EnrollmentCreateRequest describes the payload for enrolling a student.
type EnrollmentCreateRequest struct {
	StudentID uint   `json:"student_id" validate:"required"`
	CourseID  uint   `json:"course_id" validate:"required"`
	Semester  string `json:"semester" validate:"required"`
}

// EnrollmentResponse is the serialized enrollment returned to API clients.
type EnrollmentResponse struct {
	ID          uint      `json:"id"`
	StudentID   uint      `json:"student_id"`
	CourseID    uint      `json:"course_id"`
	Semester    string    `json:"semester"`
	CourseGrade *string   `json:"course_grade"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:        model.ID,
		StudentID: model.StudentID,
		CourseID:  model.CourseID,
		Semester:  model.Semester,
		CreatedAt: model.CreatedAt,
	}
	if model.CourseGrade != "" {
		grade := model.CourseGrade
		response.CourseGrade = &grade
	}

	return response
}

// NewEnrollmentResponseSlice converts a slice of models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}

	return responses
}
