package dto

import (
	"time"

	"github.com/alphago/canvas-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
// DueDate is an ISO-8601 string; a malformed value is rejected at the API
// boundary, not silently dropped.
type AssignmentCreateRequest struct {
	CourseID          uint     `json:"course_id" validate:"required"`
	Name              string   `json:"name" validate:"required,min=3"`
	Description       string   `json:"description"`
	Points            float64  `json:"points" validate:"omitempty,gt=0"`
	DueDate           string   `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	LatePercentPerDay *float64 `json:"late_percent_per_day" validate:"omitempty,gte=0,lte=100"`
	LateGraceMinutes  int      `json:"late_grace_minutes" validate:"omitempty,gte=0"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Name              *string  `json:"name" validate:"omitempty,min=3"`
	Description       *string  `json:"description"`
	Points            *float64 `json:"points" validate:"omitempty,gt=0"`
	DueDate           *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	LatePercentPerDay *float64 `json:"late_percent_per_day" validate:"omitempty,gte=0,lte=100"`
	LateGraceMinutes  *int     `json:"late_grace_minutes" validate:"omitempty,gte=0"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID                uint       `json:"id"`
	CourseID          uint       `json:"course_id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Points            float64    `json:"points"`
	DueDate           *time.Time `json:"due_date"`
	LatePercentPerDay *float64   `json:"late_percent_per_day"`
	LateGraceMinutes  int        `json:"late_grace_minutes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                model.ID,
		CourseID:          model.CourseID,
		Name:              model.Name,
		Description:       model.Description,
		Points:            model.Points,
		DueDate:           model.DueDate,
		LatePercentPerDay: model.LatePercentPerDay,
		LateGraceMinutes:  model.LateGraceMinutes,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
