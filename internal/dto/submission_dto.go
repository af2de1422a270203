package dto

import (
	"time"

	"github.com/alphago/canvas-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for handing in an
// assignment; the file part is optional and handled separately.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	Content      string `json:"content"`
}

// GradeSubmissionRequest is the faculty payload for grading one submission.
// Score is an opaque string so both "87.5" and "A-" are valid grades.
type GradeSubmissionRequest struct {
	Score    string `json:"score" validate:"required"`
	Feedback string `json:"feedback"`
}

// SubmissionResponse is the serialized representation returned to API clients.
type SubmissionResponse struct {
	ID           uint       `json:"id"`
	AssignmentID uint       `json:"assignment_id"`
	StudentID    uint       `json:"student_id"`
	Content      string     `json:"content"`
	FileURL      string     `json:"file_url"`
	Score        *string    `json:"score"`
	Graded       bool       `json:"graded"`
	Feedback     string     `json:"feedback"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Content:      model.Content,
		FileURL:      model.FileURL,
		Score:        model.Score,
		Graded:       model.Graded,
		Feedback:     model.Feedback,
		SubmittedAt:  model.SubmittedAt,
		GradedAt:     model.GradedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
