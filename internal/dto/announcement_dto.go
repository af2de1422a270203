package dto

import (
	"time"

	"github.com/alphago/canvas-api/internal/models"
)

// AnnouncementCreateRequest describes the payload for posting an announcement.
type AnnouncementCreateRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Title    string `json:"title" validate:"required,min=3"`
	Body     string `json:"body" validate:"required"`
}

// AnnouncementResponse is the serialized announcement returned to clients.
type AnnouncementResponse struct {
	ID        uint      `json:"id"`
	CourseID  uint      `json:"course_id"`
	AuthorID  uint      `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAnnouncementResponse converts a model into a DTO.
func NewAnnouncementResponse(model models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        model.ID,
		CourseID:  model.CourseID,
		AuthorID:  model.AuthorID,
		Title:     model.Title,
		Body:      model.Body,
		CreatedAt: model.CreatedAt,
	}
}

// NewAnnouncementResponseSlice converts a slice of models into DTOs.
func NewAnnouncementResponseSlice(items []models.Announcement) []AnnouncementResponse {
	responses := make([]AnnouncementResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewAnnouncementResponse(item))
	}

	return responses
}
