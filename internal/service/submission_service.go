package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/repository"
)

// ErrSubmissionNotFound indicates the requested submission does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrUnsupportedFileType indicates the uploaded attachment type is not allowed.
var ErrUnsupportedFileType = errors.New("unsupported attachment type")

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

var allowedAttachmentTypes = []string{
	"application/pdf",
	"application/zip",
	"text/plain",
	"image/png",
	"image/jpeg",
}

// SubmissionService exposes submission use cases for students.
type SubmissionService interface {
	List(ctx context.Context, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	// Submit creates the student's submission for an assignment, or
	// overwrites it; either way the grading state is reset.
	Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	uploader    FileUploader
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService builds a new submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		uploader:    uploader,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}

		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.assignments.GetByID(ctx, payload.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	fileURL := ""
	if file != nil {
		url, err := s.uploadAttachment(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		fileURL = url
	}

	now := s.now()

	existing, err := s.submissions.GetByAssignmentStudent(ctx, payload.AssignmentID, studentID)
	switch {
	case err == nil:
		// Re-submission overwrites the row and resets grading state.
		existing.Content = payload.Content
		if fileURL != "" {
			existing.FileURL = fileURL
		}
		existing.Score = nil
		existing.Graded = false
		existing.Feedback = ""
		existing.GradedAt = nil
		existing.GradedBy = nil
		existing.SubmittedAt = now

		if err := s.submissions.Update(ctx, &existing); err != nil {
			return dto.SubmissionResponse{}, err
		}

		s.logger.Info().Uint("submission_id", existing.ID).Uint("student_id", studentID).Msg("submission replaced")
		return dto.NewSubmissionResponse(existing), nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		submission := models.Submission{
			AssignmentID: payload.AssignmentID,
			StudentID:    studentID,
			Content:      payload.Content,
			FileURL:      fileURL,
			SubmittedAt:  now,
		}

		if err := s.submissions.Create(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}

		s.logger.Info().Uint("submission_id", submission.ID).Uint("student_id", studentID).Msg("submission created")
		return dto.NewSubmissionResponse(submission), nil

	default:
		return dto.SubmissionResponse{}, err
	}
}

func (s *submissionService) uploadAttachment(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedAttachmentTypes...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, detected.String())
	}

	url, err := s.uploader.Upload(ctx, file.Filename, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return url, nil
}
