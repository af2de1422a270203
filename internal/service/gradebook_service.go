package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/grading"
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/observability"
	"github.com/alphago/canvas-api/internal/repository"
)

// GradebookService assembles the dense student-by-assignment matrix for a
// course. Every call recomputes from current rows; nothing is cached, so the
// view is always consistent with the latest committed data.
type GradebookService interface {
	Get(ctx context.Context, courseID uint, req dto.GradebookRequest) (dto.GradebookResponse, error)
}

type gradebookService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

// NewGradebookService builds the gradebook assembler.
func NewGradebookService(courses repository.CourseRepository, enrollments repository.EnrollmentRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) GradebookService {
	return &gradebookService{
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		logger:      logger.With().Str("component", "gradebook_service").Logger(),
	}
}

func (s *gradebookService) Get(ctx context.Context, courseID uint, req dto.GradebookRequest) (dto.GradebookResponse, error) {
	tracer := otel.Tracer("github.com/alphago/canvas-api/internal/service/gradebook")
	ctx, span := tracer.Start(ctx, "gradebook.assemble")
	span.SetAttributes(
		attribute.Int64("gradebook.course_id", int64(courseID)),
		attribute.Bool("gradebook.apply_late_policy", req.ApplyLatePolicy),
	)
	defer span.End()

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "course_not_found")
			return dto.GradebookResponse{}, ErrCourseNotFound
		}
		span.RecordError(err)
		return dto.GradebookResponse{}, err
	}

	response := dto.GradebookResponse{
		CourseID:          course.ID,
		CourseName:        course.Name,
		AssignmentHeaders: []dto.AssignmentHeader{},
		Rows:              []dto.GradebookRow{},
		ApplyLatePolicy:   req.ApplyLatePolicy,
		CurveToScore:      req.CurveToScore,
	}

	enrollments, err := s.enrollments.ListByCourse(ctx, courseID, req.Semester)
	if err != nil {
		span.RecordError(err)
		return dto.GradebookResponse{}, err
	}
	if len(enrollments) == 0 {
		// An empty roster is a valid gradebook, not an error.
		return response, nil
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		return dto.GradebookResponse{}, err
	}

	assignmentIDs := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
		response.AssignmentHeaders = append(response.AssignmentHeaders, dto.AssignmentHeader{
			AssignmentID:   assignment.ID,
			AssignmentName: assignment.Name,
			Points:         assignment.PointCeiling(),
		})
	}

	submissions, err := s.submissions.ListByAssignments(ctx, assignmentIDs)
	if err != nil {
		span.RecordError(err)
		return dto.GradebookResponse{}, err
	}

	type pairKey struct {
		studentID    uint
		assignmentID uint
	}
	submissionByPair := make(map[pairKey]models.Submission, len(submissions))
	for _, submission := range submissions {
		submissionByPair[pairKey{submission.StudentID, submission.AssignmentID}] = submission
	}

	var numericScores []float64
	for _, enrollment := range enrollments {
		row := dto.GradebookRow{
			StudentID:   enrollment.StudentID,
			StudentName: enrollment.Student.FullName(),
			Cells:       make([]dto.GradebookCell, 0, len(assignments)),
		}
		if enrollment.CourseGrade != "" {
			grade := enrollment.CourseGrade
			row.CourseGrade = &grade
		}

		for _, assignment := range assignments {
			submission, ok := submissionByPair[pairKey{enrollment.StudentID, assignment.ID}]
			if !ok {
				row.Cells = append(row.Cells, dto.GradebookCell{
					AssignmentID: assignment.ID,
					Status:       dto.CellStatusMissing,
				})
				continue
			}

			cell := s.buildCell(assignment, submission, req.ApplyLatePolicy)
			if cell.ScoreNumeric != nil {
				numericScores = append(numericScores, *cell.ScoreNumeric)
			}
			row.Cells = append(row.Cells, cell)
		}

		response.Rows = append(response.Rows, row)
	}

	if req.CurveToScore != nil {
		s.applyCurve(&response, numericScores, *req.CurveToScore)
	}

	observability.GradebookBuilds().Inc()
	span.SetAttributes(
		attribute.Int("gradebook.students", len(response.Rows)),
		attribute.Int("gradebook.assignments", len(assignments)),
	)

	return response, nil
}

// buildCell derives one cell from a submission. A malformed score string
// degrades to a nil numeric value instead of failing the whole view.
func (s *gradebookService) buildCell(assignment models.Assignment, submission models.Submission, applyLatePolicy bool) dto.GradebookCell {
	cell := dto.GradebookCell{
		AssignmentID: assignment.ID,
		Score:        submission.Score,
		Status:       dto.CellStatusSubmitted,
	}

	score := grading.ParseScore(submission.Score)
	if numeric, ok := score.Numeric(); ok {
		value := numeric
		cell.ScoreNumeric = &value
	}

	if submission.Graded {
		cell.Status = dto.CellStatusGraded
	}

	submittedAt := submission.SubmittedAt
	daysLate := grading.DaysLate(assignment.DueDate, &submittedAt)
	if daysLate > 0 && cell.Status == dto.CellStatusGraded {
		cell.Status = dto.CellStatusLate
	}

	if applyLatePolicy && assignment.HasLatePolicy() && cell.ScoreNumeric != nil && daysLate > 0 {
		policy := grading.LatePolicy{
			PercentPerDay: *assignment.LatePercentPerDay,
			GraceMinutes:  assignment.LateGraceMinutes,
		}
		result := policy.Apply(*cell.ScoreNumeric, assignment.PointCeiling(), daysLate)
		if result.Deduction > 0 {
			deduction := result.Deduction
			adjusted := result.AdjustedScore
			formatted := fmt.Sprintf("%.1f", adjusted)

			cell.LateDeductionApplied = &deduction
			cell.ScoreNumeric = &adjusted
			cell.Score = &formatted
			observability.LateDeductions().Inc()
		}
	}

	return cell
}

// applyCurve rescales every numeric cell in place so the best score maps to
// the requested ceiling. Late deductions have already been applied, so the
// curve operates on adjusted values.
func (s *gradebookService) applyCurve(response *dto.GradebookResponse, numericScores []float64, target float64) {
	factor, ok := grading.CurveFactor(numericScores, target)
	if !ok {
		return
	}

	for rowIdx := range response.Rows {
		for cellIdx := range response.Rows[rowIdx].Cells {
			cell := &response.Rows[rowIdx].Cells[cellIdx]
			if cell.ScoreNumeric == nil {
				continue
			}

			curved := grading.CurveScore(*cell.ScoreNumeric, factor)
			formatted := fmt.Sprintf("%.1f", curved)
			cell.ScoreNumeric = &curved
			cell.Score = &formatted
			cell.Curved = true
		}
	}
}
