package dto

// Gradebook cell statuses. "late" is only assigned to cells that are both
// graded and past due.
const (
	CellStatusMissing   = "missing"
	CellStatusSubmitted = "submitted"
	CellStatusGraded    = "graded"
	CellStatusLate      = "late"
)

// GradebookRequest carries the optional knobs on a gradebook fetch.
type GradebookRequest struct {
	Semester        string
	ApplyLatePolicy bool
	CurveToScore    *float64
}

// AssignmentHeader describes one gradebook column.
type AssignmentHeader struct {
	AssignmentID   uint    `json:"assignment_id"`
	AssignmentName string  `json:"assignment_name"`
	Points         float64 `json:"points"`
}

// GradebookCell is the derived score/status unit for one student on one
// assignment. Score keeps the stored string form; ScoreNumeric is nil for
// missing, ungraded or letter-graded cells.
type GradebookCell struct {
	AssignmentID         uint     `json:"assignment_id"`
	Score                *string  `json:"score"`
	ScoreNumeric         *float64 `json:"score_numeric"`
	Status               string   `json:"status"`
	LateDeductionApplied *float64 `json:"late_deduction_applied"`
	Curved               bool     `json:"curved"`
}

// GradebookRow is one enrolled student's dense row of cells.
type GradebookRow struct {
	StudentID   uint            `json:"student_id"`
	StudentName string          `json:"student_name"`
	Cells       []GradebookCell `json:"cells"`
	CourseGrade *string         `json:"course_grade"`
}

// GradebookResponse is the dense student-by-assignment matrix for a course.
type GradebookResponse struct {
	CourseID          uint               `json:"course_id"`
	CourseName        string             `json:"course_name"`
	AssignmentHeaders []AssignmentHeader `json:"assignment_headers"`
	Rows              []GradebookRow     `json:"rows"`
	ApplyLatePolicy   bool               `json:"apply_late_policy"`
	CurveToScore      *float64           `json:"curve_to_score"`
}
