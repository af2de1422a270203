package models

import "time"

// Submission is the single submission a student has for an assignment.
// Re-submitting overwrites the row and resets the grading state. The score is
// kept as an opaque string so faculty can record either numeric or letter
// grades; parsing happens in the grading package.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"student_id"`
	Content      string     `gorm:"type:text" json:"content"`
	FileURL      string     `gorm:"size:512" json:"file_url"`
	Score        *string    `gorm:"size:32" json:"score"`
	Graded       bool       `gorm:"not null;default:false" json:"graded"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
	GradedBy     *uint      `json:"graded_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// SubmissionGradeHistory keeps one row per grading action so overwritten
// grades stay auditable.
type SubmissionGradeHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	Score        string    `gorm:"size:32;not null" json:"score"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	GradedBy     uint      `gorm:"not null" json:"graded_by"`
	GradedAt     time.Time `gorm:"not null" json:"graded_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsLate reports whether the submission arrived after the given due date.
func (s Submission) IsLate(due *time.Time) bool {
	if due == nil {
		return false
	}
	return s.SubmittedAt.After(*due)
}
