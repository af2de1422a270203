package models

import "time"

// Assignment is a gradeable item on a course. The late-policy columns are
// optional; a nil LatePercentPerDay means submissions are never deducted no
// matter how late they arrive.
type Assignment struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	CourseID          uint         `gorm:"not null;index" json:"course_id"`
	Name              string       `gorm:"size:255;not null" json:"name"`
	Description       string       `gorm:"type:text" json:"description"`
	Points            float64      `gorm:"not null;default:100" json:"points"`
	DueDate           *time.Time   `json:"due_date"`
	LatePercentPerDay *float64     `json:"late_percent_per_day"`
	LateGraceMinutes  int          `gorm:"not null;default:0" json:"late_grace_minutes"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	Submissions       []Submission `json:"-"`
}

// HasLatePolicy reports whether late submissions lose points on this assignment.
func (a Assignment) HasLatePolicy() bool {
	return a.LatePercentPerDay != nil && *a.LatePercentPerDay > 0
}

// PointCeiling returns the assignment's maximum score, defaulting to 100 when
// the column was left at zero by an older client.
func (a Assignment) PointCeiling() float64 {
	if a.Points <= 0 {
		return 100
	}
	return a.Points
}
