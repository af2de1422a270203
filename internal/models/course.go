package models

import "time"

// Course groups assignments, quizzes and enrollments under one faculty owner.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Semester    string    `gorm:"size:32" json:"semester"`
	FacultyID   uint      `gorm:"not null" json:"faculty_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Assignments []Assignment `json:"-"`
	Quizzes     []Quiz       `json:"-"`
}

// Enrollment links a student to a course for a semester. The composite unique
// index is what turns a duplicate enrollment into a storage conflict.
type Enrollment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID    uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	Semester    string    `gorm:"size:32" json:"semester"`
	CourseGrade string    `gorm:"size:8" json:"course_grade"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Student     User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course      Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
