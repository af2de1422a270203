package models

import "time"

// QuizAttempt is one completed submission event for a quiz. Attempts are only
// created at submission time, so StartedAt equals SubmittedAt unless a client
// reports an earlier start. Graded stays false while any answer is waiting on
// manual grading.
type QuizAttempt struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	QuizID      uint         `gorm:"not null;index:idx_attempt_quiz_student" json:"quiz_id"`
	StudentID   uint         `gorm:"not null;index:idx_attempt_quiz_student" json:"student_id"`
	Score       float64      `gorm:"not null;default:0" json:"score"`
	MaxScore    float64      `gorm:"not null;default:0" json:"max_score"`
	Graded      bool         `gorm:"not null;default:false" json:"graded"`
	StartedAt   time.Time    `gorm:"not null" json:"started_at"`
	SubmittedAt time.Time    `gorm:"not null" json:"submitted_at"`
	Feedback    string       `gorm:"type:text" json:"feedback"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Answers     []QuizAnswer `json:"answers,omitempty"`
}

// QuizAnswer records what a student submitted for one question. IsCorrect and
// PointsEarned stay nil while the answer is pending manual grading.
type QuizAnswer struct {
	ID               uint     `gorm:"primaryKey" json:"id"`
	AttemptID        uint     `gorm:"not null;index" json:"attempt_id"`
	QuestionID       uint     `gorm:"not null" json:"question_id"`
	SelectedOptionID *uint    `json:"selected_option_id"`
	AnswerText       string   `gorm:"type:text" json:"answer_text"`
	IsCorrect        *bool    `json:"is_correct"`
	PointsEarned     *float64 `json:"points_earned"`
	Feedback         string   `gorm:"type:text" json:"feedback"`
}

// IsPending reports whether the answer still needs manual grading.
func (a QuizAnswer) IsPending() bool {
	return a.PointsEarned == nil
}
