package models

import (
	"strings"
	"time"
)

// Question types. Multiple choice and true/false grade off option
// correctness; short answer and fill-in-blank grade off an exact-match answer
// key when one is configured; essays always wait for a human.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeShortAnswer    = "short_answer"
	QuestionTypeFillInBlank    = "fill_in_blank"
	QuestionTypeEssay          = "essay"
)

// Quiz is an assessment on a course. Open/close window and attempt limit are
// all optional; nil means unrestricted.
type Quiz struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CourseID         uint           `gorm:"not null;index" json:"course_id"`
	Name             string         `gorm:"size:255;not null" json:"name"`
	Description      string         `gorm:"type:text" json:"description"`
	TimeLimitMinutes *int           `json:"time_limit_minutes"`
	AllowedAttempts  *int           `json:"allowed_attempts"`
	OpensAt          *time.Time     `json:"opens_at"`
	ClosesAt         *time.Time     `json:"closes_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Questions        []QuizQuestion `json:"questions,omitempty"`
}

// QuizQuestion belongs to a quiz. CorrectAnswer is only meaningful for the
// free-text auto-gradable types.
type QuizQuestion struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	QuizID        uint                 `gorm:"not null;index" json:"quiz_id"`
	Text          string               `gorm:"type:text;not null" json:"text"`
	Type          string               `gorm:"size:32;not null" json:"type"`
	Points        float64              `gorm:"not null" json:"points"`
	Order         int                  `gorm:"column:question_order;not null;default:0" json:"order"`
	CorrectAnswer string               `gorm:"size:512" json:"-"`
	CreatedAt     time.Time            `json:"created_at"`
	Options       []QuizQuestionOption `json:"options,omitempty"`
}

// QuizQuestionOption is one selectable choice on an objective question.
type QuizQuestionOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"is_correct"`
	Order      int    `gorm:"column:option_order;not null;default:0" json:"order"`
}

// IsObjective reports whether the question is answered by selecting an option.
func (q QuizQuestion) IsObjective() bool {
	return q.Type == QuestionTypeMultipleChoice || q.Type == QuestionTypeTrueFalse
}

// IsAutoGradable reports whether correctness can be decided without a human:
// objective questions always, free-text questions only when an answer key is
// configured.
func (q QuizQuestion) IsAutoGradable() bool {
	if q.IsObjective() {
		return true
	}
	if q.Type == QuestionTypeShortAnswer || q.Type == QuestionTypeFillInBlank {
		return strings.TrimSpace(q.CorrectAnswer) != ""
	}
	return false
}
