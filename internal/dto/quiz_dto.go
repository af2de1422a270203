package dto

import (
	"time"

	"github.com/alphago/canvas-api/internal/models"
)

// QuizOptionCreateRequest is one selectable choice on an objective question.
type QuizOptionCreateRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order"`
}

// QuizQuestionCreateRequest is one question inside a quiz creation payload.
type QuizQuestionCreateRequest struct {
	Text          string                    `json:"text" validate:"required"`
	Type          string                    `json:"type" validate:"required,oneof=multiple_choice true_false short_answer fill_in_blank essay"`
	Points        float64                   `json:"points" validate:"required,gt=0"`
	Order         int                       `json:"order"`
	CorrectAnswer string                    `json:"correct_answer"`
	Options       []QuizOptionCreateRequest `json:"options" validate:"omitempty,dive"`
}

// QuizCreateRequest creates a quiz together with its questions and options.
type QuizCreateRequest struct {
	CourseID         uint                        `json:"course_id" validate:"required"`
	Name             string                      `json:"name" validate:"required,min=3"`
	Description      string                      `json:"description"`
	TimeLimitMinutes *int                        `json:"time_limit_minutes" validate:"omitempty,gt=0"`
	AllowedAttempts  *int                        `json:"allowed_attempts" validate:"omitempty,gt=0"`
	OpensAt          *string                     `json:"opens_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ClosesAt         *string                     `json:"closes_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Questions        []QuizQuestionCreateRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuizOptionResponse is a serialized question option. IsCorrect is always
// false on student-facing responses.
type QuizOptionResponse struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order"`
}

// QuizQuestionResponse is a serialized question with its options.
type QuizQuestionResponse struct {
	ID      uint                 `json:"id"`
	Text    string               `json:"text"`
	Type    string               `json:"type"`
	Points  float64              `json:"points"`
	Order   int                  `json:"order"`
	Options []QuizOptionResponse `json:"options"`
}

// QuizResponse is the serialized quiz returned to API clients.
type QuizResponse struct {
	ID               uint                   `json:"id"`
	CourseID         uint                   `json:"course_id"`
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	TimeLimitMinutes *int                   `json:"time_limit_minutes"`
	AllowedAttempts  *int                   `json:"allowed_attempts"`
	OpensAt          *time.Time             `json:"opens_at"`
	ClosesAt         *time.Time             `json:"closes_at"`
	CreatedAt        time.Time              `json:"created_at"`
	Questions        []QuizQuestionResponse `json:"questions,omitempty"`
}

// NewQuizResponse converts a quiz into a DTO. When includeAnswers is false
// the option correctness flags are blanked so students cannot scrape the key.
func NewQuizResponse(model models.Quiz, includeAnswers bool) QuizResponse {
	questions := make([]QuizQuestionResponse, 0, len(model.Questions))
	for _, question := range model.Questions {
		options := make([]QuizOptionResponse, 0, len(question.Options))
		for _, option := range question.Options {
			isCorrect := option.IsCorrect
			if !includeAnswers {
				isCorrect = false
			}
			options = append(options, QuizOptionResponse{
				ID:        option.ID,
				Text:      option.Text,
				IsCorrect: isCorrect,
				Order:     option.Order,
			})
		}
		questions = append(questions, QuizQuestionResponse{
			ID:      question.ID,
			Text:    question.Text,
			Type:    question.Type,
			Points:  question.Points,
			Order:   question.Order,
			Options: options,
		})
	}

	return QuizResponse{
		ID:               model.ID,
		CourseID:         model.CourseID,
		Name:             model.Name,
		Description:      model.Description,
		TimeLimitMinutes: model.TimeLimitMinutes,
		AllowedAttempts:  model.AllowedAttempts,
		OpensAt:          model.OpensAt,
		ClosesAt:         model.ClosesAt,
		CreatedAt:        model.CreatedAt,
		Questions:        questions,
	}
}

// NewQuizResponseSlice converts quizzes into header-only DTOs (no questions).
func NewQuizResponseSlice(quizzes []models.Quiz) []QuizResponse {
	responses := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		quiz.Questions = nil
		responses = append(responses, NewQuizResponse(quiz, false))
	}

	return responses
}

// QuizAnswerSubmit is one answer inside an attempt submission.
type QuizAnswerSubmit struct {
	QuestionID       uint   `json:"question_id" validate:"required"`
	SelectedOptionID *uint  `json:"selected_option_id"`
	AnswerText       string `json:"answer_text"`
}

// QuizAttemptSubmitRequest is the payload for submitting a quiz attempt.
type QuizAttemptSubmitRequest struct {
	QuizID  uint               `json:"quiz_id" validate:"required"`
	Answers []QuizAnswerSubmit `json:"answers" validate:"required,min=1,dive"`
}

// QuizAnswerResponse is a serialized answer with its grading state.
type QuizAnswerResponse struct {
	ID               uint     `json:"id"`
	QuestionID       uint     `json:"question_id"`
	SelectedOptionID *uint    `json:"selected_option_id"`
	AnswerText       string   `json:"answer_text"`
	IsCorrect        *bool    `json:"is_correct"`
	PointsEarned     *float64 `json:"points_earned"`
	Feedback         string   `json:"feedback"`
}

// QuizAttemptResponse is a serialized attempt with per-answer results.
type QuizAttemptResponse struct {
	ID          uint                 `json:"id"`
	QuizID      uint                 `json:"quiz_id"`
	StudentID   uint                 `json:"student_id"`
	Score       float64              `json:"score"`
	MaxScore    float64              `json:"max_score"`
	Graded      bool                 `json:"graded"`
	StartedAt   time.Time            `json:"started_at"`
	SubmittedAt time.Time            `json:"submitted_at"`
	Feedback    string               `json:"feedback"`
	Answers     []QuizAnswerResponse `json:"answers,omitempty"`
}

// NewQuizAttemptResponse converts an attempt into a DTO.
func NewQuizAttemptResponse(model models.QuizAttempt) QuizAttemptResponse {
	answers := make([]QuizAnswerResponse, 0, len(model.Answers))
	for _, answer := range model.Answers {
		answers = append(answers, QuizAnswerResponse{
			ID:               answer.ID,
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.SelectedOptionID,
			AnswerText:       answer.AnswerText,
			IsCorrect:        answer.IsCorrect,
			PointsEarned:     answer.PointsEarned,
			Feedback:         answer.Feedback,
		})
	}

	return QuizAttemptResponse{
		ID:          model.ID,
		QuizID:      model.QuizID,
		StudentID:   model.StudentID,
		Score:       model.Score,
		MaxScore:    model.MaxScore,
		Graded:      model.Graded,
		StartedAt:   model.StartedAt,
		SubmittedAt: model.SubmittedAt,
		Feedback:    model.Feedback,
		Answers:     answers,
	}
}

// NewQuizAttemptResponseSlice converts attempts into DTOs without answers.
func NewQuizAttemptResponseSlice(attempts []models.QuizAttempt) []QuizAttemptResponse {
	responses := make([]QuizAttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		attempt.Answers = nil
		responses = append(responses, NewQuizAttemptResponse(attempt))
	}

	return responses
}

// AnswerGradeOverride is one faculty override inside a finalize payload.
type AnswerGradeOverride struct {
	AnswerID     uint    `json:"answer_id" validate:"required"`
	PointsEarned float64 `json:"points_earned" validate:"gte=0"`
	Feedback     string  `json:"feedback"`
}

// GradeAttemptRequest is the faculty payload for finalizing an attempt.
// Answers may be empty: a finalize with only feedback settles the attempt
// at its current per-answer points.
type GradeAttemptRequest struct {
	Answers  []AnswerGradeOverride `json:"answers" validate:"omitempty,dive"`
	Feedback string                `json:"feedback"`
}
