package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/models"
)

func seedObjectiveQuiz(t *testing.T, db *gorm.DB, courseID uint, closesAt *time.Time) models.Quiz {
	t.Helper()

	quiz := models.Quiz{
		CourseID: courseID,
		Name:     "Week 4 Check",
		ClosesAt: closesAt,
		Questions: []models.QuizQuestion{
			{
				Text:   "TCP is connection oriented.",
				Type:   models.QuestionTypeTrueFalse,
				Points: 5,
				Order:  1,
				Options: []models.QuizQuestionOption{
					{Text: "True", IsCorrect: true, Order: 1},
					{Text: "False", Order: 2},
				},
			},
			{
				Text:          "Name the transport protocol without handshakes.",
				Type:          models.QuestionTypeShortAnswer,
				Points:        5,
				Order:         2,
				CorrectAnswer: "UDP",
			},
		},
	}
	require.NoError(t, db.Create(&quiz).Error)
	return quiz
}

func TestQuizAttemptHandlerSubmitAutoGrades(t *testing.T) {
	db := newTestDB(t)
	app := newApp(t, db, 3, models.RoleStudent)

	course := seedCourse(t, db)
	quiz := seedObjectiveQuiz(t, db, course.ID, nil)

	correctOption := quiz.Questions[0].Options[0].ID
	payload, err := json.Marshal(dto.QuizAttemptSubmitRequest{
		QuizID: quiz.ID,
		Answers: []dto.QuizAnswerSubmit{
			{QuestionID: quiz.Questions[0].ID, SelectedOptionID: &correctOption},
			{QuestionID: quiz.Questions[1].ID, AnswerText: " udp "},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/quiz-attempts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Data dto.QuizAttemptResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, uint(3), body.Data.StudentID)
	require.True(t, body.Data.Graded)
	require.InDelta(t, 10.0, body.Data.Score, 0.001)
	require.InDelta(t, 10.0, body.Data.MaxScore, 0.001)
}

func TestQuizAttemptHandlerClosedQuizConflicts(t *testing.T) {
	db := newTestDB(t)
	app := newApp(t, db, 3, models.RoleStudent)

	course := seedCourse(t, db)
	closed := time.Now().Add(-time.Hour)
	quiz := seedObjectiveQuiz(t, db, course.ID, &closed)

	payload, err := json.Marshal(dto.QuizAttemptSubmitRequest{
		QuizID: quiz.ID,
		Answers: []dto.QuizAnswerSubmit{
			{QuestionID: quiz.Questions[0].ID, AnswerText: "True"},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/quiz-attempts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestQuizAttemptHandlerFinalizeRequiresFaculty(t *testing.T) {
	db := newTestDB(t)
	app := newApp(t, db, 3, models.RoleStudent)

	payload, err := json.Marshal(dto.GradeAttemptRequest{
		Answers: []dto.AnswerGradeOverride{{AnswerID: 1, PointsEarned: 5}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/quiz-attempts/1/grade", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
