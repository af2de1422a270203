package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/models"
)

func intPtr(i int) *int {
	return &i
}

func uintPtr(u uint) *uint {
	return &u
}

func objectiveQuiz() models.Quiz {
	return models.Quiz{
		ID:       1,
		CourseID: 1,
		Name:     "Midterm Check",
		Questions: []models.QuizQuestion{
			{
				ID:     10,
				QuizID: 1,
				Text:   "2 + 2 = ?",
				Type:   models.QuestionTypeMultipleChoice,
				Points: 5,
				Options: []models.QuizQuestionOption{
					{ID: 100, QuestionID: 10, Text: "3"},
					{ID: 101, QuestionID: 10, Text: "4", IsCorrect: true},
				},
			},
			{
				ID:     11,
				QuizID: 1,
				Text:   "The sky is blue.",
				Type:   models.QuestionTypeTrueFalse,
				Points: 5,
				Options: []models.QuizQuestionOption{
					{ID: 102, QuestionID: 11, Text: "True", IsCorrect: true},
					{ID: 103, QuestionID: 11, Text: "False"},
				},
			},
		},
	}
}

func newAttemptService(quizzes *fakeQuizRepo, attempts *fakeAttemptRepo) QuizAttemptService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewQuizAttemptService(attempts, quizzes, validate, nil, testLogger())
}

func TestQuizAttemptAutoGradesObjectiveQuestions(t *testing.T) {
	attempts := &fakeAttemptRepo{}
	svc := newAttemptService(newFakeQuizRepo(objectiveQuiz()), attempts)

	result, err := svc.Submit(context.Background(), 42, dto.QuizAttemptSubmitRequest{
		QuizID: 1,
		Answers: []dto.QuizAnswerSubmit{
			{QuestionID: 10, SelectedOptionID: uintPtr(101)},
			{QuestionID: 11, SelectedOptionID: uintPtr(103)},
		},
	}, ActivityActor{ID: 42, Role: "student"})
	require.NoError(t, err)

	require.True(t, result.Graded)
	require.InDelta(t, 5.0, result.Score, 1e-9)
	require.InDelta(t, 10.0, result.MaxScore, 1e-9)

	require.Len(t, result.Answers, 2)
	require.True(t, *result.Answers[0].IsCorrect)
	require.InDelta(t, 5.0, *result.Answers[0].PointsEarned, 1e-9)
	require.False(t, *result.Answers[1].IsCorrect)
	require.InDelta(t, 0.0, *result.Answers[1].PointsEarned, 1e-9)
}

func TestQuizAttemptShortAnswerKeyMatch(t *testing.T) {
	quiz := models.Quiz{
		ID:       1,
		CourseID: 1,
		Name:     "Vocabulary",
		Questions: []models.QuizQuestion{
			{ID: 10, QuizID: 1, Text: "Capital of France?", Type: models.QuestionTypeShortAnswer, Points: 4, CorrectAnswer: "Paris"},
			{ID: 11, QuizID: 1, Text: "Explain recursion.", Type: models.QuestionTypeEssay, Points: 6},
		},
	}
	svc := newAttemptService(newFakeQuizRepo(quiz), &fakeAttemptRepo{})

	result, err := svc.Submit(context.Background(), 42, dto.QuizAttemptSubmitRequest{
		QuizID: 1,
		Answers: []dto.QuizAnswerSubmit{
			{QuestionID: 10, AnswerText: "  paris "},
			{QuestionID: 11, AnswerText: "A function that calls itself."},
		},
	}, ActivityActor{ID: 42, Role: "student"})
	require.NoError(t, err)

	// The essay keeps the attempt open, but the keyed short answer is scored.
	require.False(t, result.Graded)
	require.InDelta(t, 4.0, result.Score, 1e-9)
	require.True(t, *result.Answers[0].IsCorrect)
	require.Nil(t, result.Answers[1].IsCorrect)
	require.Nil(t, result.Answers[1].PointsEarned)
}

func TestQuizAttemptShortAnswerWithoutKeyStaysPending(t *testing.T) {
	quiz := models.Quiz{
		ID:       1,
		CourseID: 1,
		Name:     "Free Response",
		Questions: []models.QuizQuestion{
			{ID: 10, QuizID: 1, Text: "Describe the result.", Type: models.QuestionTypeShortAnswer, Points: 4},
		},
	}
	svc := newAttemptService(newFakeQuizRepo(quiz), &fakeAttemptRepo{})

	result, err := svc.Submit(context.Background(), 42, dto.QuizAttemptSubmitRequest{
		QuizID:  1,
		Answers: []dto.QuizAnswerSubmit{{QuestionID: 10, AnswerText: "It converges."}},
	}, ActivityActor{ID: 42, Role: "student"})
	require.NoError(t, err)

	require.False(t, result.Graded)
	require.InDelta(t, 0.0, result.Score, 1e-9)
	require.Nil(t, result.Answers[0].PointsEarned)
}

func TestQuizAttemptWindowGuards(t *testing.T) {
	opensAt := time.Now().Add(time.Hour)
	closesAt := time.Now().Add(2 * time.Hour)

	notOpen := objectiveQuiz()
	notOpen.OpensAt = &opensAt
	svc := newAttemptService(newFakeQuizRepo(notOpen), &fakeAttemptRepo{})

	_, err := svc.Submit(context.Background(), 42, dto.QuizAttemptSubmitRequest{
		QuizID:  1,
		Answers: []dto.QuizAnswerSubmit{{QuestionID: 10, SelectedOptionID: uintPtr(101)}},
	}, ActivityActor{ID: 42, Role: "student"})
	require.ErrorIs(t, err, ErrQuizNotOpen)

	closed := objectiveQuiz()
	earlier := closesAt.Add(-3 * time.Hour)
	closed.ClosesAt = &earlier
	svc = newAttemptService(newFakeQuizRepo(closed), &fakeAttemptRepo{})

	_, err = svc.Submit(context.Background(), 42, dto.QuizAttemptSubmitRequest{
		QuizID:  1,
		Answers: []dto.QuizAnswerSubmit{{QuestionID: 10, SelectedOptionID: uintPtr(101)}},
	}, ActivityActor{ID: 42, Role: "student"})
	require.ErrorIs(t, err, ErrQuizClosed)
}

func TestQuizAttemptLimitEnforced(t *testing.T) {
	quiz := objectiveQuiz()
	quiz.AllowedAttempts = intPtr(2)
	attempts := &fakeAttemptRepo{}
	svc := newAttemptService(newFakeQuizRepo(quiz), attempts)

	payload := dto.QuizAttemptSubmitRequest{
		QuizID:  1,
		Answers: []dto.QuizAnswerSubmit{{QuestionID: 10, SelectedOptionID: uintPtr(101)}},
	}
	actor := ActivityActor{ID: 42, Role: "student"}

	_, err := svc.Submit(context.Background(), 42, payload, actor)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), 42, payload, actor)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), 42, payload, actor)
	require.ErrorIs(t, err, ErrAttemptLimitReached)

	// The limit is per student.
	_, err = svc.Submit(context.Background(), 43, payload, actor)
	require.NoError(t, err)
}

func TestQuizAttemptUnknownQuiz(t *testing.T) {
	svc := newAttemptService(newFakeQuizRepo(), &fakeAttemptRepo{})

	_, err := svc.Submit(context.Background(), 42, dto.QuizAttemptSubmitRequest{
		QuizID:  999,
		Answers: []dto.QuizAnswerSubmit{{QuestionID: 10}},
	}, ActivityActor{ID: 42, Role: "student"})
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizAttemptDropsForeignAnswers(t *testing.T) {
	svc := newAttemptService(newFakeQuizRepo(objectiveQuiz()), &fakeAttemptRepo{})

	result, err := svc.Submit(context.Background(), 42, dto.QuizAttemptSubmitRequest{
		QuizID: 1,
		Answers: []dto.QuizAnswerSubmit{
			{QuestionID: 10, SelectedOptionID: uintPtr(101)},
			{QuestionID: 999, AnswerText: "not part of this quiz"},
		},
	}, ActivityActor{ID: 42, Role: "student"})
	require.NoError(t, err)

	require.Len(t, result.Answers, 1)
	require.InDelta(t, 5.0, result.Score, 1e-9)
}

func TestQuizAttemptMaxScoreCountsAnsweredQuestionsOnly(t *testing.T) {
	quiz := objectiveQuiz()
	quiz.Questions[1].Points = 7
	svc := newAttemptService(newFakeQuizRepo(quiz), &fakeAttemptRepo{})

	result, err := svc.Submit(context.Background(), 42, dto.QuizAttemptSubmitRequest{
		QuizID:  1,
		Answers: []dto.QuizAnswerSubmit{{QuestionID: 10, SelectedOptionID: uintPtr(101)}},
	}, ActivityActor{ID: 42, Role: "student"})
	require.NoError(t, err)

	// The unanswered 7-point question contributes nothing to the max.
	require.True(t, result.Graded)
	require.InDelta(t, 5.0, result.Score, 1e-9)
	require.InDelta(t, 5.0, result.MaxScore, 1e-9)
	require.Len(t, result.Answers, 1)
}

func TestQuizAttemptGradedDespiteUnansweredEssay(t *testing.T) {
	quiz := objectiveQuiz()
	quiz.Questions = append(quiz.Questions, models.QuizQuestion{
		ID:     12,
		QuizID: 1,
		Text:   "Discuss the proof.",
		Type:   models.QuestionTypeEssay,
		Points: 20,
	})
	svc := newAttemptService(newFakeQuizRepo(quiz), &fakeAttemptRepo{})

	result, err := svc.Submit(context.Background(), 42, dto.QuizAttemptSubmitRequest{
		QuizID: 1,
		Answers: []dto.QuizAnswerSubmit{
			{QuestionID: 10, SelectedOptionID: uintPtr(101)},
			{QuestionID: 11, SelectedOptionID: uintPtr(102)},
		},
	}, ActivityActor{ID: 42, Role: "student"})
	require.NoError(t, err)

	// Every submitted answer auto-graded, so the attempt is settled even
	// though the quiz carries an essay the student skipped.
	require.True(t, result.Graded)
	require.InDelta(t, 10.0, result.Score, 1e-9)
	require.InDelta(t, 10.0, result.MaxScore, 1e-9)
}
