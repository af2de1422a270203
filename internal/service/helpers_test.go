package service

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeCourseRepo struct {
	courses map[uint]models.Course
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: make(map[uint]models.Course)}
	for _, course := range courses {
		repo.courses[course.ID] = course
	}
	return repo
}

func (f *fakeCourseRepo) List(ctx context.Context, filter repository.CourseFilter) ([]models.Course, int64, error) {
	var courses []models.Course
	for _, course := range f.courses {
		courses = append(courses, course)
	}
	return courses, int64(len(courses)), nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, id uint) (models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if course.ID == 0 {
		course.ID = uint(len(f.courses) + 1)
	}
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.courses, id)
	return nil
}

type fakeEnrollmentRepo struct {
	enrollments []models.Enrollment
	createErr   error
}

func (f *fakeEnrollmentRepo) ListByCourse(ctx context.Context, courseID uint, semester string) ([]models.Enrollment, error) {
	var matched []models.Enrollment
	for _, enrollment := range f.enrollments {
		if enrollment.CourseID != courseID {
			continue
		}
		if semester != "" && enrollment.Semester != semester {
			continue
		}
		matched = append(matched, enrollment)
	}
	return matched, nil
}

func (f *fakeEnrollmentRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var matched []models.Enrollment
	for _, enrollment := range f.enrollments {
		if enrollment.StudentID == studentID {
			matched = append(matched, enrollment)
		}
	}
	return matched, nil
}

func (f *fakeEnrollmentRepo) Exists(ctx context.Context, studentID, courseID uint) (bool, error) {
	for _, enrollment := range f.enrollments {
		if enrollment.StudentID == studentID && enrollment.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if enrollment.ID == 0 {
		enrollment.ID = uint(len(f.enrollments) + 1)
	}
	f.enrollments = append(f.enrollments, *enrollment)
	return nil
}

func (f *fakeEnrollmentRepo) UpdateCourseGrade(ctx context.Context, studentID, courseID uint, grade string) error {
	for idx := range f.enrollments {
		if f.enrollments[idx].StudentID == studentID && f.enrollments[idx].CourseID == courseID {
			f.enrollments[idx].CourseGrade = grade
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeEnrollmentRepo) Delete(ctx context.Context, studentID, courseID uint) error {
	for idx := range f.enrollments {
		if f.enrollments[idx].StudentID == studentID && f.enrollments[idx].CourseID == courseID {
			f.enrollments = append(f.enrollments[:idx], f.enrollments[idx+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeAssignmentRepo struct {
	assignments []models.Assignment
}

func (f *fakeAssignmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error) {
	var matched []models.Assignment
	for _, assignment := range f.assignments {
		if assignment.CourseID == courseID {
			matched = append(matched, assignment)
		}
	}
	return matched, nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	for _, assignment := range f.assignments {
		if assignment.ID == id {
			return assignment, nil
		}
	}
	return models.Assignment{}, gorm.ErrRecordNotFound
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == 0 {
		assignment.ID = uint(len(f.assignments) + 1)
	}
	f.assignments = append(f.assignments, *assignment)
	return nil
}

func (f *fakeAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	for idx := range f.assignments {
		if f.assignments[idx].ID == assignment.ID {
			f.assignments[idx] = *assignment
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id uint) error {
	for idx := range f.assignments {
		if f.assignments[idx].ID == id {
			f.assignments = append(f.assignments[:idx], f.assignments[idx+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeSubmissionRepo struct {
	submissions  []models.Submission
	history      []models.SubmissionGradeHistory
	updateCalls  int
	historyCalls int
}

func (f *fakeSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	var matched []models.Submission
	for _, submission := range f.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.Graded != nil && submission.Graded != *filter.Graded {
			continue
		}
		matched = append(matched, submission)
	}
	return matched, nil
}

func (f *fakeSubmissionRepo) ListByAssignments(ctx context.Context, assignmentIDs []uint) ([]models.Submission, error) {
	ids := make(map[uint]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		ids[id] = true
	}
	var matched []models.Submission
	for _, submission := range f.submissions {
		if ids[submission.AssignmentID] {
			matched = append(matched, submission)
		}
	}
	return matched, nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	for _, submission := range f.submissions {
		if submission.ID == id {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) GetByAssignmentStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	for _, submission := range f.submissions {
		if submission.AssignmentID == assignmentID && submission.StudentID == studentID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == 0 {
		submission.ID = uint(len(f.submissions) + 1)
	}
	f.submissions = append(f.submissions, *submission)
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	f.updateCalls++
	for idx := range f.submissions {
		if f.submissions[idx].ID == submission.ID {
			f.submissions[idx] = *submission
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) CreateHistory(ctx context.Context, history *models.SubmissionGradeHistory) error {
	f.historyCalls++
	f.history = append(f.history, *history)
	return nil
}

type fakeQuizRepo struct {
	quizzes map[uint]models.Quiz
}

func newFakeQuizRepo(quizzes ...models.Quiz) *fakeQuizRepo {
	repo := &fakeQuizRepo{quizzes: make(map[uint]models.Quiz)}
	for _, quiz := range quizzes {
		repo.quizzes[quiz.ID] = quiz
	}
	return repo
}

func (f *fakeQuizRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error) {
	var matched []models.Quiz
	for _, quiz := range f.quizzes {
		if quiz.CourseID == courseID {
			matched = append(matched, quiz)
		}
	}
	return matched, nil
}

func (f *fakeQuizRepo) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return models.Quiz{}, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (f *fakeQuizRepo) CreateWithQuestions(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID == 0 {
		quiz.ID = uint(len(f.quizzes) + 1)
	}
	f.quizzes[quiz.ID] = *quiz
	return nil
}

func (f *fakeQuizRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.quizzes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.quizzes, id)
	return nil
}

type fakeAttemptRepo struct {
	attempts          []models.QuizAttempt
	updateCalls       int
	answerUpdateCalls int
}

func (f *fakeAttemptRepo) CountByQuizStudent(ctx context.Context, quizID, studentID uint) (int64, error) {
	var count int64
	for _, attempt := range f.attempts {
		if attempt.QuizID == quizID && attempt.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAttemptRepo) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.ID == 0 {
		attempt.ID = uint(len(f.attempts) + 1)
	}
	for idx := range attempt.Answers {
		if attempt.Answers[idx].ID == 0 {
			attempt.Answers[idx].ID = uint(idx + 1)
		}
		attempt.Answers[idx].AttemptID = attempt.ID
	}
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeAttemptRepo) GetByID(ctx context.Context, id uint) (models.QuizAttempt, error) {
	for _, attempt := range f.attempts {
		if attempt.ID == id {
			return attempt, nil
		}
	}
	return models.QuizAttempt{}, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) ListByQuizStudent(ctx context.Context, quizID, studentID uint) ([]models.QuizAttempt, error) {
	var matched []models.QuizAttempt
	for _, attempt := range f.attempts {
		if attempt.QuizID == quizID && attempt.StudentID == studentID {
			matched = append(matched, attempt)
		}
	}
	return matched, nil
}

func (f *fakeAttemptRepo) ListByQuiz(ctx context.Context, quizID uint) ([]models.QuizAttempt, error) {
	var matched []models.QuizAttempt
	for _, attempt := range f.attempts {
		if attempt.QuizID == quizID {
			matched = append(matched, attempt)
		}
	}
	return matched, nil
}

func (f *fakeAttemptRepo) Update(ctx context.Context, attempt *models.QuizAttempt) error {
	f.updateCalls++
	for idx := range f.attempts {
		if f.attempts[idx].ID == attempt.ID {
			answers := f.attempts[idx].Answers
			f.attempts[idx] = *attempt
			f.attempts[idx].Answers = answers
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) UpdateAnswer(ctx context.Context, answer *models.QuizAnswer) error {
	f.answerUpdateCalls++
	for attemptIdx := range f.attempts {
		if f.attempts[attemptIdx].ID != answer.AttemptID {
			continue
		}
		for answerIdx := range f.attempts[attemptIdx].Answers {
			if f.attempts[attemptIdx].Answers[answerIdx].ID == answer.ID {
				f.attempts[attemptIdx].Answers[answerIdx] = *answer
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeActivityRecorder struct {
	entries []ActivityEntry
}

func (f *fakeActivityRecorder) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	f.entries = append(f.entries, entry)
	return dto.ActivityResponse{}, nil
}
