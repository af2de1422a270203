package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionGradeHistory{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizQuestionOption{},
		&models.QuizAttempt{},
		&models.QuizAnswer{},
	))
	return db
}

func TestSubmissionRepositoryUniquePerAssignmentStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	first := models.Submission{AssignmentID: 1, StudentID: 7, Content: "v1", SubmittedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &first))

	duplicate := models.Submission{AssignmentID: 1, StudentID: 7, Content: "v2", SubmittedAt: time.Now()}
	require.Error(t, repo.Create(ctx, &duplicate), "second row for the same (assignment, student) pair must hit the unique index")

	stored, err := repo.GetByAssignmentStudent(ctx, 1, 7)
	require.NoError(t, err)
	require.Equal(t, "v1", stored.Content)
}

func TestSubmissionRepositoryListByAssignments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &models.Submission{AssignmentID: 1, StudentID: 1, SubmittedAt: now}))
	require.NoError(t, repo.Create(ctx, &models.Submission{AssignmentID: 2, StudentID: 1, SubmittedAt: now}))
	require.NoError(t, repo.Create(ctx, &models.Submission{AssignmentID: 9, StudentID: 1, SubmittedAt: now}))

	submissions, err := repo.ListByAssignments(ctx, []uint{1, 2})
	require.NoError(t, err)
	require.Len(t, submissions, 2)

	submissions, err = repo.ListByAssignments(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, submissions)
}

func TestEnrollmentRepositoryDuplicateRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Enrollment{StudentID: 3, CourseID: 5, Semester: "Fall 2026"}))

	exists, err := repo.Exists(ctx, 3, 5)
	require.NoError(t, err)
	require.True(t, exists)

	err = repo.Create(ctx, &models.Enrollment{StudentID: 3, CourseID: 5, Semester: "Spring 2027"})
	require.Error(t, err, "same student and course may only be enrolled once")
}
