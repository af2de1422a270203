package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/models"
)

type announcementRepoStub struct {
	items []models.Announcement
}

func (a *announcementRepoStub) ListByCourse(ctx context.Context, courseID uint, limit, offset int) ([]models.Announcement, error) {
	var matched []models.Announcement
	for _, item := range a.items {
		if item.CourseID == courseID {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (a *announcementRepoStub) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == 0 {
		announcement.ID = uint(len(a.items) + 1)
	}
	a.items = append(a.items, *announcement)
	return nil
}

func (a *announcementRepoStub) Delete(ctx context.Context, id uint) error {
	for idx := range a.items {
		if a.items[idx].ID == id {
			a.items = append(a.items[:idx], a.items[idx+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func TestAnnouncementPublishSanitizesBody(t *testing.T) {
	repo := &announcementRepoStub{}
	courses := newFakeCourseRepo(models.Course{ID: 1, Name: "Algorithms"})
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAnnouncementService(repo, courses, nil, "", nil, validate, testLogger())

	resp, err := svc.Publish(context.Background(), 9, dto.AnnouncementCreateRequest{
		CourseID: 1,
		Title:    "Exam <b>update</b>",
		Body:     "<script>alert('x')</script><p>Room changed to B12.</p>",
	})
	require.NoError(t, err)

	require.Equal(t, "Exam update", resp.Title)
	require.Equal(t, "<p>Room changed to B12.</p>", resp.Body)
	require.Equal(t, uint(9), resp.AuthorID)
	require.Len(t, repo.items, 1)
}

func TestAnnouncementPublishEmptyAfterSanitize(t *testing.T) {
	repo := &announcementRepoStub{}
	courses := newFakeCourseRepo(models.Course{ID: 1, Name: "Algorithms"})
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAnnouncementService(repo, courses, nil, "", nil, validate, testLogger())

	_, err := svc.Publish(context.Background(), 9, dto.AnnouncementCreateRequest{
		CourseID: 1,
		Title:    "Heads up",
		Body:     "<script>alert('x')</script>",
	})
	require.ErrorIs(t, err, ErrAnnouncementEmpty)
	require.Empty(t, repo.items)
}

func TestAnnouncementPublishUnknownCourse(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAnnouncementService(&announcementRepoStub{}, newFakeCourseRepo(), nil, "", nil, validate, testLogger())

	_, err := svc.Publish(context.Background(), 9, dto.AnnouncementCreateRequest{
		CourseID: 404,
		Title:    "Heads up",
		Body:     "text",
	})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestAnnouncementSubscribeReceivesPublished(t *testing.T) {
	repo := &announcementRepoStub{}
	courses := newFakeCourseRepo(models.Course{ID: 1, Name: "Algorithms"})
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAnnouncementService(repo, courses, nil, "", nil, validate, testLogger())

	stream, cleanup := svc.Subscribe(1)
	defer cleanup()

	_, err := svc.Publish(context.Background(), 9, dto.AnnouncementCreateRequest{
		CourseID: 1,
		Title:    "Office hours",
		Body:     "Moved to Friday.",
	})
	require.NoError(t, err)

	select {
	case received := <-stream:
		require.Equal(t, "Office hours", received.Title)
	case <-time.After(time.Second):
		t.Fatal("expected announcement on subscriber channel")
	}
}

func TestAnnouncementFanoutViaRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	repo := &announcementRepoStub{}
	courses := newFakeCourseRepo(models.Course{ID: 1, Name: "Algorithms"})
	validate := validator.New(validator.WithRequiredStructEnabled())

	publisher := NewAnnouncementService(repo, courses, redisClient, "canvas", nil, validate, testLogger())
	subscriberNode := NewAnnouncementService(repo, courses, redisClient, "canvas", nil, validate, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	subscriberNode.Start(ctx)
	// Give the redis subscription a moment to attach.
	time.Sleep(50 * time.Millisecond)

	stream, cleanup := subscriberNode.Subscribe(1)
	defer cleanup()

	_, err = publisher.Publish(context.Background(), 9, dto.AnnouncementCreateRequest{
		CourseID: 1,
		Title:    "Cross node",
		Body:     "Fanned out through redis.",
	})
	require.NoError(t, err)

	select {
	case received := <-stream:
		require.Equal(t, "Cross node", received.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("expected announcement fanned out across nodes")
	}
}

func TestAnnouncementDelete(t *testing.T) {
	repo := &announcementRepoStub{items: []models.Announcement{{ID: 1, CourseID: 1, Title: "Old", Body: "gone soon"}}}
	courses := newFakeCourseRepo(models.Course{ID: 1, Name: "Algorithms"})
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAnnouncementService(repo, courses, nil, "", nil, validate, testLogger())

	require.NoError(t, svc.Delete(context.Background(), 1))
	err := svc.Delete(context.Background(), 1)
	require.ErrorIs(t, err, ErrAnnouncementNotFound)
}
