package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/models"
)

// AnnouncementRepository exposes persistence helpers for course announcements.
type AnnouncementRepository interface {
	ListByCourse(ctx context.Context, courseID uint, limit, offset int) ([]models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id uint) error
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository constructs the repository implementation.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) ListByCourse(ctx context.Context, courseID uint, limit, offset int) ([]models.Announcement, error) {
	query := r.db.WithContext(ctx).Where("course_id = ?", courseID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var items []models.Announcement
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *announcementRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Announcement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
