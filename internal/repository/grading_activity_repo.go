package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumen-academy/grading-api/internal/models"
)

// GradingActivityRepository stores the grading audit trail.
type GradingActivityRepository interface {
	Record(ctx context.Context, entry *models.GradingActivity) error
	ListByUser(ctx context.Context, username string, limit int) ([]models.GradingActivity, error)
}

type gradingActivityRepository struct {
	db *gorm.DB
}

// NewGradingActivityRepository constructs an activity repository backed by GORM.
func NewGradingActivityRepository(db *gorm.DB) GradingActivityRepository {
	return &gradingActivityRepository{db: db}
}

func (r *gradingActivityRepository) Record(ctx context.Context, entry *models.GradingActivity) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gradingActivityRepository) ListByUser(ctx context.Context, username string, limit int) ([]models.GradingActivity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var entries []models.GradingActivity
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
