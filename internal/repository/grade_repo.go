package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lumen-academy/grading-api/internal/models"
)

// GradeRepository persists assignment totals.
type GradeRepository interface {
	Get(ctx context.Context, userID, assignmentID uint) (*models.Grade, error)
	Upsert(ctx context.Context, grade *models.Grade) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs a grade repository backed by GORM.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

// Get returns the stored total for the pair, or nil when none exists.
func (r *gradeRepository) Get(ctx context.Context, userID, assignmentID uint) (*models.Grade, error) {
	var grade models.Grade
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("assignment_id = ?", assignmentID).
		First(&grade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &grade, nil
}

func (r *gradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Save(grade).Error
}
