package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumen-academy/grading-api/internal/models"
)

// AnswerEventRepository stores and queries the learner interaction log.
type AnswerEventRepository interface {
	Record(ctx context.Context, event *models.AnswerEvent) error
	ListPrior(ctx context.Context, questionID, event, courseName, username string) ([]models.AnswerEvent, error)
}

type answerEventRepository struct {
	db *gorm.DB
}

// NewAnswerEventRepository constructs an answer event repository backed by GORM.
func NewAnswerEventRepository(db *gorm.DB) AnswerEventRepository {
	return &answerEventRepository{db: db}
}

func (r *answerEventRepository) Record(ctx context.Context, event *models.AnswerEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListPrior returns the user's earlier answers to a question, oldest first.
// The grader only needs the existence check for first_answer retention.
func (r *answerEventRepository) ListPrior(ctx context.Context, questionID, event, courseName, username string) ([]models.AnswerEvent, error) {
	var events []models.AnswerEvent
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Where("event = ?", event).
		Where("course_name = ?", courseName).
		Where("username = ?", username).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}
