package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumen-academy/grading-api/internal/models"
)

// ChatRepository persists peer-instruction discussion messages.
type ChatRepository interface {
	Save(ctx context.Context, message *models.ChatMessage) error
	HasMessages(ctx context.Context, username, questionID, courseName string) (bool, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository constructs a chat repository backed by GORM.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Save(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// HasMessages reports whether the user said anything during the discussion
// for the question. Backs the peer_chat scoring rule.
func (r *chatRepository) HasMessages(ctx context.Context, username, questionID, courseName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("username = ?", username).
		Where("question_id = ?", questionID).
		Where("course_name = ?", courseName).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
