package models

import "time"

// ChatMessage is one message sent during a peer-instruction discussion.
// The peer_chat scoring rule checks for participation here.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:255;not null;index:idx_chat_participation" json:"username"`
	QuestionID string    `gorm:"size:255;not null;index:idx_chat_participation" json:"question_id"`
	CourseName string    `gorm:"size:255;not null;index:idx_chat_participation" json:"course_name"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
