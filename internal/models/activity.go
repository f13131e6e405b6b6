package models

import (
	"time"

	"gorm.io/datatypes"
)

// GradingActivity captures auditable grading events: every question grade
// create or update and every total recomputation.
type GradingActivity struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Username   string            `gorm:"size:255;not null;index" json:"username"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	QuestionID string            `gorm:"size:255" json:"question_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
