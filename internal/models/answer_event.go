package models

import "time"

// AnswerEvent is one learner interaction logged by the ingestion pipeline.
// Rows are append-only; the grader reads them to detect prior answers under
// the first_answer retention rule.
type AnswerEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:255;not null;index:idx_answer_lookup" json:"username"`
	CourseName string    `gorm:"size:255;not null;index:idx_answer_lookup" json:"course_name"`
	QuestionID string    `gorm:"size:255;not null;index:idx_answer_lookup" json:"question_id"`
	Event      string    `gorm:"size:64;not null" json:"event"`
	Act        string    `gorm:"size:512" json:"act"`
	Correct    bool      `json:"correct"`
	Percent    float64   `json:"percent"`
	CreatedAt  time.Time `json:"created_at"`
}
