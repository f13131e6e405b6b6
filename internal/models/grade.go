package models

import "time"

const (
	// CommentAutograded marks a question grade as machine-set and therefore
	// safe to overwrite on the next auto-grading pass. Any other comment is
	// treated as an instructor override.
	CommentAutograded = "autograded"
)

// QuestionGrade is the persisted score for one (user, course, question).
type QuestionGrade struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:255;not null;uniqueIndex:idx_question_grade" json:"username"`
	CourseName string    `gorm:"size:255;not null;uniqueIndex:idx_question_grade" json:"course_name"`
	QuestionID string    `gorm:"size:255;not null;uniqueIndex:idx_question_grade" json:"question_id"`
	Score      float64   `gorm:"not null" json:"score"`
	Comment    string    `gorm:"size:512;not null" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsAutograded reports whether the grade may be replaced by auto-grading.
func (g QuestionGrade) IsAutograded() bool {
	return g.Comment == CommentAutograded
}

// Grade is the persisted total for one (user, assignment).
type Grade struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_grade_user_assignment" json:"user_id"`
	AssignmentID uint      `gorm:"not null;uniqueIndex:idx_grade_user_assignment" json:"assignment_id"`
	CourseName   string    `gorm:"size:255;not null" json:"course_name"`
	Score        float64   `gorm:"not null" json:"score"`
	ManualTotal  bool      `gorm:"not null;default:false" json:"manual_total"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
