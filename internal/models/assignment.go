package models

import "time"

// Assignment groups gradeable questions within a course.
type Assignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	CourseID   uint      `gorm:"not null;index" json:"course_id"`
	CourseName string    `gorm:"size:255;not null" json:"course_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AssignmentQuestion binds a question to an assignment and carries the
// scoring policy for that pairing.
type AssignmentQuestion struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_assignment_question" json:"assignment_id"`
	QuestionID   string     `gorm:"size:255;not null;uniqueIndex:idx_assignment_question" json:"question_id"`
	CourseID     uint       `gorm:"not null;index" json:"course_id"`
	Points       float64    `gorm:"not null" json:"points"`
	WhichToGrade string     `gorm:"size:32;not null" json:"which_to_grade"`
	HowToScore   string     `gorm:"size:32;not null" json:"how_to_score"`
	Autograde    bool       `gorm:"not null;default:true" json:"autograde"`
	CreatedAt    time.Time  `json:"created_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
}
