package models

import "time"

// User represents a learner enrolled in a course. The ingestion pipeline
// resolves the authenticated user before handing events to the grader.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"size:255" json:"email"`
	CourseID   uint      `gorm:"not null" json:"course_id"`
	CourseName string    `gorm:"size:255;not null" json:"course_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
