package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lumen-academy/grading-api/internal/models"
)

// QuestionGradeRepository persists per-question scores.
type QuestionGradeRepository interface {
	Get(ctx context.Context, username, courseName, questionID string) (*models.QuestionGrade, error)
	Create(ctx context.Context, username, courseName, questionID string, score float64) error
	UpdateScore(ctx context.Context, gradeID uint, score float64) error
	ListForAssignment(ctx context.Context, assignmentID uint, courseName, username string) ([]models.QuestionGrade, error)
}

type questionGradeRepository struct {
	db *gorm.DB
}

// NewQuestionGradeRepository constructs a question grade repository backed by GORM.
func NewQuestionGradeRepository(db *gorm.DB) QuestionGradeRepository {
	return &questionGradeRepository{db: db}
}

// Get returns the stored grade for the triple, or nil when none exists.
func (r *questionGradeRepository) Get(ctx context.Context, username, courseName, questionID string) (*models.QuestionGrade, error) {
	var grade models.QuestionGrade
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Where("course_name = ?", courseName).
		Where("question_id = ?", questionID).
		First(&grade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &grade, nil
}

// Create inserts a fresh grade carrying the autograded sentinel comment.
func (r *questionGradeRepository) Create(ctx context.Context, username, courseName, questionID string, score float64) error {
	grade := models.QuestionGrade{
		Username:   username,
		CourseName: courseName,
		QuestionID: questionID,
		Score:      score,
		Comment:    models.CommentAutograded,
	}

	return r.db.WithContext(ctx).Create(&grade).Error
}

func (r *questionGradeRepository) UpdateScore(ctx context.Context, gradeID uint, score float64) error {
	return r.db.WithContext(ctx).
		Model(&models.QuestionGrade{}).
		Where("id = ?", gradeID).
		Update("score", score).Error
}

// ListForAssignment returns all question grades counting toward the
// assignment total for the user.
func (r *questionGradeRepository) ListForAssignment(ctx context.Context, assignmentID uint, courseName, username string) ([]models.QuestionGrade, error) {
	var grades []models.QuestionGrade
	err := r.db.WithContext(ctx).
		Joins("JOIN assignment_questions ON assignment_questions.question_id = question_grades.question_id").
		Where("assignment_questions.assignment_id = ?", assignmentID).
		Where("question_grades.course_name = ?", courseName).
		Where("question_grades.username = ?", username).
		Find(&grades).Error
	if err != nil {
		return nil, err
	}

	return grades, nil
}
