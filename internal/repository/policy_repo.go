package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lumen-academy/grading-api/internal/models"
)

// PolicyRepository resolves the scoring policy attached to a question within
// an assignment.
type PolicyRepository interface {
	ResolveScoringSpec(ctx context.Context, questionID string, courseID uint, assignmentID *uint) (models.ScoringSpec, error)
}

type policyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository constructs a policy repository backed by GORM.
func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

// ResolveScoringSpec looks up the AssignmentQuestion row binding the question
// to an assignment for the course. An unassigned question yields a spec with
// Assigned=false and is not an error.
func (r *policyRepository) ResolveScoringSpec(ctx context.Context, questionID string, courseID uint, assignmentID *uint) (models.ScoringSpec, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AssignmentQuestion{}).
		Preload("Assignment").
		Where("question_id = ?", questionID).
		Where("course_id = ?", courseID)

	if assignmentID != nil {
		query = query.Where("assignment_id = ?", *assignmentID)
	}

	var binding models.AssignmentQuestion
	if err := query.First(&binding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ScoringSpec{Assigned: false, QuestionID: questionID}, nil
		}
		return models.ScoringSpec{}, err
	}

	whichToGrade, err := models.ParseWhichToGrade(binding.WhichToGrade)
	if err != nil {
		return models.ScoringSpec{}, fmt.Errorf("assignment question %d: %w", binding.ID, err)
	}

	howToScore, err := models.ParseHowToScore(binding.HowToScore)
	if err != nil {
		return models.ScoringSpec{}, fmt.Errorf("assignment question %d: %w", binding.ID, err)
	}

	return models.ScoringSpec{
		Assigned:     binding.Autograde,
		QuestionID:   binding.QuestionID,
		AssignmentID: binding.AssignmentID,
		CourseName:   binding.Assignment.CourseName,
		MaxScore:     binding.Points,
		WhichToGrade: whichToGrade,
		HowToScore:   howToScore,
	}, nil
}
