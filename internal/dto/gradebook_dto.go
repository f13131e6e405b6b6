package dto

import (
	"time"

	"github.com/lumen-academy/grading-api/internal/models"
)

// AssignmentTotalResponse reports the stored total for one assignment.
type AssignmentTotalResponse struct {
	AssignmentID uint    `json:"assignment_id"`
	Username     string  `json:"username"`
	Total        float64 `json:"total"`
	ManualTotal  bool    `json:"manual_total"`
	CacheHit     bool    `json:"cache_hit,omitempty"`
}

// QuestionGradeResponse serializes one stored question grade.
type QuestionGradeResponse struct {
	QuestionID string    `json:"question_id"`
	Score      float64   `json:"score"`
	Comment    string    `json:"comment"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewQuestionGradeResponse converts a QuestionGrade model into a DTO.
func NewQuestionGradeResponse(model models.QuestionGrade) QuestionGradeResponse {
	return QuestionGradeResponse{
		QuestionID: model.QuestionID,
		Score:      model.Score,
		Comment:    model.Comment,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewQuestionGradeResponseSlice converts question grade models into DTOs.
func NewQuestionGradeResponseSlice(grades []models.QuestionGrade) []QuestionGradeResponse {
	responses := make([]QuestionGradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewQuestionGradeResponse(grade))
	}

	return responses
}
