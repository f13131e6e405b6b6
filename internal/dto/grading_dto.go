package dto

// SubmissionEvent is the payload logged by the ingestion pipeline for one
// learner interaction. AssignmentID is optional; events outside assignments
// are logged but never graded.
type SubmissionEvent struct {
	QuestionID   string  `json:"question_id" validate:"required"`
	Event        string  `json:"event" validate:"required"`
	Act          string  `json:"act"`
	Correct      bool    `json:"correct"`
	Percent      float64 `json:"percent" validate:"gte=0,lte=1"`
	CourseName   string  `json:"course_name" validate:"required"`
	AssignmentID *uint   `json:"assignment_id" validate:"omitempty,gt=0"`
}

// Grading outcome statuses.
const (
	OutcomeGraded  = "graded"
	OutcomeSkipped = "skipped"
)

// Skip reasons reported when no grade change occurred.
const (
	SkipNotAssigned          = "not_assigned"
	SkipDuplicateFirstAnswer = "duplicate_first_answer"
	SkipAwaitingSecondVote   = "awaiting_second_vote"
)

// GradeOutcome describes what the grader did with one submission. A skipped
// outcome is a normal result, not an error.
type GradeOutcome struct {
	Status       string  `json:"status"`
	Reason       string  `json:"reason,omitempty"`
	QuestionID   string  `json:"question_id"`
	AssignmentID uint    `json:"assignment_id,omitempty"`
	Score        float64 `json:"score"`
	Frozen       bool    `json:"frozen,omitempty"`
	Total        float64 `json:"total"`
	TotalUpdated bool    `json:"total_updated"`
}

// Graded reports whether the submission produced or refreshed a grade.
func (o GradeOutcome) Graded() bool {
	return o.Status == OutcomeGraded
}
