package models

import "fmt"

// WhichToGrade selects which of possibly-many submissions to a question
// determines the stored grade.
type WhichToGrade string

const (
	// GradeFirstAnswer keeps the first submission; later ones are ignored.
	GradeFirstAnswer WhichToGrade = "first_answer"
	// GradeLastAnswer always keeps the most recent submission.
	GradeLastAnswer WhichToGrade = "last_answer"
	// GradeBestAnswer keeps the highest score seen so far.
	GradeBestAnswer WhichToGrade = "best_answer"
	// GradeAllAnswer applies peer-instruction semantics: only the second
	// vote phase of an exchange produces a grade.
	GradeAllAnswer WhichToGrade = "all_answer"
)

// ParseWhichToGrade validates a retention rule stored on an assignment question.
func ParseWhichToGrade(value string) (WhichToGrade, error) {
	switch WhichToGrade(value) {
	case GradeFirstAnswer, GradeLastAnswer, GradeBestAnswer, GradeAllAnswer:
		return WhichToGrade(value), nil
	default:
		return "", fmt.Errorf("unknown which_to_grade %q", value)
	}
}

// HowToScore maps a single submission's correctness signal to a number.
type HowToScore string

const (
	// ScorePctCorrect awards full marks when correct, otherwise a fraction.
	ScorePctCorrect HowToScore = "pct_correct"
	// ScoreAllOrNothing awards full marks or zero.
	ScoreAllOrNothing HowToScore = "all_or_nothing"
	// ScoreInteract awards full marks for any interaction.
	ScoreInteract HowToScore = "interact"
	// ScorePeer awards full marks for casting a peer-instruction vote.
	ScorePeer HowToScore = "peer"
	// ScorePeerChat awards full marks for participating in the discussion.
	ScorePeerChat HowToScore = "peer_chat"
)

// ParseHowToScore validates a scoring rule stored on an assignment question.
func ParseHowToScore(value string) (HowToScore, error) {
	switch HowToScore(value) {
	case ScorePctCorrect, ScoreAllOrNothing, ScoreInteract, ScorePeer, ScorePeerChat:
		return HowToScore(value), nil
	default:
		return "", fmt.Errorf("unknown how_to_score %q", value)
	}
}

// ScoringSpec is the resolved policy for one question within an assignment.
// It is built fresh per submission by the policy repository and never
// mutated by the grading flow.
type ScoringSpec struct {
	Assigned     bool
	QuestionID   string
	AssignmentID uint
	CourseName   string
	MaxScore     float64
	WhichToGrade WhichToGrade
	HowToScore   HowToScore
}
