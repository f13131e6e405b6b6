package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lumen-academy/grading-api/internal/dto"
	"github.com/lumen-academy/grading-api/internal/models"
	"github.com/lumen-academy/grading-api/internal/observability"
	"github.com/lumen-academy/grading-api/internal/repository"
)

// GradeEventSubject is the NATS subject notified after a total recomputation.
const GradeEventSubject = "grades.updated"

// secondVoteMarker identifies the revised-vote phase of a peer-instruction
// exchange inside the free-form action tag.
const secondVoteMarker = "vote2"

// GradingService grades learner submissions and maintains assignment totals.
type GradingService interface {
	GradeSubmission(ctx context.Context, user models.User, submission dto.SubmissionEvent) (dto.GradeOutcome, error)
}

type gradingService struct {
	policies  repository.PolicyRepository
	answers   repository.AnswerEventRepository
	grades    repository.QuestionGradeRepository
	totals    repository.GradeRepository
	chats     repository.ChatRepository
	activity  ActivityRecorder
	cache     *redis.Client
	events    *nats.Conn
	validator *validator.Validate
	logger    zerolog.Logger
	locks     *keyedMutex
}

// NewGradingService constructs the grading service. The redis client and
// NATS connection are optional; nil disables cache invalidation and event
// publication respectively.
func NewGradingService(
	policies repository.PolicyRepository,
	answers repository.AnswerEventRepository,
	grades repository.QuestionGradeRepository,
	totals repository.GradeRepository,
	chats repository.ChatRepository,
	activity ActivityRecorder,
	cache *redis.Client,
	events *nats.Conn,
	validate *validator.Validate,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		policies:  policies,
		answers:   answers,
		grades:    grades,
		totals:    totals,
		chats:     chats,
		activity:  activity,
		cache:     cache,
		events:    events,
		validator: validate,
		logger:    logger.With().Str("component", "grading_service").Logger(),
		locks:     newKeyedMutex(),
	}
}

// gradeEvent is the payload published on GradeEventSubject.
type gradeEvent struct {
	Username     string    `json:"username"`
	AssignmentID uint      `json:"assignment_id"`
	Total        float64   `json:"total"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GradeSubmission resolves the scoring policy for the submission's question,
// applies the retention rule, persists at most one question grade write, and
// recomputes the assignment total when the stored grade changed. The answer
// event is appended to the interaction log afterwards so that the
// first_answer existence check only ever sees earlier submissions.
func (s *gradingService) GradeSubmission(ctx context.Context, user models.User, submission dto.SubmissionEvent) (dto.GradeOutcome, error) {
	tracer := otel.Tracer("github.com/lumen-academy/grading-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.submission")
	span.SetAttributes(
		attribute.String("grading.question_id", submission.QuestionID),
		attribute.String("grading.username", user.Username),
	)
	defer span.End()

	if err := s.validator.Struct(submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeOutcome{}, err
	}

	spec, err := s.policies.ResolveScoringSpec(ctx, submission.QuestionID, user.CourseID, submission.AssignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "policy_lookup_failed")
		return dto.GradeOutcome{}, err
	}

	if !spec.Assigned {
		s.recordAnswer(ctx, user, submission)
		observability.GradingOutcomes().WithLabelValues(dto.OutcomeSkipped, dto.SkipNotAssigned).Inc()
		return dto.GradeOutcome{
			Status:     dto.OutcomeSkipped,
			Reason:     dto.SkipNotAssigned,
			QuestionID: submission.QuestionID,
		}, nil
	}

	s.logger.Debug().
		Str("question_id", submission.QuestionID).
		Str("username", user.Username).
		Str("which_to_grade", string(spec.WhichToGrade)).
		Str("how_to_score", string(spec.HowToScore)).
		Msg("scoring submission")

	start := time.Now()
	defer func() {
		observability.GradingLatency().WithLabelValues(string(spec.WhichToGrade)).Observe(time.Since(start).Seconds())
	}()

	unlock := s.locks.Lock(questionKey(user.Username, submission.QuestionID))
	outcome, err := s.applyRetentionRule(ctx, user, submission, spec)
	if err == nil {
		s.recordAnswer(ctx, user, submission)
	}
	unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading_failed")
		return dto.GradeOutcome{}, err
	}

	if outcome.TotalUpdated {
		unlockTotal := s.locks.Lock(assignmentKey(user.Username, spec.AssignmentID))
		total, err := s.computeTotalScore(ctx, spec, user)
		unlockTotal()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "total_recompute_failed")
			return dto.GradeOutcome{}, err
		}
		outcome.Total = total
	}

	span.SetAttributes(
		attribute.String("grading.outcome", outcome.Status),
		attribute.Float64("grading.score", outcome.Score),
	)
	observability.GradingOutcomes().WithLabelValues(outcome.Status, outcome.Reason).Inc()

	return outcome, nil
}

// applyRetentionRule dispatches on which_to_grade and performs at most one
// question grade create and one update. TotalUpdated on the returned outcome
// tells the caller whether the assignment total must be recomputed.
func (s *gradingService) applyRetentionRule(ctx context.Context, user models.User, submission dto.SubmissionEvent, spec models.ScoringSpec) (dto.GradeOutcome, error) {
	outcome := dto.GradeOutcome{
		Status:       dto.OutcomeGraded,
		QuestionID:   spec.QuestionID,
		AssignmentID: spec.AssignmentID,
	}

	switch spec.WhichToGrade {
	case models.GradeFirstAnswer:
		prior, err := s.answers.ListPrior(ctx, submission.QuestionID, submission.Event, user.CourseName, user.Username)
		if err != nil {
			return dto.GradeOutcome{}, err
		}
		if len(prior) > 0 {
			outcome.Status = dto.OutcomeSkipped
			outcome.Reason = dto.SkipDuplicateFirstAnswer
			return outcome, nil
		}

		score, err := s.scoreOneAnswer(ctx, spec, user.Username, submission)
		if err != nil {
			return dto.GradeOutcome{}, err
		}
		if err := s.createGrade(ctx, user, spec, score); err != nil {
			return dto.GradeOutcome{}, err
		}
		outcome.Score = score
		outcome.TotalUpdated = true

	case models.GradeLastAnswer:
		score, err := s.scoreOneAnswer(ctx, spec, user.Username, submission)
		if err != nil {
			return dto.GradeOutcome{}, err
		}
		if err := s.upsertGrade(ctx, user, spec, score); err != nil {
			return dto.GradeOutcome{}, err
		}
		outcome.Score = score
		outcome.TotalUpdated = true

	case models.GradeBestAnswer:
		score, err := s.scoreOneAnswer(ctx, spec, user.Username, submission)
		if err != nil {
			return dto.GradeOutcome{}, err
		}

		existing, err := s.grades.Get(ctx, user.Username, user.CourseName, submission.QuestionID)
		if err != nil {
			return dto.GradeOutcome{}, err
		}
		if existing == nil {
			if err := s.createGrade(ctx, user, spec, score); err != nil {
				return dto.GradeOutcome{}, err
			}
			outcome.Score = score
			outcome.TotalUpdated = true
			break
		}

		// An instructor comment freezes the grade; instructors have the
		// last word. A lower score never replaces a higher one.
		if score > existing.Score && existing.IsAutograded() {
			if err := s.updateGrade(ctx, user, spec, existing.ID, score); err != nil {
				return dto.GradeOutcome{}, err
			}
			outcome.Score = score
			outcome.TotalUpdated = true
		} else {
			outcome.Score = existing.Score
			outcome.Frozen = !existing.IsAutograded()
		}

	case models.GradeAllAnswer:
		// Peer instruction: only the revised vote counts. The first vote
		// phase is logged but produces no grade.
		if !strings.Contains(submission.Act, secondVoteMarker) {
			outcome.Status = dto.OutcomeSkipped
			outcome.Reason = dto.SkipAwaitingSecondVote
			return outcome, nil
		}

		score, err := s.scoreOneAnswer(ctx, spec, user.Username, submission)
		if err != nil {
			return dto.GradeOutcome{}, err
		}
		if err := s.upsertGrade(ctx, user, spec, score); err != nil {
			return dto.GradeOutcome{}, err
		}
		outcome.Score = score
		outcome.TotalUpdated = true

	default:
		return dto.GradeOutcome{}, fmt.Errorf("unknown which_to_grade %q", spec.WhichToGrade)
	}

	return outcome, nil
}

// scoreOneAnswer maps one submission's correctness signal to a numeric score
// under the scoring rule. Pure except for the peer_chat participation lookup.
func (s *gradingService) scoreOneAnswer(ctx context.Context, spec models.ScoringSpec, username string, submission dto.SubmissionEvent) (float64, error) {
	switch spec.HowToScore {
	case models.ScorePctCorrect:
		if submission.Correct {
			return spec.MaxScore, nil
		}
		return submission.Percent * spec.MaxScore, nil
	case models.ScoreAllOrNothing:
		if submission.Correct {
			return spec.MaxScore, nil
		}
		return 0, nil
	case models.ScoreInteract, models.ScorePeer:
		return spec.MaxScore, nil
	case models.ScorePeerChat:
		didChat, err := s.chats.HasMessages(ctx, username, submission.QuestionID, submission.CourseName)
		if err != nil {
			return 0, err
		}
		if didChat {
			return spec.MaxScore, nil
		}
		return 0, nil
	default:
		return 0, nil
	}
}

// computeTotalScore sums all question grades for the assignment and upserts
// the per-user total. An assignment with no graded questions stores a zero
// total. The stored ManualTotal flag is not consulted before overwriting,
// matching the platform's established behaviour.
func (s *gradingService) computeTotalScore(ctx context.Context, spec models.ScoringSpec, user models.User) (float64, error) {
	rows, err := s.grades.ListForAssignment(ctx, spec.AssignmentID, user.CourseName, user.Username)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, row := range rows {
		total += row.Score
	}

	grade, err := s.totals.Get(ctx, user.ID, spec.AssignmentID)
	if err != nil {
		return 0, err
	}
	if grade != nil {
		grade.Score = total
	} else {
		grade = &models.Grade{
			UserID:       user.ID,
			AssignmentID: spec.AssignmentID,
			CourseName:   user.CourseName,
			Score:        total,
			ManualTotal:  false,
		}
	}

	if err := s.totals.Upsert(ctx, grade); err != nil {
		return 0, err
	}

	observability.TotalRecomputes().Inc()
	s.logger.Debug().
		Uint("assignment_id", spec.AssignmentID).
		Str("username", user.Username).
		Float64("total", total).
		Msg("assignment total recomputed")

	s.invalidateTotalCache(ctx, user.ID, spec.AssignmentID)
	s.publishGradeEvent(user.Username, spec.AssignmentID, total)

	return total, nil
}

func (s *gradingService) createGrade(ctx context.Context, user models.User, spec models.ScoringSpec, score float64) error {
	if err := s.grades.Create(ctx, user.Username, user.CourseName, spec.QuestionID, score); err != nil {
		return err
	}

	s.recordActivity(ctx, user, spec, "question_grade.created", score)

	return nil
}

func (s *gradingService) updateGrade(ctx context.Context, user models.User, spec models.ScoringSpec, gradeID uint, score float64) error {
	if err := s.grades.UpdateScore(ctx, gradeID, score); err != nil {
		return err
	}

	s.recordActivity(ctx, user, spec, "question_grade.updated", score)

	return nil
}

// upsertGrade overwrites the stored score in place or creates a fresh grade,
// the last_answer treatment shared with the second-vote peer path.
func (s *gradingService) upsertGrade(ctx context.Context, user models.User, spec models.ScoringSpec, score float64) error {
	existing, err := s.grades.Get(ctx, user.Username, user.CourseName, spec.QuestionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.updateGrade(ctx, user, spec, existing.ID, score)
	}

	return s.createGrade(ctx, user, spec, score)
}

func (s *gradingService) recordAnswer(ctx context.Context, user models.User, submission dto.SubmissionEvent) {
	event := models.AnswerEvent{
		Username:   user.Username,
		CourseName: user.CourseName,
		QuestionID: submission.QuestionID,
		Event:      submission.Event,
		Act:        submission.Act,
		Correct:    submission.Correct,
		Percent:    submission.Percent,
	}
	if err := s.answers.Record(ctx, &event); err != nil {
		s.logger.Warn().Err(err).Str("question_id", submission.QuestionID).Msg("failed to record answer event")
	}
}

func (s *gradingService) recordActivity(ctx context.Context, user models.User, spec models.ScoringSpec, action string, score float64) {
	if s.activity == nil {
		return
	}

	entry := ActivityEntry{
		Username:   user.Username,
		Action:     action,
		QuestionID: spec.QuestionID,
		Metadata: map[string]interface{}{
			"assignment_id": spec.AssignmentID,
			"score":         score,
		},
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record grading activity")
	}
}

func (s *gradingService) invalidateTotalCache(ctx context.Context, userID, assignmentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, totalCacheKey(userID, assignmentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to invalidate total cache")
	}
}

func (s *gradingService) publishGradeEvent(username string, assignmentID uint, total float64) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(gradeEvent{
		Username:     username,
		AssignmentID: assignmentID,
		Total:        total,
		UpdatedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal grade event")
		return
	}

	if err := s.events.Publish(GradeEventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to publish grade event")
	}
}

func questionKey(username, questionID string) string {
	return fmt.Sprintf("question:%s:%s", username, questionID)
}

func assignmentKey(username string, assignmentID uint) string {
	return fmt.Sprintf("assignment:%s:%d", username, assignmentID)
}
