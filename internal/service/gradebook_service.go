package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lumen-academy/grading-api/internal/dto"
	"github.com/lumen-academy/grading-api/internal/models"
	"github.com/lumen-academy/grading-api/internal/observability"
	"github.com/lumen-academy/grading-api/internal/repository"
)

// GradebookService exposes the read side of grading: assignment totals and
// per-question grades.
type GradebookService interface {
	AssignmentTotal(ctx context.Context, user models.User, assignmentID uint) (dto.AssignmentTotalResponse, error)
	AssignmentGrades(ctx context.Context, user models.User, assignmentID uint) ([]dto.QuestionGradeResponse, error)
}

type gradebookService struct {
	grades repository.QuestionGradeRepository
	totals repository.GradeRepository
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewGradebookService builds the gradebook service. The redis client is
// optional; nil disables caching.
func NewGradebookService(grades repository.QuestionGradeRepository, totals repository.GradeRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) GradebookService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &gradebookService{
		grades: grades,
		totals: totals,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "gradebook_service").Logger(),
	}
}

// AssignmentTotal returns the stored total for the user, serving from cache
// when possible. A user without a stored grade row reads as a zero total.
func (s *gradebookService) AssignmentTotal(ctx context.Context, user models.User, assignmentID uint) (dto.AssignmentTotalResponse, error) {
	key := totalCacheKey(user.ID, assignmentID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil && cached != "" {
			var response dto.AssignmentTotalResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				observability.GradebookCacheRequests().WithLabelValues("hit").Inc()
				return response, nil
			}
		}
	}

	response := dto.AssignmentTotalResponse{
		AssignmentID: assignmentID,
		Username:     user.Username,
	}

	grade, err := s.totals.Get(ctx, user.ID, assignmentID)
	if err != nil {
		observability.GradebookCacheRequests().WithLabelValues("error").Inc()
		return dto.AssignmentTotalResponse{}, err
	}
	if grade != nil {
		response.Total = grade.Score
		response.ManualTotal = grade.ManualTotal
	}

	observability.GradebookCacheRequests().WithLabelValues("miss").Inc()

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache assignment total")
			}
		}
	}

	return response, nil
}

// AssignmentGrades lists the user's per-question grades for an assignment.
func (s *gradebookService) AssignmentGrades(ctx context.Context, user models.User, assignmentID uint) ([]dto.QuestionGradeResponse, error) {
	grades, err := s.grades.ListForAssignment(ctx, assignmentID, user.CourseName, user.Username)
	if err != nil {
		return nil, err
	}

	return dto.NewQuestionGradeResponseSlice(grades), nil
}

// totalCacheKey names the cached assignment total for one user. The grader
// deletes this key after every recomputation.
func totalCacheKey(userID, assignmentID uint) string {
	return fmt.Sprintf("gradebook:total:%d:%d", userID, assignmentID)
}
