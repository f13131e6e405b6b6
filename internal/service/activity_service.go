package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/lumen-academy/grading-api/internal/models"
	"github.com/lumen-academy/grading-api/internal/repository"
)

// ActivityEntry captures the details required to persist a grading audit entry.
type ActivityEntry struct {
	Username   string
	Action     string
	QuestionID string
	Metadata   map[string]interface{}
}

// ActivityRecorder defines behaviour for recording grading activity.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityService persists and queries the grading audit trail.
type ActivityService interface {
	ActivityRecorder
	ListByUser(ctx context.Context, username string, limit int) ([]models.GradingActivity, error)
}

type activityService struct {
	repo   repository.GradingActivityRepository
	logger zerolog.Logger
}

// NewActivityService constructs the grading activity service.
func NewActivityService(repo repository.GradingActivityRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.Username) == "" {
		return fmt.Errorf("username is required")
	}

	model := models.GradingActivity{
		Username:   entry.Username,
		Action:     strings.ToLower(strings.TrimSpace(entry.Action)),
		QuestionID: entry.QuestionID,
		Metadata:   datatypes.JSONMap(entry.Metadata),
	}

	if err := s.repo.Record(ctx, &model); err != nil {
		return err
	}

	s.logger.Debug().Str("action", model.Action).Str("username", model.Username).Msg("grading activity recorded")

	return nil
}

func (s *activityService) ListByUser(ctx context.Context, username string, limit int) ([]models.GradingActivity, error) {
	return s.repo.ListByUser(ctx, username, limit)
}
