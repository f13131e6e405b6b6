package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lumen-academy/grading-api/internal/dto"
	"github.com/lumen-academy/grading-api/internal/repository"
	"github.com/lumen-academy/grading-api/internal/service"
	"github.com/lumen-academy/grading-api/internal/utils"
)

// GradingHandler ingests learner submissions and returns grading outcomes.
type GradingHandler struct {
	grader service.GradingService
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(grader service.GradingService, users repository.UserRepository, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		grader: grader,
		users:  users,
		logger: logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/submissions", h.submit)
}

func (h *GradingHandler) submit(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmissionEvent
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusUnauthorized, "unknown user")
		}
		return h.handleError(c, err)
	}

	outcome, err := h.grader.GradeSubmission(c.Context(), user, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission processed", outcome)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	}

	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
