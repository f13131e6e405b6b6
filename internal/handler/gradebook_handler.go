package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lumen-academy/grading-api/internal/models"
	"github.com/lumen-academy/grading-api/internal/repository"
	"github.com/lumen-academy/grading-api/internal/service"
	"github.com/lumen-academy/grading-api/internal/utils"
)

// GradebookHandler serves assignment totals and per-question grades.
type GradebookHandler struct {
	gradebook service.GradebookService
	users     repository.UserRepository
	logger    zerolog.Logger
}

// NewGradebookHandler builds a gradebook handler instance.
func NewGradebookHandler(gradebook service.GradebookService, users repository.UserRepository, logger zerolog.Logger) *GradebookHandler {
	return &GradebookHandler{
		gradebook: gradebook,
		users:     users,
		logger:    logger.With().Str("component", "gradebook_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradebookHandler) Register(router fiber.Router) {
	router.Get("/assignments/:assignmentID/total", h.total)
	router.Get("/assignments/:assignmentID/grades", h.grades)
}

func (h *GradebookHandler) total(c *fiber.Ctx) error {
	user, assignmentID, ok, err := h.resolveRequest(c)
	if !ok {
		return err
	}

	response, err := h.gradebook.AssignmentTotal(c.Context(), user, assignmentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "assignment total retrieved", response)
}

func (h *GradebookHandler) grades(c *fiber.Ctx) error {
	user, assignmentID, ok, err := h.resolveRequest(c)
	if !ok {
		return err
	}

	grades, err := h.gradebook.AssignmentGrades(c.Context(), user, assignmentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "assignment grades retrieved", grades)
}

// resolveRequest authenticates the caller and parses the assignment route
// parameter. When ok is false a response has already been written and the
// returned error is the handler's result.
func (h *GradebookHandler) resolveRequest(c *fiber.Ctx) (models.User, uint, bool, error) {
	userID, isUint := c.Locals("user_id").(uint)
	if !isUint {
		return models.User{}, 0, false, utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	parsed, err := strconv.ParseUint(c.Params("assignmentID"), 10, 64)
	if err != nil || parsed == 0 {
		return models.User{}, 0, false, utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	user, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, 0, false, utils.SendError(c, fiber.StatusUnauthorized, "unknown user")
		}
		h.logger.Error().Err(err).Msg("internal server error")
		return models.User{}, 0, false, utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return user, uint(parsed), true, nil
}
