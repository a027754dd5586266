package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/intervue-api/internal/dto"
	"github.com/noah-isme/intervue-api/internal/service"
	"github.com/noah-isme/intervue-api/internal/utils"
)

// InterviewHandler manages submission, response listing, question bank and
// report endpoints.
type InterviewHandler struct {
	evaluations service.EvaluationService
	questions   service.QuestionService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewInterviewHandler builds an interview handler instance.
func NewInterviewHandler(evaluations service.EvaluationService, questions service.QuestionService, validate *validator.Validate, logger zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		evaluations: evaluations,
		questions:   questions,
		validator:   validate,
		logger:      logger.With().Str("component", "interview_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *InterviewHandler) Register(router fiber.Router, submitLimiter fiber.Handler) {
	if submitLimiter == nil {
		submitLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Post("/responses", submitLimiter, h.submit)
	router.Get("/responses", h.listResponses)
	router.Get("/questions", h.listQuestions)
	router.Get("/reports", h.getReport)
	router.Post("/resumes", h.uploadResume)
}

func (h *InterviewHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitInterviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.evaluations.Submit(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "responses recorded", result)
}

func (h *InterviewHandler) listResponses(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Query("sessionId"))
	if sessionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "sessionId is required")
	}

	responses, err := h.evaluations.ListResponses(c.UserContext(), sessionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "responses retrieved", responses)
}

func (h *InterviewHandler) listQuestions(c *fiber.Ctx) error {
	if c.Query("listTechStacks") == "true" {
		stacks, err := h.questions.ListTechStacks(c.UserContext())
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, "tech stacks retrieved", stacks)
	}

	techStack := strings.TrimSpace(c.Query("techStack"))
	if techStack == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "techStack is required")
	}

	questions, err := h.questions.GetQuestions(c.UserContext(), techStack, c.Query("type"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *InterviewHandler) getReport(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Query("sessionId"))
	if sessionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "sessionId is required")
	}

	report, err := h.evaluations.GetFinalReport(c.UserContext(), sessionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "report retrieved", report)
}

func (h *InterviewHandler) uploadResume(c *fiber.Ctx) error {
	var payload dto.ResumeUploadRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.evaluations.StoreResume(c.UserContext(), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "resume stored", nil)
}

func (h *InterviewHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "final report not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
