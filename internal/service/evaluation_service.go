package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/intervue-api/internal/dto"
	"github.com/noah-isme/intervue-api/internal/grading"
	"github.com/noah-isme/intervue-api/internal/models"
	"github.com/noah-isme/intervue-api/internal/repository"
	"github.com/noah-isme/intervue-api/pkg/ai"
)

// ErrReportNotFound indicates no final report exists for the session.
var ErrReportNotFound = errors.New("final report not found")

// Message shown to clients when synchronous grading exhausted its retries.
// The raw upstream error never leaves the service.
const evaluationFailedMessage = "free-text evaluation failed; MCQ results are available"

// processingNote marks a provisional MCQ-only result awaiting the queue worker.
const processingNote = "Free-text answers are queued for evaluation."

// Event source labels.
const (
	sourceSync   = "sync"
	sourceWorker = "worker"
)

// EvaluationService orchestrates a submission: deterministic MCQ grading,
// the sync-vs-deferred routing decision, and every resulting state
// transition on the session's records.
type EvaluationService interface {
	Submit(ctx context.Context, payload dto.SubmitInterviewRequest) (dto.SubmitInterviewResponse, error)
	ListResponses(ctx context.Context, sessionID string) ([]dto.ResponseItem, error)
	GetFinalReport(ctx context.Context, sessionID string) (dto.FinalReportResponse, error)
	StoreResume(ctx context.Context, payload dto.ResumeUploadRequest) error
}

type evaluationService struct {
	questions QuestionService
	responses repository.ResponseRepository
	jobs      repository.EvaluationJobRepository
	resumes   repository.ResumeRepository
	persister resultPersister
	reports   repository.FinalReportRepository
	evaluator ai.Evaluator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewEvaluationService constructs the submission router.
func NewEvaluationService(
	questions QuestionService,
	responses repository.ResponseRepository,
	evaluations repository.EvaluationRepository,
	reports repository.FinalReportRepository,
	jobs repository.EvaluationJobRepository,
	resumes repository.ResumeRepository,
	evaluator ai.Evaluator,
	events EvaluationEventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		questions: questions,
		responses: responses,
		jobs:      jobs,
		resumes:   resumes,
		persister: resultPersister{evaluations: evaluations, reports: reports, events: events},
		reports:   reports,
		evaluator: evaluator,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/intervue-api/internal/service/evaluation"),
	}
}

func (s *evaluationService) Submit(ctx context.Context, payload dto.SubmitInterviewRequest) (dto.SubmitInterviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.submit", trace.WithAttributes(
		attribute.String("session_id", payload.SessionID),
		attribute.String("tech_stack", payload.TechStack),
		attribute.Int("responses", len(payload.Responses)),
		attribute.Bool("is_pro", payload.IsPro),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmitInterviewResponse{}, err
	}

	questions, err := s.questions.GetQuestions(ctx, payload.TechStack, models.QuestionTypeMCQ)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "question_lookup_failed")
		return dto.SubmitInterviewResponse{}, fmt.Errorf("load question bank: %w", err)
	}

	responses := s.buildResponses(payload)
	marks, details := grading.GradeMCQ(responses, questions)

	if err := s.responses.AppendBatch(ctx, responses); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "response_store_failed")
		return dto.SubmitInterviewResponse{}, fmt.Errorf("store responses: %w", err)
	}

	report := models.FinalReport{
		SessionID: payload.SessionID,
		TechStack: payload.TechStack,
		MCQMarks:  marks,
		MCQTotal:  len(details),
	}
	if err := s.reports.UpsertMCQ(ctx, &report); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report_store_failed")
		return dto.SubmitInterviewResponse{}, fmt.Errorf("store final report: %w", err)
	}

	result := dto.SubmitInterviewResponse{
		SessionID:  payload.SessionID,
		MCQMarks:   marks,
		MCQTotal:   len(details),
		MCQDetails: details,
	}

	mcqContext := buildMCQContext(marks, details)
	freeText := s.collectFreeText(responses)

	if len(freeText) == 0 {
		return s.finishMCQOnly(ctx, span, payload, mcqContext, result)
	}

	if payload.IsPro {
		return s.finishSynchronous(ctx, span, payload, mcqContext, freeText, result)
	}

	return s.finishDeferred(ctx, span, payload, mcqContext, details, freeText, result)
}

// finishMCQOnly finalizes a session with no free-text answers: the
// deterministic MCQ result is immediately final regardless of tier.
func (s *evaluationService) finishMCQOnly(ctx context.Context, span trace.Span, payload dto.SubmitInterviewRequest, mcq ai.MCQContext, result dto.SubmitInterviewResponse) (dto.SubmitInterviewResponse, error) {
	evaluation := mcqOnlyResult(mcq, "")
	if err := s.persister.persist(ctx, payload.SessionID, payload.TechStack, sourceSync, evaluation, false); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_store_failed")
		return dto.SubmitInterviewResponse{}, err
	}

	result.Evaluation = &evaluation
	span.SetAttributes(attribute.String("evaluation.path", "mcq_only"))
	return result, nil
}

// finishSynchronous grades free-text answers inline for privileged sessions.
// An evaluator failure after retries is reported explicitly while the MCQ
// results still come back, and the report stays at its provisional state.
func (s *evaluationService) finishSynchronous(ctx context.Context, span trace.Span, payload dto.SubmitInterviewRequest, mcq ai.MCQContext, freeText []ai.FreeTextAnswer, result dto.SubmitInterviewResponse) (dto.SubmitInterviewResponse, error) {
	input := ai.EvaluationInput{
		TechStack:     payload.TechStack,
		ResumeContext: s.resumeContext(ctx, payload),
		Answers:       freeText,
		MCQ:           mcq,
	}

	evaluation, err := s.evaluator.Evaluate(ctx, input)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", payload.SessionID).Msg("synchronous evaluation failed")
		span.RecordError(err)
		span.SetAttributes(attribute.String("evaluation.path", "sync_failed"))
		result.EvaluationError = evaluationFailedMessage
		return result, nil
	}

	if err := s.persister.persist(ctx, payload.SessionID, payload.TechStack, sourceSync, evaluation, false); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_store_failed")
		return dto.SubmitInterviewResponse{}, err
	}

	result.Evaluation = &evaluation
	span.SetAttributes(attribute.String("evaluation.path", "sync"))
	return result, nil
}

// finishDeferred stores a provisional MCQ-only result and parks the
// free-text answers on the queue so the request returns quickly.
func (s *evaluationService) finishDeferred(ctx context.Context, span trace.Span, payload dto.SubmitInterviewRequest, mcq ai.MCQContext, details []grading.MCQDetail, freeText []ai.FreeTextAnswer, result dto.SubmitInterviewResponse) (dto.SubmitInterviewResponse, error) {
	provisional := mcqOnlyResult(mcq, processingNote)
	if err := s.persister.persist(ctx, payload.SessionID, payload.TechStack, sourceSync, provisional, true); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_store_failed")
		return dto.SubmitInterviewResponse{}, err
	}

	answersJSON, err := json.Marshal(freeText)
	if err != nil {
		return dto.SubmitInterviewResponse{}, fmt.Errorf("encode job answers: %w", err)
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return dto.SubmitInterviewResponse{}, fmt.Errorf("encode job mcq details: %w", err)
	}

	job := models.EvaluationJob{
		SessionID:  payload.SessionID,
		TechStack:  payload.TechStack,
		Answers:    datatypes.JSON(answersJSON),
		MCQDetails: datatypes.JSON(detailsJSON),
		MCQMarks:   mcq.Marks,
		MCQTotal:   mcq.Total,
		ResumeText: s.resumeContext(ctx, payload),
	}
	if err := s.jobs.Enqueue(ctx, &job); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "job_enqueue_failed")
		return dto.SubmitInterviewResponse{}, fmt.Errorf("enqueue evaluation job: %w", err)
	}

	result.Evaluation = &provisional
	result.Queued = true
	span.SetAttributes(
		attribute.String("evaluation.path", "deferred"),
		attribute.Int64("job_id", int64(job.ID)),
	)
	return result, nil
}

func (s *evaluationService) ListResponses(ctx context.Context, sessionID string) ([]dto.ResponseItem, error) {
	responses, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ResponseItem, 0, len(responses))
	for _, response := range responses {
		items = append(items, dto.NewResponseItem(response))
	}

	return items, nil
}

func (s *evaluationService) GetFinalReport(ctx context.Context, sessionID string) (dto.FinalReportResponse, error) {
	report, err := s.reports.GetBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FinalReportResponse{}, ErrReportNotFound
		}
		return dto.FinalReportResponse{}, err
	}

	return dto.NewFinalReportResponse(report), nil
}

func (s *evaluationService) StoreResume(ctx context.Context, payload dto.ResumeUploadRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	resume := models.Resume{
		FileName:      payload.FileName,
		ExtractedText: s.sanitizer.Sanitize(payload.ExtractedText),
		SessionID:     payload.SessionID,
		UserID:        payload.UserID,
	}
	return s.resumes.Create(ctx, &resume)
}

// buildResponses maps the submission payload to storable rows, sanitizing
// free-text before it reaches the store or the grading prompt.
func (s *evaluationService) buildResponses(payload dto.SubmitInterviewRequest) []models.Response {
	responses := make([]models.Response, 0, len(payload.Responses))
	for _, item := range payload.Responses {
		answer := item.Answer
		if item.QuestionType != models.QuestionTypeMCQ {
			answer = s.sanitizer.Sanitize(answer)
		}
		responses = append(responses, models.Response{
			SessionID:        payload.SessionID,
			TechStack:        payload.TechStack,
			QuestionID:       item.QuestionID,
			QuestionText:     item.QuestionText,
			QuestionType:     item.QuestionType,
			Answer:           answer,
			TimeSpentSeconds: item.TimeSpentSeconds,
			IsPro:            payload.IsPro,
		})
	}
	return responses
}

func (s *evaluationService) collectFreeText(responses []models.Response) []ai.FreeTextAnswer {
	answers := make([]ai.FreeTextAnswer, 0)
	for _, response := range responses {
		if !response.IsFreeText() {
			continue
		}
		answers = append(answers, ai.FreeTextAnswer{
			QuestionNumber:   len(answers) + 1,
			QuestionType:     response.QuestionType,
			Question:         response.QuestionText,
			Answer:           response.Answer,
			TimeSpentSeconds: response.TimeSpentSeconds,
		})
	}
	return answers
}

// resumeContext prefers resume text supplied with the submission, falling
// back to the latest stored resume for the session.
func (s *evaluationService) resumeContext(ctx context.Context, payload dto.SubmitInterviewRequest) string {
	if payload.ResumeText != "" {
		return s.sanitizer.Sanitize(payload.ResumeText)
	}

	resume, err := s.resumes.LatestBySession(ctx, payload.SessionID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("session_id", payload.SessionID).Msg("failed to load stored resume")
		}
		return ""
	}

	return resume.ExtractedText
}

func buildMCQContext(marks int, details []grading.MCQDetail) ai.MCQContext {
	outcomes := make([]ai.MCQOutcome, 0, len(details))
	for _, detail := range details {
		outcomes = append(outcomes, ai.MCQOutcome{
			QuestionNumber: detail.QuestionNumber,
			Question:       detail.Question,
			UserAnswer:     detail.UserAnswer,
			CorrectAnswer:  detail.CorrectAnswer,
			IsCorrect:      detail.IsCorrect,
		})
	}

	return ai.MCQContext{Marks: marks, Total: len(details), Outcomes: outcomes}
}

// mcqOnlyResult synthesizes a deterministic evaluation from MCQ figures
// alone. Used both as the immediately-final result for MCQ-only sessions and
// as the provisional result on the deferred path.
func mcqOnlyResult(mcq ai.MCQContext, note string) ai.EvaluationResult {
	percentage := mcq.Percentage()

	rating := math.Round(percentage / 10)
	if rating < 1 {
		rating = 1
	}
	if rating > 10 {
		rating = 10
	}

	analysis := make([]ai.MCQAnalysis, 0, len(mcq.Outcomes))
	for _, outcome := range mcq.Outcomes {
		analysis = append(analysis, ai.MCQAnalysis{
			QuestionNumber: outcome.QuestionNumber,
			Question:       outcome.Question,
			UserAnswer:     outcome.UserAnswer,
			CorrectAnswer:  outcome.CorrectAnswer,
			IsCorrect:      outcome.IsCorrect,
		})
	}

	result := ai.EvaluationResult{
		OverallScore:       percentage,
		MCQScorePercentage: percentage,
		WrittenAnswerScore: 0,
		TechnicalRating:    rating,
		MCQAnalysis:        analysis,
		Strengths:          []string{},
		Weaknesses:         []string{},
		Recommendations:    []string{},
		Note:               note,
	}

	if result.Passed() {
		result.Result = ai.ResultPass
	} else {
		result.Result = ai.ResultFail
	}

	return result
}
