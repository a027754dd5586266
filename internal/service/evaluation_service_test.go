package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/intervue-api/internal/dto"
	"github.com/noah-isme/intervue-api/internal/models"
	"github.com/noah-isme/intervue-api/internal/repository"
	"github.com/noah-isme/intervue-api/pkg/ai"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Question{},
		&models.Response{},
		&models.Evaluation{},
		&models.EvaluationJob{},
		&models.FinalReport{},
		&models.Resume{},
	))
	return db
}

type stubEvaluator struct {
	result ai.EvaluationResult
	err    error
	calls  int
	inputs []ai.EvaluationInput
}

func (s *stubEvaluator) Evaluate(ctx context.Context, input ai.EvaluationInput) (ai.EvaluationResult, error) {
	s.calls++
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return ai.EvaluationResult{}, s.err
	}
	return s.result, nil
}

type recordingPublisher struct {
	events []EvaluationCompletedEvent
}

func (r *recordingPublisher) PublishCompleted(ctx context.Context, event EvaluationCompletedEvent) {
	r.events = append(r.events, event)
}

type serviceFixture struct {
	db          *gorm.DB
	service     EvaluationService
	evaluator   *stubEvaluator
	publisher   *recordingPublisher
	jobs        repository.EvaluationJobRepository
	evaluations repository.EvaluationRepository
	reports     repository.FinalReportRepository
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := setupServiceTestDB(t)

	evaluator := &stubEvaluator{result: passingResult()}
	publisher := &recordingPublisher{}
	logger := zerolog.Nop()

	questionRepo := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	reportRepo := repository.NewFinalReportRepository(db)
	jobRepo := repository.NewEvaluationJobRepository(db)
	resumeRepo := repository.NewResumeRepository(db)

	questions := NewQuestionService(questionRepo, nil, time.Minute, logger)
	svc := NewEvaluationService(
		questions,
		responseRepo,
		evaluationRepo,
		reportRepo,
		jobRepo,
		resumeRepo,
		evaluator,
		publisher,
		validator.New(validator.WithRequiredStructEnabled()),
		logger,
	)

	return &serviceFixture{
		db:          db,
		service:     svc,
		evaluator:   evaluator,
		publisher:   publisher,
		jobs:        jobRepo,
		evaluations: evaluationRepo,
		reports:     reportRepo,
	}
}

func passingResult() ai.EvaluationResult {
	return ai.EvaluationResult{
		OverallScore:       78,
		MCQScorePercentage: 50,
		WrittenAnswerScore: 85,
		TechnicalRating:    8,
		Strengths:          []string{"clear explanations"},
		Weaknesses:         []string{"shallow on indexing"},
		Recommendations:    []string{"review query planning"},
		Result:             ai.ResultPass,
	}
}

func (f *serviceFixture) seedQuestions(t *testing.T) {
	t.Helper()
	require.NoError(t, f.db.Create(&[]models.Question{
		{TechStack: "React", Type: models.QuestionTypeMCQ, Text: "What is JSX?", OptionA: "Syntax", OptionB: "Library", CorrectAnswer: "1"},
		{TechStack: "React", Type: models.QuestionTypeMCQ, Text: "What hook memoizes?", OptionA: "useMemo", OptionB: "useEffect", CorrectAnswer: "C"},
	}).Error)
}

func mcqSubmission(sessionID string) dto.SubmitInterviewRequest {
	return dto.SubmitInterviewRequest{
		SessionID: sessionID,
		TechStack: "React",
		Responses: []dto.SubmittedResponse{
			// Normalizes against the stored "1" -> "A".
			{QuestionID: 1, QuestionText: "What is JSX?", QuestionType: models.QuestionTypeMCQ, Answer: "A", TimeSpentSeconds: 30},
			{QuestionID: 2, QuestionText: "What hook memoizes?", QuestionType: models.QuestionTypeMCQ, Answer: "B", TimeSpentSeconds: 45},
		},
	}
}

func withFreeText(payload dto.SubmitInterviewRequest) dto.SubmitInterviewRequest {
	payload.Responses = append(payload.Responses, dto.SubmittedResponse{
		QuestionID:       3,
		QuestionText:     "Explain reconciliation.",
		QuestionType:     models.QuestionTypeLong,
		Answer:           "The virtual DOM is diffed against the previous tree.",
		TimeSpentSeconds: 120,
	})
	return payload
}

func TestSubmitRejectsInvalidPayload(t *testing.T) {
	fixture := newServiceFixture(t)

	_, err := fixture.service.Submit(context.Background(), dto.SubmitInterviewRequest{TechStack: "React"})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestSubmitMCQOnlyIsImmediatelyFinal(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.seedQuestions(t)

	result, err := fixture.service.Submit(context.Background(), mcqSubmission("sess-mcq"))
	require.NoError(t, err)

	require.Equal(t, 1, result.MCQMarks)
	require.Equal(t, 2, result.MCQTotal)
	require.Len(t, result.MCQDetails, 2)
	require.True(t, result.MCQDetails[0].IsCorrect)
	require.False(t, result.MCQDetails[1].IsCorrect)
	require.False(t, result.Queued)

	require.NotNil(t, result.Evaluation)
	require.Equal(t, 50.0, result.Evaluation.OverallScore)
	require.Equal(t, 50.0, result.Evaluation.MCQScorePercentage)
	require.Zero(t, result.Evaluation.WrittenAnswerScore)
	require.Equal(t, ai.ResultFail, result.Evaluation.Result)

	report, err := fixture.reports.GetBySession(context.Background(), "sess-mcq")
	require.NoError(t, err)
	require.True(t, report.IsFinal())
	require.Equal(t, 1, report.MCQMarks)

	evaluation, err := fixture.evaluations.GetBySession(context.Background(), "sess-mcq")
	require.NoError(t, err)
	require.False(t, evaluation.Provisional)
	require.False(t, evaluation.Passed)

	require.Zero(t, fixture.evaluator.calls)
	require.Len(t, fixture.publisher.events, 1)
	require.Equal(t, sourceSync, fixture.publisher.events[0].Source)
}

func TestSubmitStandardTierDefersFreeText(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.seedQuestions(t)

	result, err := fixture.service.Submit(context.Background(), withFreeText(mcqSubmission("sess-std")))
	require.NoError(t, err)

	require.True(t, result.Queued)
	require.NotNil(t, result.Evaluation)
	require.NotEmpty(t, result.Evaluation.Note)
	require.Zero(t, result.Evaluation.WrittenAnswerScore)
	require.Zero(t, fixture.evaluator.calls)

	pending, err := fixture.jobs.CountByStatus(context.Background(), models.JobStatusPending)
	require.NoError(t, err)
	require.Equal(t, int64(1), pending)

	report, err := fixture.reports.GetBySession(context.Background(), "sess-std")
	require.NoError(t, err)
	require.False(t, report.IsFinal())
	require.Equal(t, models.ReportStatusProcessing, report.Status)

	evaluation, err := fixture.evaluations.GetBySession(context.Background(), "sess-std")
	require.NoError(t, err)
	require.True(t, evaluation.Provisional)

	// Provisional results never fire completion events.
	require.Empty(t, fixture.publisher.events)
}

func TestSubmitProTierGradesInline(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.seedQuestions(t)

	payload := withFreeText(mcqSubmission("sess-pro"))
	payload.IsPro = true
	payload.ResumeText = "Five years of frontend work."

	result, err := fixture.service.Submit(context.Background(), payload)
	require.NoError(t, err)

	require.False(t, result.Queued)
	require.Empty(t, result.EvaluationError)
	require.NotNil(t, result.Evaluation)
	require.Equal(t, 78.0, result.Evaluation.OverallScore)
	require.Equal(t, 1, fixture.evaluator.calls)
	require.Equal(t, "Five years of frontend work.", fixture.evaluator.inputs[0].ResumeContext)
	require.Len(t, fixture.evaluator.inputs[0].Answers, 1)
	require.Equal(t, 1, fixture.evaluator.inputs[0].MCQ.Marks)

	pending, err := fixture.jobs.CountByStatus(context.Background(), models.JobStatusPending)
	require.NoError(t, err)
	require.Zero(t, pending)

	report, err := fixture.reports.GetBySession(context.Background(), "sess-pro")
	require.NoError(t, err)
	require.True(t, report.IsFinal())

	require.Len(t, fixture.publisher.events, 1)
	require.True(t, fixture.publisher.events[0].Passed)
}

func TestSubmitProTierEvaluatorFailureKeepsMCQResults(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.seedQuestions(t)
	fixture.evaluator.err = errors.New("model unavailable")

	payload := withFreeText(mcqSubmission("sess-pro-fail"))
	payload.IsPro = true

	result, err := fixture.service.Submit(context.Background(), payload)
	require.NoError(t, err)

	require.NotEmpty(t, result.EvaluationError)
	require.Nil(t, result.Evaluation)
	require.Equal(t, 1, result.MCQMarks)

	// The report keeps its pre-evaluation state so a later retry can finish it.
	report, err := fixture.reports.GetBySession(context.Background(), "sess-pro-fail")
	require.NoError(t, err)
	require.False(t, report.IsFinal())
	require.Empty(t, fixture.publisher.events)
}

func TestSubmitUsesStoredResumeWhenPayloadHasNone(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.seedQuestions(t)

	require.NoError(t, fixture.service.StoreResume(context.Background(), dto.ResumeUploadRequest{
		FileName:      "resume.pdf",
		ExtractedText: "Backend engineer, Go and Postgres.",
		SessionID:     "sess-resume",
	}))

	payload := withFreeText(mcqSubmission("sess-resume"))
	payload.IsPro = true

	_, err := fixture.service.Submit(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, "Backend engineer, Go and Postgres.", fixture.evaluator.inputs[0].ResumeContext)
}

func TestSubmitSanitizesFreeTextAnswers(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.seedQuestions(t)

	payload := mcqSubmission("sess-sanitize")
	payload.Responses = append(payload.Responses, dto.SubmittedResponse{
		QuestionID:   3,
		QuestionText: "Explain hooks.",
		QuestionType: models.QuestionTypeShort,
		Answer:       `Hooks manage state.<script>alert("x")</script>`,
	})

	_, err := fixture.service.Submit(context.Background(), payload)
	require.NoError(t, err)

	responses, err := fixture.service.ListResponses(context.Background(), "sess-sanitize")
	require.NoError(t, err)
	require.Len(t, responses, 3)
	require.Equal(t, "Hooks manage state.", responses[2].Answer)
}

func TestResubmissionAppendsAndRefreshesReport(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.seedQuestions(t)

	_, err := fixture.service.Submit(context.Background(), mcqSubmission("sess-again"))
	require.NoError(t, err)

	second := mcqSubmission("sess-again")
	second.Responses = second.Responses[:1]
	_, err = fixture.service.Submit(context.Background(), second)
	require.NoError(t, err)

	responses, err := fixture.service.ListResponses(context.Background(), "sess-again")
	require.NoError(t, err)
	require.Len(t, responses, 3)

	report, err := fixture.service.GetFinalReport(context.Background(), "sess-again")
	require.NoError(t, err)
	require.Equal(t, 1, report.MCQMarks)
	require.Equal(t, 1, report.MCQTotal)
}

func TestGetFinalReportMissingSession(t *testing.T) {
	fixture := newServiceFixture(t)

	_, err := fixture.service.GetFinalReport(context.Background(), "sess-missing")
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestDeferredJobCompletesThroughQueue(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.seedQuestions(t)

	_, err := fixture.service.Submit(context.Background(), withFreeText(mcqSubmission("sess-queue")))
	require.NoError(t, err)

	queue := NewQueueService(
		fixture.jobs,
		fixture.evaluations,
		fixture.reports,
		fixture.evaluator,
		fixture.publisher,
		zerolog.Nop(),
	)

	summary, err := queue.ProcessPending(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Fetched)
	require.Equal(t, 1, summary.Processed)

	require.Equal(t, 1, fixture.evaluator.calls)
	require.Len(t, fixture.evaluator.inputs[0].Answers, 1)
	require.Equal(t, "Explain reconciliation.", fixture.evaluator.inputs[0].Answers[0].Question)

	report, err := fixture.service.GetFinalReport(context.Background(), "sess-queue")
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusFinal, report.Status)

	var graded ai.EvaluationResult
	require.NoError(t, json.Unmarshal(report.Evaluation, &graded))
	require.Equal(t, 85.0, graded.WrittenAnswerScore)

	evaluation, err := fixture.evaluations.GetBySession(context.Background(), "sess-queue")
	require.NoError(t, err)
	require.False(t, evaluation.Provisional)
	require.Equal(t, 78.0, evaluation.OverallScore)

	done, err := fixture.jobs.CountByStatus(context.Background(), models.JobStatusDone)
	require.NoError(t, err)
	require.Equal(t, int64(1), done)

	require.Len(t, fixture.publisher.events, 1)
	require.Equal(t, sourceWorker, fixture.publisher.events[0].Source)
}
