package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/intervue-api/internal/models"
	"github.com/noah-isme/intervue-api/internal/observability"
	"github.com/noah-isme/intervue-api/internal/repository"
	"github.com/noah-isme/intervue-api/pkg/ai"
)

// QueueRunSummary reports the outcome of one queue processor batch run.
type QueueRunSummary struct {
	Fetched   int `json:"fetched"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// QueueService drains pending deferred evaluation jobs. It is invoked out of
// process on a schedule; each run handles a bounded batch.
type QueueService interface {
	ProcessPending(ctx context.Context, limit int) (QueueRunSummary, error)
}

type queueService struct {
	jobs      repository.EvaluationJobRepository
	persister resultPersister
	evaluator ai.Evaluator
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewQueueService constructs the queue processor.
func NewQueueService(
	jobs repository.EvaluationJobRepository,
	evaluations repository.EvaluationRepository,
	reports repository.FinalReportRepository,
	evaluator ai.Evaluator,
	events EvaluationEventPublisher,
	logger zerolog.Logger,
) QueueService {
	return &queueService{
		jobs:      jobs,
		persister: resultPersister{evaluations: evaluations, reports: reports, events: events},
		evaluator: evaluator,
		logger:    logger.With().Str("component", "queue_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/intervue-api/internal/service/queue"),
		now:       time.Now,
	}
}

// ProcessPending fetches up to limit pending jobs and grades each one
// independently. A job failure marks that job as error and the run moves on;
// a failure to even list the queue aborts the run.
func (s *queueService) ProcessPending(ctx context.Context, limit int) (QueueRunSummary, error) {
	ctx, span := s.tracer.Start(ctx, "queue.process_pending", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	start := s.now()
	defer func() {
		observability.QueueRunDuration().Observe(time.Since(start).Seconds())
	}()

	jobs, err := s.jobs.ListPending(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "queue_list_failed")
		return QueueRunSummary{}, fmt.Errorf("list pending jobs: %w", err)
	}

	summary := QueueRunSummary{Fetched: len(jobs)}
	for _, job := range jobs {
		claimed, err := s.jobs.Claim(ctx, job.ID)
		if err != nil {
			span.RecordError(err)
			summary.Failed++
			observability.QueueJobs().WithLabelValues("claim_failed").Inc()
			s.logger.Error().Err(err).Uint("job_id", job.ID).Msg("failed to claim job")
			continue
		}
		if !claimed {
			// Another worker run won the race; not our job anymore.
			summary.Skipped++
			observability.QueueJobs().WithLabelValues("skipped").Inc()
			s.logger.Debug().Uint("job_id", job.ID).Msg("job already claimed elsewhere")
			continue
		}

		if err := s.processJob(ctx, job); err != nil {
			summary.Failed++
			observability.QueueJobs().WithLabelValues("error").Inc()
			s.logger.Error().Err(err).Uint("job_id", job.ID).Str("session_id", job.SessionID).
				Msg("evaluation job failed")
			if updateErr := s.jobs.UpdateStatus(ctx, job.ID, models.JobStatusError); updateErr != nil {
				s.logger.Error().Err(updateErr).Uint("job_id", job.ID).Msg("failed to mark job as error")
			}
			continue
		}

		summary.Processed++
		observability.QueueJobs().WithLabelValues("done").Inc()
	}

	span.SetAttributes(
		attribute.Int("fetched", summary.Fetched),
		attribute.Int("processed", summary.Processed),
		attribute.Int("failed", summary.Failed),
		attribute.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// processJob grades one claimed job through the same evaluator chain the
// synchronous path uses and finalizes the session's records.
func (s *queueService) processJob(ctx context.Context, job models.EvaluationJob) error {
	input, err := jobInput(job)
	if err != nil {
		return err
	}

	result, err := s.evaluator.Evaluate(ctx, input)
	if err != nil {
		return err
	}

	if err := s.persister.persist(ctx, job.SessionID, job.TechStack, sourceWorker, result, false); err != nil {
		return err
	}

	if err := s.jobs.UpdateStatus(ctx, job.ID, models.JobStatusDone); err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}

	s.logger.Info().Uint("job_id", job.ID).Str("session_id", job.SessionID).
		Float64("overall_score", result.OverallScore).Msg("evaluation job completed")
	return nil
}

// jobInput rebuilds the evaluator input from the snapshots stored on the job.
func jobInput(job models.EvaluationJob) (ai.EvaluationInput, error) {
	var answers []ai.FreeTextAnswer
	if err := json.Unmarshal(job.Answers, &answers); err != nil {
		return ai.EvaluationInput{}, fmt.Errorf("decode job answers: %w", err)
	}

	var outcomes []ai.MCQOutcome
	if len(job.MCQDetails) > 0 {
		if err := json.Unmarshal(job.MCQDetails, &outcomes); err != nil {
			return ai.EvaluationInput{}, fmt.Errorf("decode job mcq details: %w", err)
		}
	}

	return ai.EvaluationInput{
		TechStack:     job.TechStack,
		ResumeContext: job.ResumeText,
		Answers:       answers,
		MCQ: ai.MCQContext{
			Marks:    job.MCQMarks,
			Total:    job.MCQTotal,
			Outcomes: outcomes,
		},
	}, nil
}
