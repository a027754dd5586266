package service

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/noah-isme/intervue-api/internal/models"
	"github.com/noah-isme/intervue-api/internal/repository"
	"github.com/noah-isme/intervue-api/pkg/ai"
)

// resultPersister writes a grading result into both stores (the standalone
// evaluation row and the final report projection) and announces final
// results. The synchronous router and the queue worker share it so the two
// paths cannot drift.
type resultPersister struct {
	evaluations repository.EvaluationRepository
	reports     repository.FinalReportRepository
	events      EvaluationEventPublisher
}

func (p *resultPersister) persist(ctx context.Context, sessionID, techStack, source string, result ai.EvaluationResult, provisional bool) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode evaluation result: %w", err)
	}

	evaluation := models.Evaluation{
		SessionID:    sessionID,
		TechStack:    techStack,
		OverallScore: result.OverallScore,
		Passed:       result.Passed(),
		Provisional:  provisional,
		Payload:      datatypes.JSON(payload),
	}
	if err := p.evaluations.Upsert(ctx, &evaluation); err != nil {
		return fmt.Errorf("store evaluation: %w", err)
	}

	if provisional {
		if err := p.reports.SetProvisionalEvaluation(ctx, sessionID, datatypes.JSON(payload)); err != nil {
			return fmt.Errorf("store provisional report evaluation: %w", err)
		}
		return nil
	}

	if err := p.reports.SetFinalEvaluation(ctx, sessionID, datatypes.JSON(payload)); err != nil {
		return fmt.Errorf("store final report evaluation: %w", err)
	}

	if p.events != nil {
		p.events.PublishCompleted(ctx, EvaluationCompletedEvent{
			SessionID:    sessionID,
			TechStack:    techStack,
			OverallScore: result.OverallScore,
			Passed:       result.Passed(),
			Source:       source,
		})
	}

	return nil
}
