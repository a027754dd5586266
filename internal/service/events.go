package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// EvaluationCompletedEvent announces that a session's evaluation reached its
// final state, from either the synchronous path or the queue worker.
type EvaluationCompletedEvent struct {
	SessionID    string    `json:"session_id"`
	TechStack    string    `json:"tech_stack"`
	OverallScore float64   `json:"overall_score"`
	Passed       bool      `json:"passed"`
	Source       string    `json:"source"`
	SentAt       time.Time `json:"sent_at"`
}

// EvaluationEventPublisher fans out evaluation lifecycle events.
type EvaluationEventPublisher interface {
	PublishCompleted(ctx context.Context, event EvaluationCompletedEvent)
}

type natsEventPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewEvaluationEventPublisher publishes completion events on the given NATS
// subject. A nil connection yields a no-op publisher: eventing is best-effort
// and never blocks grading.
func NewEvaluationEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EvaluationEventPublisher {
	if subject == "" {
		subject = "intervue.evaluations.completed"
	}

	return &natsEventPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "evaluation_events").Logger(),
	}
}

func (p *natsEventPublisher) PublishCompleted(ctx context.Context, event EvaluationCompletedEvent) {
	if p.conn == nil {
		return
	}

	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to encode evaluation event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to publish evaluation event")
	}
}
