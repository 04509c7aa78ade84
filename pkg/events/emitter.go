// Package events handles event emission for ticket lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Emitter publishes ticket lifecycle events after they are committed. A nil
// Emitter is valid and drops everything, for deployments without Kafka.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitTicketSynced emits a ticket.synced event once the ticket and its
// related rows are committed.
func (e *Emitter) EmitTicketSynced(ctx context.Context, runID string, ticket *models.Ticket) error {
	if e == nil {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitTicketSynced")
	defer span.End()

	data, err := json.Marshal(ticket)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"ticket_id": ticket.ID}).Error("Failed to encode ticket for event")
		return err
	}

	event := &kafka.TicketEvent{
		EventType: "ticket.synced",
		RunID:     runID,
		TicketID:  ticket.ID,
		Data:      data,
	}

	if err := e.producer.PublishTicketEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit ticket.synced event")
		return err
	}

	return nil
}
