// Package events publishes inventory domain events.
package events

import (
	"context"

	"github.com/medistock/medistock-backend/pkg/logger"
	"github.com/medistock/medistock-backend/pkg/messaging"
)

// EventPublisher is the messaging surface the inventory services use.
// Satisfied by messaging.Publisher and by test doubles.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// InventoryEventPublisher publishes inventory events after state changes
// have been committed. Publishing is best effort: failures are logged
// and never surfaced to callers.
type InventoryEventPublisher struct {
	publisher EventPublisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher.
// A nil publisher disables event publishing.
func NewInventoryEventPublisher(publisher EventPublisher, log *logger.Logger) *InventoryEventPublisher {
	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

func (p *InventoryEventPublisher) publish(ctx context.Context, eventType string, data interface{}) {
	if p.publisher == nil {
		return
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().
			Err(err).
			Str("event_type", eventType).
			Msg("failed to publish event")
	}
}

// PublishStockMovement publishes a recorded stock movement
func (p *InventoryEventPublisher) PublishStockMovement(ctx context.Context, event *messaging.StockMovementEvent) {
	p.publish(ctx, messaging.EventStockMovementRecorded, event)
}

// PublishMedicineCreated publishes a catalog addition
func (p *InventoryEventPublisher) PublishMedicineCreated(ctx context.Context, medicineID, name string) {
	p.publish(ctx, messaging.EventMedicineCreated, map[string]string{
		"medicine_id": medicineID,
		"name":        name,
	})
}

// PublishMedicineDeleted publishes a catalog removal
func (p *InventoryEventPublisher) PublishMedicineDeleted(ctx context.Context, medicineID string) {
	p.publish(ctx, messaging.EventMedicineDeleted, map[string]string{
		"medicine_id": medicineID,
	})
}

// PublishAlertGenerated publishes a generated alert
func (p *InventoryEventPublisher) PublishAlertGenerated(ctx context.Context, event *messaging.AlertGeneratedEvent) {
	p.publish(ctx, messaging.EventAlertGenerated, event)
}

// PublishSaleRecorded publishes a recorded sale
func (p *InventoryEventPublisher) PublishSaleRecorded(ctx context.Context, event *messaging.SaleRecordedEvent) {
	p.publish(ctx, messaging.EventSaleRecorded, event)
}
