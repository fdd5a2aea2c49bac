package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventStockMovementRecorded = "inventory.movement.recorded"
	EventMedicineCreated       = "inventory.medicine.created"
	EventMedicineDeleted       = "inventory.medicine.deleted"
	EventAlertGenerated        = "inventory.alert.generated"
	EventSaleRecorded          = "sales.sale.recorded"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// StockMovementEvent is the payload for inventory.movement.recorded
type StockMovementEvent struct {
	MovementID  string `json:"movement_id"`
	MedicineID  string `json:"medicine_id"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	NewQuantity int    `json:"new_quantity"`
	NewStatus   string `json:"new_status"`
	BatchNumber string `json:"batch_number"`
	Reason      string `json:"reason"`
	PerformedBy string `json:"performed_by,omitempty"`
}

// AlertGeneratedEvent is the payload for inventory.alert.generated
type AlertGeneratedEvent struct {
	AlertID      string `json:"alert_id"`
	AlertType    string `json:"alert_type"`
	Severity     string `json:"severity"`
	MedicineID   string `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	Message      string `json:"message"`
}

// SaleRecordedEvent is the payload for sales.sale.recorded
type SaleRecordedEvent struct {
	SaleID      string `json:"sale_id"`
	MedicineID  string `json:"medicine_id"`
	Quantity    int    `json:"quantity"`
	TotalAmount string `json:"total_amount"`
	SoldBy      string `json:"sold_by,omitempty"`
}
