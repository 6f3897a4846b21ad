package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/linkpay/linkpay/internal/domain/transaction"
)

// EventType identifies what a payment event describes
type EventType string

const (
	EventTypeTransactionRecorded EventType = "transaction.recorded"
	EventTypeTransactionUpdated  EventType = "transaction.updated"
)

// Status defines event publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// Event stores a ledger outcome for reliable publishing to Kafka. Events are
// appended within the same unit of work as the ledger write they describe.
type Event struct {
	ID            uuid.UUID       `json:"id" bson:"_id"`
	TransactionID uuid.UUID       `json:"transaction_id" bson:"transaction_id"`
	PaymentLinkID uuid.UUID       `json:"payment_link_id" bson:"payment_link_id"`
	Type          EventType       `json:"type" bson:"type"`
	Payload       json.RawMessage `json:"payload" bson:"payload"`
	Status        Status          `json:"status" bson:"status"`
	Attempts      int             `json:"attempts" bson:"attempts"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty" bson:"last_attempt_at,omitempty"`
}

// NewEvent snapshots a transaction into a pending payment event.
func NewEvent(eventType EventType, txn *transaction.Transaction) (*Event, error) {
	payload, err := json.Marshal(txn)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New(),
		TransactionID: txn.ID,
		PaymentLinkID: txn.PaymentLinkID,
		Type:          eventType,
		Payload:       payload,
		Status:        StatusPending,
		Attempts:      0,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Transaction extracts the transaction snapshot from the payload
func (e *Event) Transaction() (*transaction.Transaction, error) {
	var txn transaction.Transaction
	if err := json.Unmarshal(e.Payload, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}
