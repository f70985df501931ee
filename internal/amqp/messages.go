package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message type identifiers carried in the AMQP delivery Type field.
const (
	TypeTransactionCreated = "transaction.created"
	TypeReportRequest      = "report.request"
)

// TransactionCreatedMessage announces a newly recorded transaction.
// It carries only identifiers; consumers fetch the full record from
// the store.
type TransactionCreatedMessage struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionCreatedMessage creates a new transaction event.
func NewTransactionCreatedMessage(txID, ownerID uuid.UUID) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		TransactionID: txID,
		OwnerID:       ownerID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionCreatedMessageFromJSON creates a message from JSON bytes
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportRequestMessage asks the report worker to render a monthly PDF
// report for one owner. MonthCount is the series length; Year/Month
// pin the reference month.
type ReportRequestMessage struct {
	OwnerID    uuid.UUID `json:"owner_id"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	MonthCount int       `json:"month_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewReportRequestMessage creates a new report request.
func NewReportRequestMessage(ownerID uuid.UUID, year, month, monthCount int) *ReportRequestMessage {
	return &ReportRequestMessage{
		OwnerID:    ownerID,
		Year:       year,
		Month:      month,
		MonthCount: monthCount,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestMessageFromJSON creates a message from JSON bytes
func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
