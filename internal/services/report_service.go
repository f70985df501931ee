package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"finanzas/internal/amqp"
)

// ErrReportsUnavailable means no broker connection exists, so report
// requests cannot be queued.
var ErrReportsUnavailable = errors.New("report generation unavailable")

// ErrInvalidReportMonth flags a reference month outside 1..12.
var ErrInvalidReportMonth = errors.New("invalid report month")

// ReportService queues monthly report renders for the report worker.
type ReportService struct {
	amqpClient *amqp.Client
}

func NewReportService(amqpClient *amqp.Client) *ReportService {
	return &ReportService{amqpClient: amqpClient}
}

// Request publishes a report-request message for the owner's given
// reference month. Unlike transaction-created events this is not best
// effort: the caller asked for the report, so failures surface.
func (s *ReportService) Request(ctx context.Context, ownerID uuid.UUID, year, month, monthCount int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidReportMonth, month)
	}
	if monthCount < 1 {
		monthCount = 1
	}
	if s.amqpClient == nil {
		return ErrReportsUnavailable
	}

	msg := amqp.NewReportRequestMessage(ownerID, year, month, monthCount)
	if err := s.amqpClient.PublishReportRequest(ctx, msg); err != nil {
		return fmt.Errorf("publish report request: %w", err)
	}
	return nil
}
